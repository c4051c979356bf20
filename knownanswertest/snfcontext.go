package knownanswertest

// Copyright (c) 2025 Colin McRae

import (
	"fmt"
	"math/rand"

	"github.com/predrag3141/ISNF/snfops"
	"github.com/predrag3141/ISNF/util"
)

// The input to the Smith Normal Form computation is A D B, where
// - D is diagonal with positive entries, each dividing the next
// - A and B are random integer matrices with determinant 1
//
// Since A and B are unimodular, A D B has the same Smith Normal Form as D, and the
// Smith Normal Form with non-negative diagonal is unique. So the invariant factors
// computed from A D B must be exactly the diagonal of D, regardless of the row and
// column operations that produced them.

// Limits on the random unimodular matrices A and B
const (
	maxRowOpEntry  = 4
	maxRowOps      = 8
	maxMatrixEntry = 50
)

// SNFContext holds a known-answer test case and the outcome of running it
type SNFContext struct {
	// Computed before computing the Smith Normal Form
	Dimension      int     `json:"dimension"`
	Invariants     []int64 `json:"invariants"`
	LeftTransform  []int64 `json:"left_transform"`
	RightTransform []int64 `json:"right_transform"`
	Input          []int64 `json:"input"`

	// Computed from the Smith Normal Form
	ComputedInvariants []int64 `json:"computed_invariants"`
	FoundInvariants    bool    `json:"found_invariants"`
	Verified           bool    `json:"verified"`
	VerificationError  string  `json:"verification_error"`
	MaxTransformEntry  int64   `json:"max_transform_entry"`
	ComputeError       string  `json:"compute_error"`
}

// NewSNFContext returns a dim x dim known-answer test case. Each invariant factor is
// the previous one times a random number in {1,...,maxFactor}, starting from 1.
func NewSNFContext(dim, maxFactor int, rng *rand.Rand) (*SNFContext, error) {
	caller := "NewSNFContext"
	if (dim < 1) || (maxFactor < 1) {
		return nil, fmt.Errorf("%s: dim = %d and maxFactor = %d must be positive", caller, dim, maxFactor)
	}
	invariants := getInvariants(dim, maxFactor, rng)
	d := make([]int64, dim*dim)
	for i := 0; i < dim; i++ {
		d[i*dim+i] = invariants[i]
	}
	a, _, err := util.CreateRandomInversePair(dim, maxRowOpEntry, maxRowOps, maxMatrixEntry, rng, caller)
	if err != nil {
		return nil, err
	}
	var b, ad, adb []int64
	b, _, err = util.CreateRandomInversePair(dim, maxRowOpEntry, maxRowOps, maxMatrixEntry, rng, caller)
	if err != nil {
		return nil, err
	}
	ad, err = util.MultiplyIntInt(a, d, dim)
	if err != nil {
		return nil, fmt.Errorf("%s: could not compute A D: %q", caller, err.Error())
	}
	adb, err = util.MultiplyIntInt(ad, b, dim)
	if err != nil {
		return nil, fmt.Errorf("%s: could not compute A D B: %q", caller, err.Error())
	}
	return &SNFContext{
		Dimension:      dim,
		Invariants:     invariants,
		LeftTransform:  a,
		RightTransform: b,
		Input:          adb,
	}, nil
}

// Update records the outcome of computing the Smith Normal Form of sc.Input. A
// result that fails verification is recorded in sc rather than returned as an error.
func (sc *SNFContext) Update(res *snfops.Result) error {
	if res == nil {
		return fmt.Errorf("Update: nil result")
	}
	sc.ComputedInvariants = res.Invariants()
	sc.FoundInvariants = invariantsMatch(sc.Invariants, sc.ComputedInvariants)
	err := snfops.Verify(sc.Input, sc.Dimension, res)
	sc.Verified = err == nil
	if err != nil {
		sc.VerificationError = err.Error()
	}
	sc.MaxTransformEntry = 0
	for _, x := range [][]int64{res.L, res.R} {
		for _, entry := range x {
			if entry < 0 {
				entry = -entry
			}
			if entry > sc.MaxTransformEntry {
				sc.MaxTransformEntry = entry
			}
		}
	}
	return nil
}

// RecordError records an error returned when computing the Smith Normal Form of sc.Input
func (sc *SNFContext) RecordError(err error) {
	sc.ComputeError = err.Error()
	sc.FoundInvariants = false
	sc.Verified = false
}

// Passed returns whether the computed invariants were the known ones and the result verified
func (sc *SNFContext) Passed() bool {
	return sc.FoundInvariants && sc.Verified
}

// getInvariants returns dim positive integers, each dividing the next
func getInvariants(dim, maxFactor int, rng *rand.Rand) []int64 {
	invariants := make([]int64, dim)
	previous := int64(1)
	for i := 0; i < dim; i++ {
		invariants[i] = previous * int64(1+rng.Intn(maxFactor))
		previous = invariants[i]
	}
	return invariants
}

func invariantsMatch(expected, actual []int64) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := 0; i < len(expected); i++ {
		if expected[i] != actual[i] {
			return false
		}
	}
	return true
}
