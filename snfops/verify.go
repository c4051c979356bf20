package snfops

// Copyright (c) 2025 Colin McRae

import (
	"fmt"

	"github.com/predrag3141/PSLQ/bigmatrix"
	"github.com/predrag3141/PSLQ/bignumber"

	"github.com/predrag3141/ISNF/util"
)

// Verify checks that res is a Smith Normal Form of the dim x dim matrix m:
//
// - S is diagonal, with non-negative diagonal entries that each divide the next
//
// - L and R are unimodular, and LInverse and RInverse (if populated) are their inverses
//
// - L M R = S
//
// L M R is computed with bigmatrix, so intermediate products cannot overflow. This
// requires bignumber.Init to have been called with enough precision to hold the
// products exactly; a few hundred bits is plenty for int64 inputs.
func Verify(m []int64, dim int, res *Result) error {
	caller := "Verify"
	if res == nil {
		return fmt.Errorf("%s: nil result", caller)
	}
	if res.Dim != dim {
		return fmt.Errorf("%s: result has dimension %d, not %d", caller, res.Dim, dim)
	}
	for name, x := range map[string][]int64{"M": m, "S": res.S, "L": res.L, "R": res.R} {
		if len(x) != dim*dim {
			return fmt.Errorf(
				"%s: %s has %d entries, not %d x %d", caller, name, len(x), dim, dim,
			)
		}
	}

	// Diagonal form, signs and the divisibility chain
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if (i != j) && (res.S[i*dim+j] != 0) {
				return fmt.Errorf("%s: S[%d][%d] = %d is off the diagonal", caller, i, j, res.S[i*dim+j])
			}
		}
		sII := res.S[i*dim+i]
		if sII < 0 {
			return fmt.Errorf("%s: S[%d][%d] = %d is negative", caller, i, i, sII)
		}
		if (i < dim-1) && (sII != 0) && (res.S[(i+1)*dim+i+1]%sII != 0) {
			return fmt.Errorf(
				"%s: S[%d][%d] = %d does not divide S[%d][%d] = %d",
				caller, i, i, sII, i+1, i+1, res.S[(i+1)*dim+i+1],
			)
		}
	}

	// Unimodularity
	if err := checkUnimodular(res.L, res.LInverse, dim, "L", caller); err != nil {
		return err
	}
	if err := checkUnimodular(res.R, res.RInverse, dim, "R", caller); err != nil {
		return err
	}

	// L M R = S
	lmr, err := productLMR(res.L, m, res.R, dim, caller)
	if err != nil {
		return err
	}
	var s *bigmatrix.BigMatrix
	s, err = bigmatrix.NewFromInt64Array(res.S, dim, dim)
	if err != nil {
		return fmt.Errorf("%s: could not convert S to a BigMatrix: %q", caller, err.Error())
	}

	// Distinct integers differ by at least 1, so a tolerance of 1/2 demands equality
	var equals bool
	equals, err = lmr.Equals(s, bignumber.NewPowerOfTwo(-1))
	if err != nil {
		return fmt.Errorf("%s: could not compare L M R to S: %q", caller, err.Error())
	}
	if !equals {
		return fmt.Errorf("%s: L M R != S", caller)
	}
	return nil
}

// checkUnimodular checks that X has determinant 1 or -1 and, if XInverse is populated,
// that X XInverse = I. The product is computed with bigmatrix, so it cannot overflow.
func checkUnimodular(x, xInverse []int64, dim int, name, caller string) error {
	caller = fmt.Sprintf("%s-checkUnimodular", caller)
	isUnimodular, err := util.IsUnimodular(x, dim)
	if err != nil {
		return fmt.Errorf("%s: could not check %s: %q", caller, name, err.Error())
	}
	if !isUnimodular {
		return fmt.Errorf("%s: %s = %v is not unimodular", caller, name, x)
	}
	if len(xInverse) == 0 {
		return nil
	}
	if len(xInverse) != dim*dim {
		return fmt.Errorf(
			"%s: %sInverse has %d entries, not %d x %d", caller, name, len(xInverse), dim, dim,
		)
	}
	var factor, inverseFactor, product, identity *bigmatrix.BigMatrix
	factor, err = bigmatrix.NewFromInt64Array(x, dim, dim)
	if err != nil {
		return fmt.Errorf("%s: could not convert %s to a BigMatrix: %q", caller, name, err.Error())
	}
	inverseFactor, err = bigmatrix.NewFromInt64Array(xInverse, dim, dim)
	if err != nil {
		return fmt.Errorf(
			"%s: could not convert %sInverse to a BigMatrix: %q", caller, name, err.Error(),
		)
	}
	product, err = bigmatrix.NewEmpty(dim, dim).Mul(factor, inverseFactor)
	if err != nil {
		return fmt.Errorf("%s: could not multiply %s by its inverse: %q", caller, name, err.Error())
	}
	identity, err = bigmatrix.NewIdentity(dim)
	if err != nil {
		return fmt.Errorf("%s: could not create the identity: %q", caller, err.Error())
	}
	var areInverses bool
	areInverses, err = product.Equals(identity, bignumber.NewPowerOfTwo(-1))
	if err != nil {
		return fmt.Errorf("%s: could not compare %s %sInverse to I: %q", caller, name, name, err.Error())
	}
	if !areInverses {
		return fmt.Errorf("%s: %s and %sInverse are not inverses", caller, name, name)
	}
	return nil
}

// productLMR returns L M R as a BigMatrix
func productLMR(l, m, r []int64, dim int, caller string) (*bigmatrix.BigMatrix, error) {
	caller = fmt.Sprintf("%s-productLMR", caller)
	factors := make([]*bigmatrix.BigMatrix, 3)
	for i, x := range [][]int64{l, m, r} {
		var err error
		factors[i], err = bigmatrix.NewFromInt64Array(x, dim, dim)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: could not convert factor %d to a BigMatrix: %q", caller, i, err.Error(),
			)
		}
	}
	lm, err := bigmatrix.NewEmpty(dim, dim).Mul(factors[0], factors[1])
	if err != nil {
		return nil, fmt.Errorf("%s: could not compute L M: %q", caller, err.Error())
	}
	var lmr *bigmatrix.BigMatrix
	lmr, err = bigmatrix.NewEmpty(dim, dim).Mul(lm, factors[2])
	if err != nil {
		return nil, fmt.Errorf("%s: could not compute L M R: %q", caller, err.Error())
	}
	return lmr, nil
}
