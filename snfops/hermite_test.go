package snfops

// Copyright (c) 2025 Colin McRae

import (
	"math"
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/predrag3141/ISNF/util"
)

func TestHermiteForm(t *testing.T) {
	// Known answer
	x := util.ToBigInt([]int64{1, 2, 3, 4})
	h, u, err := hermiteForm(x, 2, "TestHermiteForm")
	require.NoError(t, err)
	requireBigIntEqual(t, []int64{1, 0, 0, 2}, h)
	requireBigIntEqual(t, []int64{-2, 1, 3, -1}, u)
	requireBigIntEqual(t, []int64{1, 2, 3, 4}, x)

	// Random non-singular matrices
	rng := rand.New(rand.NewSource(11))
	for dim := 1; dim <= 6; dim++ {
		for testNbr := 0; testNbr < 50; testNbr++ {
			m := randomMatrix(rng, dim, -20, 20)
			det, err := util.Determinant(m, dim)
			require.NoError(t, err)
			if det.Sign() == 0 {
				continue
			}
			h, u, err = hermiteForm(util.ToBigInt(m), dim, "TestHermiteForm")
			require.NoError(t, err)

			// U M = H
			var um []*big.Int
			um, err = util.MultiplyBigInt(u, util.ToBigInt(m), dim)
			require.NoError(t, err)
			for i := 0; i < dim*dim; i++ {
				require.Equal(t, 0, um[i].Cmp(h[i]))
			}

			// H is upper triangular with a positive diagonal and reduced entries above it
			for i := 0; i < dim; i++ {
				require.Equal(t, 1, h[i*dim+i].Sign())
				for j := 0; j < i; j++ {
					require.Equal(t, 0, h[i*dim+j].Sign())
				}
				for j := i + 1; j < dim; j++ {
					require.GreaterOrEqual(t, h[i*dim+j].Sign(), 0)
					require.Equal(t, -1, h[i*dim+j].Cmp(h[j*dim+j]))
				}
			}

			// U is unimodular
			uAsInt64, ok := util.ToInt64(u)
			require.True(t, ok)
			var isUnimodular bool
			isUnimodular, err = util.IsUnimodular(uAsInt64, dim)
			require.NoError(t, err)
			require.True(t, isUnimodular)
		}
	}

	// Singular input
	_, _, err = hermiteForm(util.ToBigInt([]int64{1, 2, 2, 4}), 2, "TestHermiteForm")
	require.Error(t, err)
}

func TestClearAboveDiagonal(t *testing.T) {
	// 4 is a multiple of 2, and 2 divides 6
	h := util.ToBigInt([]int64{2, 4, 0, 6})
	r := util.ToBigInt(util.Identity(2))
	require.True(t, clearAboveDiagonal(h, r, 2))
	requireBigIntEqual(t, []int64{2, 0, 0, 6}, h)
	requireBigIntEqual(t, []int64{1, -2, 0, 1}, r)

	// 2 does not divide 3
	h = util.ToBigInt([]int64{2, 3, 0, 6})
	r = util.ToBigInt(util.Identity(2))
	require.False(t, clearAboveDiagonal(h, r, 2))

	// Diagonal, but 2 does not divide 3
	h = util.ToBigInt([]int64{2, 0, 0, 3})
	r = util.ToBigInt(util.Identity(2))
	require.False(t, clearAboveDiagonal(h, r, 2))

	// Three by three, starting from R other than the identity
	h = util.ToBigInt([]int64{1, 2, 3, 0, 2, 4, 0, 0, 4})
	r = util.ToBigInt([]int64{1, 0, 0, 1, 1, 0, 0, 0, 1})
	require.True(t, clearAboveDiagonal(h, r, 3))
	requireBigIntEqual(t, []int64{1, 0, 0, 0, 2, 0, 0, 0, 4}, h)
	requireBigIntEqual(t, []int64{1, -2, 1, 1, -1, -1, 0, 0, 1}, r)
}

func TestPreconditioner(t *testing.T) {
	for dim := 1; dim <= 8; dim++ {
		c, err := preconditioner(dim, 0, "TestPreconditioner")
		require.NoError(t, err)
		require.Equal(t, util.Identity(dim), c)
		for trial := 1; trial < maxPreconditioners; trial++ {
			c, err = preconditioner(dim, trial, "TestPreconditioner")
			require.NoError(t, err)
			var isUnimodular bool
			isUnimodular, err = util.IsUnimodular(c, dim)
			require.NoError(t, err)
			require.Truef(t, isUnimodular, "dim %d, trial %d: %v", dim, trial, c)

			// The same trial gives the same matrix
			var again []int64
			again, err = preconditioner(dim, trial, "TestPreconditioner")
			require.NoError(t, err)
			require.Equal(t, c, again)
		}
	}
}

func TestComputeByHermite(t *testing.T) {
	// Trial 0 works for this input, with the invariant factors from TestCompute_KnownAnswers
	m := []int64{2, 4, 4, -6, 6, 12, 10, -4, -16}
	res, err := computeByHermite(m, 3, 0, "TestComputeByHermite")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Equal(t, []int64{2, 6, 12}, res.Invariants())
	checkResult(t, m, 3, res)

	// With no preconditioner, 2 in H[0][0] does not divide 3 in H[0][1]
	res, err = computeByHermite([]int64{2, 3, 0, 6}, 2, 0, "TestComputeByHermite")
	require.NoError(t, err)
	require.Nil(t, res)

	// S does not fit
	_, err = Compute([]int64{2, 0, 0, math.MaxInt64}, 2)
	require.True(t, IsInvalidInput(err, EntriesTooLarge))
	for trial := 0; trial < maxPreconditioners; trial++ {
		res, err = computeByHermite([]int64{2, 0, 0, math.MaxInt64}, 2, trial, "TestComputeByHermite")
		require.Nil(t, res)
		if err != nil {
			require.True(t, IsInvalidInput(err, EntriesTooLarge))
		}
	}
}

func TestInverseTransforms(t *testing.T) {
	m := []int64{7, -3, 9, 4, -8, 2, 5, 6, -7}
	res, err := Compute(m, 3)
	require.NoError(t, err)
	var lInverse, rInverse []int64
	lInverse, rInverse, err = inverseTransforms(
		util.ToBigInt(m), util.ToBigInt(res.L), util.ToBigInt(res.R), util.ToBigInt(res.S), 3,
		"TestInverseTransforms",
	)
	require.NoError(t, err)
	require.Equal(t, res.LInverse, lInverse)
	require.Equal(t, res.RInverse, rInverse)
	for _, pair := range [][2][]int64{{res.L, lInverse}, {res.R, rInverse}} {
		areInverses, err := util.IsInversePair(pair[0], pair[1], 3)
		require.NoError(t, err)
		require.True(t, areInverses)
	}

	// An inverse that does not fit is dropped. With L = S = I, L^-1 = M R and R^-1 = M.
	maxDiagonal := []int64{math.MaxInt64, 0, 0, 1}
	lInverse, rInverse, err = inverseTransforms(
		util.ToBigInt(maxDiagonal), util.ToBigInt(util.Identity(2)), util.ToBigInt([]int64{2, 1, 1, 1}),
		util.ToBigInt(util.Identity(2)), 2, "TestInverseTransforms",
	)
	require.NoError(t, err)
	require.Nil(t, lInverse)
	require.Equal(t, maxDiagonal, rInverse)
}

// requireBigIntEqual requires x to have the same entries as expected
func requireBigIntEqual(t *testing.T, expected []int64, x []*big.Int) {
	xAsInt64, ok := util.ToInt64(x)
	require.True(t, ok)
	require.Equal(t, expected, xAsInt64)
}
