package snfops

// Copyright (c) 2025 Colin McRae

import (
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/predrag3141/ISNF/util"
)

func TestReducePair(t *testing.T) {
	const (
		numTests = 1000
		maxEntry = 1 << 40
	)

	rng := rand.New(rand.NewSource(5))
	for testNbr := 0; testNbr < numTests; testNbr++ {
		tt := rng.Int63n(2*maxEntry) - maxEntry
		u := rng.Int63n(2*maxEntry) - maxEntry
		if testNbr%10 == 0 {
			// Exercise the case where t divides u
			u = tt * (rng.Int63n(200) - 100)
		}
		if (tt == 0) && (u == 0) {
			continue
		}
		checkReducePair(t, tt, u)
	}

	// Edge cases
	for _, pair := range [][2]int64{{0, 5}, {5, 0}, {-3, 0}, {1, 1}, {-4, 6}, {6, -4}, {1, -1}} {
		checkReducePair(t, pair[0], pair[1])
	}
	_, _, err := reducePair(0, 0, "TestReducePair")
	require.Error(t, err)

	// When t divides u, R is an elimination that leaves the row holding t alone
	r, g, err := reducePair(-3, 12, "TestReducePair")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 0, 4, 1}, r)
	require.Equal(t, int64(-3), g)
}

func TestGetRowAndColumnReduction(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	const dim = 5
	for testNbr := 0; testNbr < 200; testNbr++ {
		x := randomMatrix(rng, dim, -30, 30)
		k := rng.Intn(dim)
		other := (k + 1 + rng.Intn(dim-1)) % dim
		col := rng.Intn(dim)
		if (x[k*dim+col] == 0) && (x[other*dim+col] == 0) {
			continue
		}
		expectedGCD := gcd(x[k*dim+col], x[other*dim+col])

		// Row reduction
		rowOp, err := getRowReduction(x, dim, k, other, col, "TestGetRowAndColumnReduction")
		require.NoError(t, err)
		y := util.Copy(x)
		require.NoError(t, rowOp.performRowOp(y, dim, "TestGetRowAndColumnReduction"))
		require.Equal(t, int64(0), y[other*dim+col])
		require.Equal(t, expectedGCD, abs(y[k*dim+col]))

		// Column reduction, on the transpose
		xT := transposeSubMatrix(x, dim)
		var columnOp *IntOperation
		columnOp, err = getColumnReduction(xT, dim, col, k, other, "TestGetRowAndColumnReduction")
		require.NoError(t, err)
		require.NoError(t, columnOp.performColumnOp(xT, dim, "TestGetRowAndColumnReduction"))
		require.Equal(t, int64(0), xT[col*dim+other])
		require.Equal(t, expectedGCD, abs(xT[col*dim+k]))
	}
}

func checkReducePair(t *testing.T, tt, u int64) {
	r, g, err := reducePair(tt, u, "checkReducePair")
	require.NoError(t, err)
	require.Len(t, r, 4)

	// R [t, u]^T = [g, 0]^T
	require.Equal(t, g, r[0]*tt+r[1]*u)
	require.Equal(t, int64(0), r[2]*tt+r[3]*u)

	// |g| = gcd(t, u)
	require.Equal(t, gcd(tt, u), abs(g))

	// R is unimodular
	det := r[0]*r[3] - r[1]*r[2]
	require.Contains(t, []int64{1, -1}, det)
}

func gcd(a, b int64) int64 {
	return big.NewInt(0).GCD(nil, nil, big.NewInt(abs(a)), big.NewInt(abs(b))).Int64()
}

func abs(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}
