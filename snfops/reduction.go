package snfops

// Copyright (c) 2025 Colin McRae

import (
	"fmt"

	"github.com/predrag3141/ISNF/util"
)

// reducePair returns the 2x2 unimodular matrix, R, with rows [a, b] and [c, d],
// for which R [t, u]^T = [g, 0]^T, where |g| = gcd(t, u); along with g itself.
//
// The general case runs the Euclidean algorithm, accumulating each step
// [t, u] <- [u, t - q u] into R. When t divides u, R is the elimination
// [[1, 0], [-u/t, 1]], so the row holding t is left unchanged. Callers rely on
// this when t already divides everything it is being reduced against.
//
// t and u must not both be zero.
func reducePair(t, u int64, caller string) ([]int64, int64, error) {
	caller = fmt.Sprintf("%s-reducePair", caller)
	if (t == 0) && (u == 0) {
		return nil, 0, fmt.Errorf("%s: t and u are both zero", caller)
	}
	if (t != 0) && (u%t == 0) {
		return []int64{1, 0, -(u / t), 1}, t, nil
	}
	rowOpMatrix := []int64{1, 0, 0, 1}
	for u != 0 {
		q := t / u
		qu, ok := util.MulInt64(q, u)
		if !ok {
			return nil, 0, fmt.Errorf("%s: %d * %d overflows an int64", caller, q, u)
		}
		t, u = u, t-qu

		// Rows of R become [c, d] and [a - q c, b - q d]
		var qc, qd int64
		var okC, okD bool
		qc, okC = util.MulInt64(q, rowOpMatrix[2])
		qd, okD = util.MulInt64(q, rowOpMatrix[3])
		if !okC || !okD {
			return nil, 0, fmt.Errorf(
				"%s: row operation %v times %d overflows an int64", caller, rowOpMatrix, q,
			)
		}
		rowOpMatrix = []int64{
			rowOpMatrix[2], rowOpMatrix[3], rowOpMatrix[0] - qc, rowOpMatrix[1] - qd,
		}
	}
	return rowOpMatrix, t, nil
}

// getRowReduction returns the row operation on rows k and i of X that leaves
// gcd(X[k][col], X[i][col]) in X[k][col] (up to sign) and zero in X[i][col].
func getRowReduction(x []int64, dim, k, i, col int, caller string) (*IntOperation, error) {
	caller = fmt.Sprintf("%s-getRowReduction", caller)
	r, _, err := reducePair(x[k*dim+col], x[i*dim+col], caller)
	if err != nil {
		return nil, err
	}
	return newTwoByTwo(k, i, r[0], r[1], r[2], r[3], caller)
}

// getColumnReduction returns the column operation on columns k and j of X that
// leaves gcd(X[row][k], X[row][j]) in X[row][k] (up to sign) and zero in X[row][j].
//
// If R [t, u]^T = [g, 0]^T then [t, u] R^T = [g, 0], so the column operation is the
// transpose of the row operation that reducePair computes.
func getColumnReduction(x []int64, dim, row, k, j int, caller string) (*IntOperation, error) {
	caller = fmt.Sprintf("%s-getColumnReduction", caller)
	r, _, err := reducePair(x[row*dim+k], x[row*dim+j], caller)
	if err != nil {
		return nil, err
	}
	rowOp, err := newTwoByTwo(k, j, r[0], r[1], r[2], r[3], caller)
	if err != nil {
		return nil, err
	}
	return rowOp.transpose(), nil
}
