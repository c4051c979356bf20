package util

// Copyright (c) 2025 Colin McRae

import (
	"fmt"
	"math"
	"math/big"
	"math/rand"
)

// CopyInt64ToInt converts an int64 matrix to an int matrix
func CopyInt64ToInt(input []int64) []int {
	retVal := make([]int, len(input))
	for i := 0; i < len(input); i++ {
		retVal[i] = int(input[i])
	}
	return retVal
}

// CopyIntToInt64 converts an int matrix to an int64 matrix
func CopyIntToInt64(input []int) []int64 {
	retVal := make([]int64, len(input))
	for i := 0; i < len(input); i++ {
		retVal[i] = int64(input[i])
	}
	return retVal
}

// Copy returns a deep copy of x
func Copy(x []int64) []int64 {
	retVal := make([]int64, len(x))
	copy(retVal, x)
	return retVal
}

// Identity returns the dim x dim identity matrix
func Identity(dim int) []int64 {
	retVal := make([]int64, dim*dim)
	for i := 0; i < dim; i++ {
		retVal[i*dim+i] = 1
	}
	return retVal
}

// MulInt64 returns a*b and whether the product fits in an int64
func MulInt64(a, b int64) (int64, bool) {
	if (a == 0) || (b == 0) {
		return 0, true
	}
	if ((a == -1) && (b == math.MinInt64)) || ((b == -1) && (a == math.MinInt64)) {
		return 0, false
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}

// AddInt64 returns a+b and whether the sum fits in an int64
func AddInt64(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, false
	}
	return c, true
}

// MulAddInt64 returns acc + a*b and whether every intermediate result fits in an int64
func MulAddInt64(acc, a, b int64) (int64, bool) {
	ab, ok := MulInt64(a, b)
	if !ok {
		return 0, false
	}
	return AddInt64(acc, ab)
}

// MultiplyIntInt returns the matrix product, x * y, for []int64
// x and []int64 y. n must equal the number of columns in x and
// the number of rows in y. An error is returned if any partial
// sum of an entry of the product overflows an int64.
func MultiplyIntInt(x []int64, y []int64, n int) ([]int64, error) {
	// x is mxn, y is nxp and xy is mxp.
	m, p, err := getDimensions(len(x), len(y), n, "MultiplyIntInt")
	if err != nil {
		return nil, err
	}
	xy := make([]int64, m*p)
	for i := 0; i < m; i++ {
		for j := 0; j < p; j++ {
			var xyEntry int64
			for k := 0; k < n; k++ {
				var ok bool
				xyEntry, ok = MulAddInt64(xyEntry, x[i*n+k], y[k*p+j]) // += x[i][k] * y[k][j]
				if !ok {
					return []int64{}, fmt.Errorf(
						"in a matrix multiply, entry (%d,%d) overflows an int64", i, j,
					)
				}
			}
			xy[i*p+j] = xyEntry
		}
	}
	return xy, nil
}

// IsInversePair returns whether x and y are inverses of each other
func IsInversePair(x, y []int64, dim int) (bool, error) {
	shouldBeInverse, err := MultiplyIntInt(x, y, dim)
	if err != nil {
		return false, fmt.Errorf(
			"IsInversePair: could not multiply x (%d-long) by y (%d-long): %q", len(x), len(y), err.Error(),
		)
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if (i == j) && (shouldBeInverse[i*dim+j] != 1) {
				return false, nil
			} else if (i != j) && (shouldBeInverse[i*dim+j] != 0) {
				return false, nil
			}
		}
	}
	return true, nil
}

// ToBigInt converts an int64 matrix to a *big.Int matrix
func ToBigInt(input []int64) []*big.Int {
	retVal := make([]*big.Int, len(input))
	for i := 0; i < len(input); i++ {
		retVal[i] = big.NewInt(input[i])
	}
	return retVal
}

// ToInt64 converts a *big.Int matrix to an int64 matrix. The second return value
// is false, and the first is nil, if any entry does not fit in an int64.
func ToInt64(input []*big.Int) ([]int64, bool) {
	retVal := make([]int64, len(input))
	for i := 0; i < len(input); i++ {
		if !input[i].IsInt64() {
			return nil, false
		}
		retVal[i] = input[i].Int64()
	}
	return retVal, true
}

// MultiplyBigInt returns the matrix product, x * y, for []*big.Int
// x and []*big.Int y. n must equal the number of columns in x and
// the number of rows in y. Neither x nor y is modified.
func MultiplyBigInt(x []*big.Int, y []*big.Int, n int) ([]*big.Int, error) {
	// x is mxn, y is nxp and xy is mxp.
	m, p, err := getDimensions(len(x), len(y), n, "MultiplyBigInt")
	if err != nil {
		return nil, err
	}
	xy := make([]*big.Int, m*p)
	term := big.NewInt(0)
	for i := 0; i < m; i++ {
		for j := 0; j < p; j++ {
			xyEntry := big.NewInt(0)
			for k := 0; k < n; k++ {
				xyEntry.Add(xyEntry, term.Mul(x[i*n+k], y[k*p+j]))
			}
			xy[i*p+j] = xyEntry
		}
	}
	return xy, nil
}

// Determinant returns the exact determinant of the dim x dim matrix x. It uses
// fraction-free (Bareiss) elimination, in which every division is exact, so
// no rounding occurs and a zero result means x is singular.
func Determinant(x []int64, dim int) (*big.Int, error) {
	if (dim < 1) || (len(x) != dim*dim) {
		return nil, fmt.Errorf(
			"Determinant: %d entries do not form a %d x %d matrix", len(x), dim, dim,
		)
	}
	a := make([]*big.Int, dim*dim)
	for i := 0; i < dim*dim; i++ {
		a[i] = big.NewInt(x[i])
	}
	sign := 1
	previousPivot := big.NewInt(1)
	for k := 0; k < dim-1; k++ {
		if a[k*dim+k].Sign() == 0 {
			// Swap in a row with a non-zero entry in column k, if there is one
			pivotRow := -1
			for i := k + 1; i < dim; i++ {
				if a[i*dim+k].Sign() != 0 {
					pivotRow = i
					break
				}
			}
			if pivotRow < 0 {
				return big.NewInt(0), nil
			}
			for j := 0; j < dim; j++ {
				a[k*dim+j], a[pivotRow*dim+j] = a[pivotRow*dim+j], a[k*dim+j]
			}
			sign = -sign
		}
		for i := k + 1; i < dim; i++ {
			for j := k + 1; j < dim; j++ {
				// a[i][j] <- (a[i][j] a[k][k] - a[i][k] a[k][j]) / previousPivot
				entry := big.NewInt(0).Mul(a[i*dim+j], a[k*dim+k])
				entry.Sub(entry, big.NewInt(0).Mul(a[i*dim+k], a[k*dim+j]))
				a[i*dim+j] = entry.Quo(entry, previousPivot)
			}
		}
		previousPivot = a[k*dim+k]
	}
	det := big.NewInt(0).Set(a[dim*dim-1])
	if sign < 0 {
		det.Neg(det)
	}
	return det, nil
}

// IsUnimodular returns whether x is an integer matrix with determinant 1 or -1
func IsUnimodular(x []int64, dim int) (bool, error) {
	det, err := Determinant(x, dim)
	if err != nil {
		return false, fmt.Errorf("IsUnimodular: could not compute determinant: %q", err.Error())
	}
	return det.CmpAbs(big.NewInt(1)) == 0, nil
}

// CreateRandomInversePair returns a pair of inverse matrices with integer entries
// and determinant 1, built from up to maxRowOps random elementary row operations
// with multiples in [-maxRowOpEntry/2, maxRowOpEntry/2). Row operations stop being
// added when an entry would exceed maxMatrixEntry in absolute value. In case of
// error, the third return value is non-nil.
func CreateRandomInversePair(
	dim, maxRowOpEntry, maxRowOps int, maxMatrixEntry int64, rng *rand.Rand, caller string,
) ([]int64, []int64, error) {
	caller = fmt.Sprintf("%s-CreateRandomInversePair", caller)
	retValA := Identity(dim)
	retValB := Identity(dim)
	if dim < 2 {
		// The only unimodular 1 x 1 matrices with determinant 1 are the identity
		return retValA, retValB, nil
	}

	// The inverse operation to adding c times row i to row j is to add −c times row i to
	// row j
	for i := 0; i < maxRowOps; i++ {
		srcRow := rng.Intn(dim)
		destRow := rng.Intn(dim)
		multiple := int64(rng.Intn(maxRowOpEntry) - (maxRowOpEntry / 2))
		if multiple == 0 {
			multiple = 1
		}
		if srcRow == destRow {
			destRow = (destRow + 1 + rng.Intn(dim-1)) % dim
		}
		rowOpMatrixA := Identity(dim)
		rowOpMatrixB := Identity(dim)
		rowOpMatrixA[destRow*dim+srcRow] = multiple
		rowOpMatrixB[destRow*dim+srcRow] = -multiple

		// A <- EA and B <- BE^-1 keeps AB = I
		tmpA, err := MultiplyIntInt(rowOpMatrixA, retValA, dim)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"%s: could not multiply retValA by rowOpMatrixA: %q", caller, err.Error(),
			)
		}
		var tmpB []int64
		tmpB, err = MultiplyIntInt(retValB, rowOpMatrixB, dim)
		if err != nil {
			return nil, nil, fmt.Errorf(
				"%s: could not multiply retValB by rowOpMatrixB: %q", caller, err.Error(),
			)
		}

		// An entry in tmpA or tmpB may exceed the maximum desired
		for j := 0; j < dim*dim; j++ {
			if (tmpA[j] > maxMatrixEntry) || (tmpA[j] < -maxMatrixEntry) {
				return retValA, retValB, nil
			}
			if (tmpB[j] > maxMatrixEntry) || (tmpB[j] < -maxMatrixEntry) {
				return retValA, retValB, nil
			}
		}
		retValA = tmpA
		retValB = tmpB
	}

	// The maximum number of iterations has been reached
	return retValA, retValB, nil
}

// GetPermutationMatrices returns the row and column permutation matrices that move
// the rows (columns) with the given indices according to perm, leaving the other
// rows (columns) in place.
func GetPermutationMatrices(indices, perm []int, numRows int) ([]int64, []int64, error) {
	numIndices := len(indices)
	rowPermutationMatrix := make([]int64, numRows*numRows)
	colPermutationMatrix := make([]int64, numRows*numRows)
	for i := 0; i < numIndices; i++ {
		for j := 0; j < numIndices; j++ {
			if perm[j] == i {
				rowPermutationMatrix[indices[i]*numRows+indices[j]] = 1
			}
			if perm[i] == j {
				colPermutationMatrix[indices[i]*numRows+indices[j]] = 1
			}
		}
	}

	// The permutation matrices have 1s in the sub-matrices with coordinates from
	// indices. In rows that are still all-zero, the permutation matrices need ones
	// on the diagonal.
	for i := 0; i < numRows; i++ {
		needDiagonalEntry := true
		for j := 0; j < numIndices; j++ {
			if i == indices[j] {
				needDiagonalEntry = false
				break
			}
		}
		if needDiagonalEntry {
			rowPermutationMatrix[i*numRows+i] = 1
			colPermutationMatrix[i*numRows+i] = 1
		}
	}

	// The row and column permutation matrices should be inverses of each other
	areInverses, err := IsInversePair(rowPermutationMatrix, colPermutationMatrix, numRows)
	if err != nil {
		return []int64{}, []int64{},
			fmt.Errorf("GetPermutationMatrices: IsInversePair returned an error: %q", err.Error())
	}
	if !areInverses {
		return []int64{}, []int64{},
			fmt.Errorf("GetPermutationMatrices: permutation matrices %v and %v are not inverses",
				rowPermutationMatrix, colPermutationMatrix)
	}
	return rowPermutationMatrix, colPermutationMatrix, nil
}

// getDimensions returns the dimensions m and p for a matrix multiply
// xy where x has mn entries, y has np entries, and the number of columns
// in x (= the number of rows in y) is n.
func getDimensions(mn, np, n int, caller string) (int, int, error) {
	caller = fmt.Sprintf("%s-getDimensions", caller)
	if n <= 0 {
		return 0, 0, fmt.Errorf("%s: inner dimension %d is not positive", caller, n)
	}
	if mn%n != 0 {
		return 0, 0, fmt.Errorf(
			"%s: non-integer number of rows %d / %d in x", caller, mn, n,
		)
	}
	if np%n != 0 {
		return 0, 0, fmt.Errorf(
			"%s: non-integer number of columns  %d / %d in y", caller, np, n,
		)
	}
	return mn / n, np / n, nil
}
