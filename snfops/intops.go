package snfops

// Copyright (c) 2025 Colin McRae

import (
	"fmt"

	"github.com/predrag3141/ISNF/util"
)

// IntOperation holds the information necessary to perform an integer operation
// on a square matrix, either as a row operation (left-multiply) or as a column
// operation (right-multiply). The operation acts only on the rows or columns
// listed in Indices.
//
// When the operation is a permutation, Permutation is populated and Operation
// and Inverse are empty. Otherwise Operation and Inverse must be populated with
// numIndices x numIndices sub-matrices that are inverses of each other. It is an
// error to populate both.
type IntOperation struct {
	Indices     []int   // indices of rows or columns affected by the operation
	Operation   []int64 // sub-matrix for the operation
	Inverse     []int64 // sub-matrix for the inverse of the operation
	Permutation [][]int // cycles of the permutation
}

// newSwap returns the operation that swaps rows or columns i and j, i != j.
func newSwap(i, j int) *IntOperation {
	if j < i {
		i, j = j, i
	}
	return &IntOperation{
		Indices:     []int{i, j},
		Operation:   []int64{},
		Inverse:     []int64{},
		Permutation: [][]int{{0, 1}},
	}
}

// newNegation returns the operation that negates row or column i.
func newNegation(i int) *IntOperation {
	return &IntOperation{
		Indices:     []int{i},
		Operation:   []int64{-1},
		Inverse:     []int64{-1},
		Permutation: [][]int{},
	}
}

// newTwoByTwo returns the operation on indices i and j with 2x2 sub-matrix
// [[a, b], [c, d]], which must have determinant 1 or -1. Indices need not be
// in increasing order; the sub-matrix refers to them in the order given.
func newTwoByTwo(i, j int, a, b, c, d int64, caller string) (*IntOperation, error) {
	caller = fmt.Sprintf("%s-newTwoByTwo", caller)
	ad, okAD := util.MulInt64(a, d)
	bc, okBC := util.MulInt64(b, c)
	if !okAD || !okBC {
		return nil, fmt.Errorf(
			"%s: determinant of [[%d, %d], [%d, %d]] overflows an int64", caller, a, b, c, d,
		)
	}
	det := ad - bc
	if (det != 1) && (det != -1) {
		return nil, fmt.Errorf(
			"%s: [[%d, %d], [%d, %d]] has non-unit determinant %d", caller, a, b, c, d, det,
		)
	}
	if j < i {
		// Relabel so that indices increase. Conjugating by the swap exchanges
		// a with d and b with c.
		i, j = j, i
		a, b, c, d = d, c, b, a
	}
	return &IntOperation{
		Indices:     []int{i, j},
		Operation:   []int64{a, b, c, d},
		Inverse:     []int64{det * d, -det * b, -det * c, det * a},
		Permutation: [][]int{},
	}, nil
}

// inverse returns the operation that undoes io
func (io *IntOperation) inverse() *IntOperation {
	return &IntOperation{
		Indices:     io.Indices,
		Operation:   io.Inverse,
		Inverse:     io.Operation,
		Permutation: io.Permutation,
	}
}

// transpose returns the operation whose sub-matrices are the transposes of those in io.
// A row operation E on X corresponds to the column operation E^T on X^T.
func (io *IntOperation) transpose() *IntOperation {
	if io.isPermutation() {
		return io
	}
	return &IntOperation{
		Indices:     io.Indices,
		Operation:   transposeSubMatrix(io.Operation, len(io.Indices)),
		Inverse:     transposeSubMatrix(io.Inverse, len(io.Indices)),
		Permutation: io.Permutation,
	}
}

// performRowOp left-multiplies the dim x dim matrix X in-place by an expansion of
// io.Operation into the dim x dim identity matrix, injecting entries of io.Operation
// into entries of the identity indicated by io.Indices.
func (io *IntOperation) performRowOp(x []int64, dim int, caller string) error {
	caller = fmt.Sprintf("%s-performRowOp", caller)
	if io.isPermutation() {
		if (len(io.Indices) != 2) || (len(io.Permutation) != 1) || (len(io.Permutation[0]) != 2) {
			return fmt.Errorf(
				"%s: non-swap permutation with indices %v and cycles %v is not supported",
				caller, io.Indices, io.Permutation,
			)
		}
		i0, i1 := io.Indices[0], io.Indices[1]
		for j := 0; j < dim; j++ {
			x[i0*dim+j], x[i1*dim+j] = x[i1*dim+j], x[i0*dim+j]
		}
		return nil
	}
	numIndices := len(io.Indices)

	// Compute the entries of X that left-multiplying by the row operation modifies
	newSubMatrixOfX := make([]int64, numIndices*dim)
	cursor := 0
	for i := 0; i < numIndices; i++ {
		for j := 0; j < dim; j++ {
			var newEntry int64
			for k := 0; k < numIndices; k++ {
				var ok bool
				newEntry, ok = util.MulAddInt64(
					newEntry, io.Operation[i*numIndices+k], x[io.Indices[k]*dim+j],
				)
				if !ok {
					return fmt.Errorf(
						"%s: new X[%d][%d] overflows an int64", caller, io.Indices[i], j,
					)
				}
			}
			newSubMatrixOfX[cursor] = newEntry
			cursor++
		}
	}

	// Replace the affected entries of X, consisting of numIndices rows
	cursor = 0
	for i := 0; i < numIndices; i++ {
		for j := 0; j < dim; j++ {
			x[io.Indices[i]*dim+j] = newSubMatrixOfX[cursor]
			cursor++
		}
	}
	return nil
}

// performColumnOp right-multiplies the dim x dim matrix X in-place by an expansion of
// io.Operation into the dim x dim identity matrix, injecting entries of io.Operation
// into entries of the identity indicated by io.Indices.
func (io *IntOperation) performColumnOp(x []int64, dim int, caller string) error {
	caller = fmt.Sprintf("%s-performColumnOp", caller)
	if io.isPermutation() {
		if (len(io.Indices) != 2) || (len(io.Permutation) != 1) || (len(io.Permutation[0]) != 2) {
			return fmt.Errorf(
				"%s: non-swap permutation with indices %v and cycles %v is not supported",
				caller, io.Indices, io.Permutation,
			)
		}
		j0, j1 := io.Indices[0], io.Indices[1]
		for i := 0; i < dim; i++ {
			x[i*dim+j0], x[i*dim+j1] = x[i*dim+j1], x[i*dim+j0]
		}
		return nil
	}
	numIndices := len(io.Indices)

	// Compute the entries of X that right-multiplying by the column operation modifies
	newSubMatrixOfX := make([]int64, dim*numIndices)
	cursor := 0
	for i := 0; i < dim; i++ {
		for j := 0; j < numIndices; j++ {
			var newEntry int64
			for k := 0; k < numIndices; k++ {
				var ok bool
				newEntry, ok = util.MulAddInt64(
					newEntry, x[i*dim+io.Indices[k]], io.Operation[k*numIndices+j],
				)
				if !ok {
					return fmt.Errorf(
						"%s: new X[%d][%d] overflows an int64", caller, i, io.Indices[j],
					)
				}
			}
			newSubMatrixOfX[cursor] = newEntry
			cursor++
		}
	}

	// Replace the entries of X, consisting of numIndices columns
	cursor = 0
	for i := 0; i < dim; i++ {
		for j := 0; j < numIndices; j++ {
			x[i*dim+io.Indices[j]] = newSubMatrixOfX[cursor]
			cursor++
		}
	}
	return nil
}

// validateIndices performs a quick check on io.Indices
func (io *IntOperation) validateIndices(dim int, caller string) error {
	caller = fmt.Sprintf("%s-validateIndices", caller)
	numIndices := len(io.Indices)
	if numIndices < 1 {
		return fmt.Errorf("%s: there are no indices", caller)
	}

	// Indices should be strictly increasing within bounds dictated by dim
	if io.Indices[0] < 0 {
		return fmt.Errorf("%s: io.Indices[0] = %d is negative", caller, io.Indices[0])
	}
	if dim <= io.Indices[numIndices-1] {
		// Since indices is an increasing array, the only index to check is the last one
		return fmt.Errorf(
			"%s: dim = %d <= %d = io.Indices[%d]",
			caller, dim, io.Indices[numIndices-1], numIndices-1,
		)
	}
	for i := 1; i < numIndices; i++ {
		if io.Indices[i] <= io.Indices[i-1] {
			return fmt.Errorf("%s: io.Indices %v is not strictly increasing", caller, io.Indices)
		}
	}
	return nil
}

// validateAll performs a quick validation on an IntOperation instance, including
// a check that io.Operation and io.Inverse are inverses of each other.
func (io *IntOperation) validateAll(dim int, caller string) error {
	caller = fmt.Sprintf("%s-validateAll", caller)

	// Check compatibility of matrix lengths
	numIndices := len(io.Indices)
	if len(io.Operation) != len(io.Inverse) {
		return fmt.Errorf(
			"%s: mismatched lengths %d and %d of io.Operation and io.Inverse",
			caller, len(io.Operation), len(io.Inverse),
		)
	}
	if (len(io.Operation) != numIndices*numIndices) && (len(io.Operation) != 0) {
		return fmt.Errorf(
			"%s: non-zero length %d of io.Operation is incompatible with numIndices = %d",
			caller, len(io.Operation), numIndices,
		)
	}

	// Check compatibility of matrix and permutation lengths against each other
	if (len(io.Operation) != 0) && (len(io.Permutation) != 0) {
		return fmt.Errorf("%s: both matrix and permutation are populated", caller)
	}
	if (len(io.Operation) == 0) && (len(io.Permutation) == 0) {
		return fmt.Errorf("%s: neither matrix nor permutation is populated", caller)
	}
	if len(io.Operation) != 0 {
		areInverses, err := util.IsInversePair(io.Operation, io.Inverse, numIndices)
		if err != nil {
			return fmt.Errorf("%s: could not check inverses: %q", caller, err.Error())
		}
		if !areInverses {
			return fmt.Errorf(
				"%s: %v and %v are not inverses", caller, io.Operation, io.Inverse,
			)
		}
	}

	// Indices must still be validated
	return io.validateIndices(dim, caller)
}

// isPermutation returns whether io.Permutation has non-zero length
func (io *IntOperation) isPermutation() bool {
	return len(io.Permutation) != 0
}

func transposeSubMatrix(x []int64, n int) []int64 {
	retVal := make([]int64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			retVal[j*n+i] = x[i*n+j]
		}
	}
	return retVal
}
