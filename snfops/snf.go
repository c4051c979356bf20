package snfops

// Copyright (c) 2025 Colin McRae

import (
	"fmt"

	"github.com/predrag3141/ISNF/util"
)

// Result holds the Smith Normal Form, S, of a dim x dim integer matrix M, along
// with unimodular L and R for which L M R = S. All matrices are row-major.
//
// S is diagonal with non-negative diagonal entries, each of which divides the
// next. LInverse and RInverse are the inverses of L and R, which are integer
// matrices because L and R are unimodular. Either is nil if it has an entry that
// does not fit in an int64.
type Result struct {
	Dim      int
	S        []int64
	L        []int64
	R        []int64
	LInverse []int64
	RInverse []int64
}

// Invariants returns the diagonal of res.S, i.e. the invariant factors of the input
func (res *Result) Invariants() []int64 {
	retVal := make([]int64, res.Dim)
	for i := 0; i < res.Dim; i++ {
		retVal[i] = res.S[i*res.Dim+i]
	}
	return retVal
}

// state holds the matrices being transformed while computing the Smith Normal Form
// by elimination.
// Every row operation E updates S <- ES, L <- EL and LInverse <- LInverse E^-1.
// Every column operation F updates S <- SF, R <- RF and RInverse <- F^-1 RInverse.
// This keeps L M R = S throughout.
type state struct {
	dim      int
	s        []int64
	l        []int64
	r        []int64
	lInverse []int64
	rInverse []int64
}

// Compute returns the Smith Normal Form of the dim x dim matrix m, which is
// row-major and is not modified.
//
// m must be non-singular. Singularity is decided exactly, with an integer
// determinant. A non-square or singular m, or one whose Smith Normal Form or
// transforms would not fit in int64 entries, results in an *InvalidInputError.
// LInverse and RInverse are left nil if they would not fit in int64 entries.
//
// Compute works in *big.Int arithmetic from the Hermite Normal Form of m C for a
// sequence of unimodular preconditioners C, which keeps the entries of L and R small.
// If no preconditioner leads to the Smith Normal Form, Compute falls back on
// elimination with overflow-checked int64 arithmetic.
func Compute(m []int64, dim int) (*Result, error) {
	caller := "Compute"
	if (dim < 1) || (len(m) != dim*dim) {
		return nil, newInvalidInputError(
			NonSquareMatrix, caller, "%d entries do not form a %d x %d matrix", len(m), dim, dim,
		)
	}
	det, err := util.Determinant(m, dim)
	if err != nil {
		return nil, newInvalidInputError(NonSquareMatrix, caller, "%s", err.Error())
	}
	if det.Sign() == 0 {
		return nil, newInvalidInputError(SingularMatrix, caller, "determinant is zero")
	}

	for trial := 0; trial < maxPreconditioners; trial++ {
		var res *Result
		res, err = computeByHermite(m, dim, trial, caller)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return computeByElimination(m, dim, caller)
}

// computeByElimination returns the Smith Normal Form of the non-singular dim x dim matrix
// m using row and column operations on int64 matrices. Overflow in S, L or R results in
// an *InvalidInputError of kind EntriesTooLarge; overflow in LInverse or RInverse only
// leaves that inverse nil.
func computeByElimination(m []int64, dim int, caller string) (*Result, error) {
	caller = fmt.Sprintf("%s-computeByElimination", caller)
	st := &state{
		dim:      dim,
		s:        util.Copy(m),
		l:        util.Identity(dim),
		r:        util.Identity(dim),
		lInverse: util.Identity(dim),
		rInverse: util.Identity(dim),
	}
	err := st.diagonalize(caller)
	if err == nil {
		err = st.enforceDivisibility(caller)
	}
	if err == nil {
		err = st.normalizeSigns(caller)
	}
	if err != nil {
		if IsInvalidInput(err, "") {
			return nil, err
		}
		return nil, newInvalidInputError(EntriesTooLarge, caller, "%s", err.Error())
	}
	return &Result{
		Dim:      dim,
		S:        st.s,
		L:        st.l,
		R:        st.r,
		LInverse: st.lInverse,
		RInverse: st.rInverse,
	}, nil
}

// diagonalize zeroes out the off-diagonal entries of S, one row and column at a time
func (st *state) diagonalize(caller string) error {
	caller = fmt.Sprintf("%s-diagonalize", caller)
	for k := 0; k < st.dim; k++ {
		pivotRow, pivotCol, found := smallestNonZero(st.s, st.dim, k)
		if !found {
			// Unreachable for a non-zero determinant
			return newInvalidInputError(
				SingularMatrix, caller, "no non-zero pivot in rows and columns %d and beyond", k,
			)
		}
		if pivotRow != k {
			if err := st.rowOp(newSwap(k, pivotRow), caller); err != nil {
				return err
			}
		}
		if pivotCol != k {
			if err := st.columnOp(newSwap(k, pivotCol), caller); err != nil {
				return err
			}
		}
		if err := st.clearRowAndColumn(k, caller); err != nil {
			return err
		}
	}
	return nil
}

// clearRowAndColumn zeroes out S[i][k] and S[k][i] for i > k, leaving their gcd
// (up to sign) in S[k][k]. S[k][k] must be non-zero.
//
// Column operations can re-populate column k, in which case the process repeats.
// That only happens when S[k][k] did not divide some entry of row k, so each
// repetition strictly decreases |S[k][k]| and the loop terminates.
func (st *state) clearRowAndColumn(k int, caller string) error {
	caller = fmt.Sprintf("%s-clearRowAndColumn", caller)
	dim := st.dim
	for {
		for i := k + 1; i < dim; i++ {
			if st.s[i*dim+k] == 0 {
				continue
			}
			io, err := getRowReduction(st.s, dim, k, i, k, caller)
			if err != nil {
				return err
			}
			if err = st.rowOp(io, caller); err != nil {
				return err
			}
		}
		for j := k + 1; j < dim; j++ {
			if st.s[k*dim+j] == 0 {
				continue
			}
			io, err := getColumnReduction(st.s, dim, k, k, j, caller)
			if err != nil {
				return err
			}
			if err = st.columnOp(io, caller); err != nil {
				return err
			}
		}
		columnIsClear := true
		for i := k + 1; i < dim; i++ {
			if st.s[i*dim+k] != 0 {
				columnIsClear = false
				break
			}
		}
		if columnIsClear {
			return nil
		}
	}
}

// enforceDivisibility makes each diagonal entry of the diagonal matrix S divide the next.
//
// For i < j with S[i][i] not dividing S[j][j], adding row j to row i and clearing row
// and column i again leaves gcd(S[i][i], S[j][j]) in S[i][i] and their lcm (up to sign)
// in S[j][j]. After j has run through i+1,...,dim-1, S[i][i] divides every later diagonal
// entry, and later replacements by gcds and lcms of those entries preserve that.
func (st *state) enforceDivisibility(caller string) error {
	caller = fmt.Sprintf("%s-enforceDivisibility", caller)
	dim := st.dim
	for i := 0; i < dim-1; i++ {
		for j := i + 1; j < dim; j++ {
			if st.s[j*dim+j]%st.s[i*dim+i] == 0 {
				continue
			}
			addRow, err := newTwoByTwo(i, j, 1, 1, 0, 1, caller)
			if err != nil {
				return err
			}
			if err = st.rowOp(addRow, caller); err != nil {
				return err
			}
			if err = st.clearRowAndColumn(i, caller); err != nil {
				return err
			}
		}
	}
	return nil
}

// normalizeSigns negates rows of S and L with negative diagonal entries in S
func (st *state) normalizeSigns(caller string) error {
	caller = fmt.Sprintf("%s-normalizeSigns", caller)
	for i := 0; i < st.dim; i++ {
		if st.s[i*st.dim+i] < 0 {
			if err := st.rowOp(newNegation(i), caller); err != nil {
				return err
			}
		}
	}
	return nil
}

// rowOp applies the row operation io to S and L, and its inverse to LInverse.
// LInverse is dropped, rather than returning an error, if it overflows.
func (st *state) rowOp(io *IntOperation, caller string) error {
	caller = fmt.Sprintf("%s-rowOp", caller)
	if err := io.validateAll(st.dim, caller); err != nil {
		return err
	}
	if err := io.performRowOp(st.s, st.dim, caller); err != nil {
		return err
	}
	if err := io.performRowOp(st.l, st.dim, caller); err != nil {
		return err
	}
	if st.lInverse != nil {
		if err := io.inverse().performColumnOp(st.lInverse, st.dim, caller); err != nil {
			st.lInverse = nil
		}
	}
	return nil
}

// columnOp applies the column operation io to S and R, and its inverse to RInverse.
// RInverse is dropped, rather than returning an error, if it overflows.
func (st *state) columnOp(io *IntOperation, caller string) error {
	caller = fmt.Sprintf("%s-columnOp", caller)
	if err := io.validateAll(st.dim, caller); err != nil {
		return err
	}
	if err := io.performColumnOp(st.s, st.dim, caller); err != nil {
		return err
	}
	if err := io.performColumnOp(st.r, st.dim, caller); err != nil {
		return err
	}
	if st.rInverse != nil {
		if err := io.inverse().performRowOp(st.rInverse, st.dim, caller); err != nil {
			st.rInverse = nil
		}
	}
	return nil
}

// smallestNonZero returns the row and column of the entry of X with the smallest
// non-zero absolute value, among rows and columns k,...,dim-1; or found == false if
// that sub-matrix is all zero. Ties go to the first entry in row-major order.
func smallestNonZero(x []int64, dim, k int) (int, int, bool) {
	bestRow, bestCol := -1, -1
	var bestAbs uint64
	for i := k; i < dim; i++ {
		for j := k; j < dim; j++ {
			entry := x[i*dim+j]
			if entry == 0 {
				continue
			}
			absEntry := uint64(entry)
			if entry < 0 {
				absEntry = uint64(-entry) // correct for math.MinInt64 too
			}
			if (bestRow < 0) || (absEntry < bestAbs) {
				bestRow, bestCol, bestAbs = i, j, absEntry
			}
		}
	}
	return bestRow, bestCol, bestRow >= 0
}
