package snfops

// Copyright (c) 2025 Colin McRae

import (
	"fmt"
	"math/big"
	"math/rand"

	"github.com/predrag3141/ISNF/util"
)

// maxPreconditioners is the number of preconditioners Compute tries before falling
// back on elimination in int64 arithmetic
const maxPreconditioners = 64

// computeByHermite tries to compute the Smith Normal Form of the non-singular dim x dim
// matrix m via the Hermite Normal Form of m C, where C is preconditioner(dim, trial):
//
// - U m C = H, with U unimodular and H the Hermite Normal Form of m C
//
// - H R2 = S, where R2 clears the entries above the diagonal of H one row at a time
//
// so that L = U and R = C R2. This succeeds when each diagonal entry of H divides the
// entries to its right, and the diagonal is then a divisibility chain. Otherwise, or when
// L or R does not fit in int64 entries, the returned result and error are both nil and
// another trial may succeed.
//
// S is unique, so if it does not fit in int64 entries no trial can succeed and the error
// is an *InvalidInputError of kind EntriesTooLarge.
func computeByHermite(m []int64, dim, trial int, caller string) (*Result, error) {
	caller = fmt.Sprintf("%s-computeByHermite", caller)
	c, err := preconditioner(dim, trial, caller)
	if err != nil {
		// An overflowing preconditioner is skipped like one that does not lead to a
		// Smith Normal Form
		return nil, nil
	}
	mAsBigInt := util.ToBigInt(m)
	var mc []*big.Int
	mc, err = util.MultiplyBigInt(mAsBigInt, util.ToBigInt(c), dim)
	if err != nil {
		return nil, fmt.Errorf("%s: could not compute M C: %q", caller, err.Error())
	}
	var h, u []*big.Int
	h, u, err = hermiteForm(mc, dim, caller)
	if err != nil {
		return nil, err
	}
	r := util.ToBigInt(c)
	if !clearAboveDiagonal(h, r, dim) {
		return nil, nil
	}

	s, ok := util.ToInt64(h)
	if !ok {
		return nil, newInvalidInputError(
			EntriesTooLarge, caller, "invariant factor %s does not fit in an int64",
			h[dim*dim-1].String(),
		)
	}
	res := &Result{Dim: dim, S: s}
	var okL, okR bool
	res.L, okL = util.ToInt64(u)
	res.R, okR = util.ToInt64(r)
	if !okL || !okR {
		return nil, nil
	}
	res.LInverse, res.RInverse, err = inverseTransforms(mAsBigInt, u, r, h, dim, caller)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// preconditioner returns the unimodular dim x dim matrix by which computeByHermite
// right-multiplies its input in the given trial. Trial 0 is the identity. Later trials
// permute columns pseudo-randomly and then add 2 dim random multiples of columns to
// other columns, with multiples that grow with the trial number. The same trial always
// gives the same matrix.
func preconditioner(dim, trial int, caller string) ([]int64, error) {
	caller = fmt.Sprintf("%s-preconditioner", caller)
	retVal := util.Identity(dim)
	if (trial == 0) || (dim < 2) {
		return retVal, nil
	}
	rng := rand.New(rand.NewSource(int64(trial)))
	maxMultiple := 1 + trial/4
	ops := make([]*IntOperation, 0, 3*dim)
	for i := dim - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		if j != i {
			ops = append(ops, newSwap(i, j))
		}
	}
	for k := 0; k < 2*dim; k++ {
		i, j := rng.Intn(dim), rng.Intn(dim)
		multiple := int64(rng.Intn(2*maxMultiple+1) - maxMultiple)
		if (i == j) || (multiple == 0) {
			continue
		}

		// Column j <- column j + multiple * column i
		op, err := newTwoByTwo(i, j, 1, multiple, 0, 1, caller)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	for _, op := range ops {
		if err := op.validateAll(dim, caller); err != nil {
			return nil, err
		}
		if err := op.performColumnOp(retVal, dim, caller); err != nil {
			return nil, err
		}
	}
	return retVal, nil
}

// hermiteForm returns the Hermite Normal Form, H, of the non-singular dim x dim matrix
// x, along with the unimodular U for which U x = H. H is upper triangular with a
// positive diagonal, and 0 <= H[i][j] < H[j][j] for i < j. x is not modified.
func hermiteForm(x []*big.Int, dim int, caller string) ([]*big.Int, []*big.Int, error) {
	caller = fmt.Sprintf("%s-hermiteForm", caller)
	h := make([]*big.Int, dim*dim)
	copy(h, x)
	u := util.ToBigInt(util.Identity(dim))
	for k := 0; k < dim; k++ {
		// Rows k and i become a row_k + b row_i and c row_k + d row_i, where
		// g = a H[k][k] + b H[i][k] is the gcd and [[a, b], [c, d]] has determinant 1
		for i := k + 1; i < dim; i++ {
			if h[i*dim+k].Sign() == 0 {
				continue
			}
			a, b := big.NewInt(0), big.NewInt(0)
			g := big.NewInt(0).GCD(a, b, h[k*dim+k], h[i*dim+k])
			c := big.NewInt(0).Quo(h[i*dim+k], g)
			c.Neg(c)
			d := big.NewInt(0).Quo(h[k*dim+k], g)
			combineRows(h, dim, k, i, a, b, c, d)
			combineRows(u, dim, k, i, a, b, c, d)
		}
		switch h[k*dim+k].Sign() {
		case 0:
			return nil, nil, fmt.Errorf("%s: column %d has no pivot", caller, k)
		case -1:
			negateRow(h, dim, k)
			negateRow(u, dim, k)
		}

		// Reduce the entries above the pivot into [0, H[k][k])
		for i := 0; i < k; i++ {
			q := big.NewInt(0).Div(h[i*dim+k], h[k*dim+k])
			if q.Sign() != 0 {
				subtractRowMultiple(h, dim, i, k, q)
				subtractRowMultiple(u, dim, i, k, q)
			}
		}
	}
	return h, u, nil
}

// clearAboveDiagonal uses column operations to zero out the entries above the diagonal
// of the upper triangular matrix H, applying the same operations to R. It returns false
// if some H[i][i] does not divide an entry to its right, or if the resulting diagonal is
// not a divisibility chain. On false, H and R are left partially transformed.
func clearAboveDiagonal(h, r []*big.Int, dim int) bool {
	remainder := big.NewInt(0)
	for i := 0; i < dim; i++ {
		for j := i + 1; j < dim; j++ {
			if h[i*dim+j].Sign() == 0 {
				continue
			}
			q := big.NewInt(0)
			q.QuoRem(h[i*dim+j], h[i*dim+i], remainder)
			if remainder.Sign() != 0 {
				return false
			}
			subtractColumnMultiple(h, dim, j, i, q)
			subtractColumnMultiple(r, dim, j, i, q)
		}
	}
	for i := 0; i < dim-1; i++ {
		remainder.Rem(h[(i+1)*dim+i+1], h[i*dim+i])
		if remainder.Sign() != 0 {
			return false
		}
	}
	return true
}

// inverseTransforms returns the inverses of L and R given L M R = S, in which S is
// diagonal and non-singular: L^-1 = M R S^-1 and R^-1 = S^-1 L M. Every division is
// exact. An inverse with an entry that does not fit in an int64 is returned as nil.
func inverseTransforms(m, l, r, s []*big.Int, dim int, caller string) ([]int64, []int64, error) {
	caller = fmt.Sprintf("%s-inverseTransforms", caller)
	mr, err := util.MultiplyBigInt(m, r, dim)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: could not compute M R: %q", caller, err.Error())
	}
	var lm []*big.Int
	lm, err = util.MultiplyBigInt(l, m, dim)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: could not compute L M: %q", caller, err.Error())
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			mr[i*dim+j].Quo(mr[i*dim+j], s[j*dim+j])
			lm[i*dim+j].Quo(lm[i*dim+j], s[i*dim+i])
		}
	}
	lInverse, _ := util.ToInt64(mr)
	rInverse, _ := util.ToInt64(lm)
	return lInverse, rInverse, nil
}

// combineRows replaces rows k and i of X with a row_k + b row_i and c row_k + d row_i.
// Entries of X are replaced, never modified in place.
func combineRows(x []*big.Int, dim, k, i int, a, b, c, d *big.Int) {
	for j := 0; j < dim; j++ {
		xk, xi := x[k*dim+j], x[i*dim+j]
		newXK := big.NewInt(0).Mul(a, xk)
		newXK.Add(newXK, big.NewInt(0).Mul(b, xi))
		newXI := big.NewInt(0).Mul(c, xk)
		newXI.Add(newXI, big.NewInt(0).Mul(d, xi))
		x[k*dim+j], x[i*dim+j] = newXK, newXI
	}
}

// subtractRowMultiple replaces row i of X with row_i - q row_k
func subtractRowMultiple(x []*big.Int, dim, i, k int, q *big.Int) {
	for j := 0; j < dim; j++ {
		product := big.NewInt(0).Mul(q, x[k*dim+j])
		x[i*dim+j] = product.Sub(x[i*dim+j], product)
	}
}

// subtractColumnMultiple replaces column j of X with column_j - q column_i
func subtractColumnMultiple(x []*big.Int, dim, j, i int, q *big.Int) {
	for row := 0; row < dim; row++ {
		product := big.NewInt(0).Mul(q, x[row*dim+i])
		x[row*dim+j] = product.Sub(x[row*dim+j], product)
	}
}

func negateRow(x []*big.Int, dim, k int) {
	for j := 0; j < dim; j++ {
		x[k*dim+j] = big.NewInt(0).Neg(x[k*dim+j])
	}
}
