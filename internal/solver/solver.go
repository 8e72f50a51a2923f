// Package solver implements the incremental GF(2) solvability checker
// of spec §4.H: prepare once (RREF of A^T), then test many right-hand
// sides b in O(pivots) each.
package solver

import (
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/gf2"
)

// Context holds the prepared state for one tall matrix A: the RREF of
// A^T and its pivot columns, letting Solvable test A·x=b in O(pivots)
// per call instead of re-running elimination every time.
type Context struct {
	rref      *gf2.Matrix // A^T in RREF, n×m
	pivotCols []int       // pivotCols[i] is the column of rref's pivot row i
	m, n      int         // A is m×n
}

// Prepare computes A^T (n×m), reduces it to RREF, and records pivot
// columns (spec §4.H). A is not retained or mutated.
func Prepare(a *gf2.Matrix) *Context {
	m, n := a.Rows(), a.Cols()
	at := a.Transpose()
	rref, _, pivots := at.Echelonize()
	return &Context{rref: rref, pivotCols: pivots, m: m, n: n}
}

// Solvable reports whether A·x=b has a GF(2) solution for this
// context's A, given right-hand side b (m×1). It stacks b^T below the
// RREF of A^T and sweeps it against each pivot row; the system is
// solvable iff the swept row reduces to all zero (spec §4.H).
func (c *Context) Solvable(b *gf2.Matrix) bool {
	if b.Rows() != c.m || b.Cols() != 1 {
		coreerr.Invariant("Solvable", "b must be %dx1, got %dx%d", c.m, b.Rows(), b.Cols())
	}

	stride := (c.m + 63) / 64
	row := make([]uint64, stride)
	for j := 0; j < c.m; j++ {
		if b.Get(j, 0) != 0 {
			row[j/64] |= uint64(1) << uint(j%64)
		}
	}

	for i, col := range c.pivotCols {
		if (row[col/64]>>uint(col%64))&1 == 0 {
			continue
		}
		pivotRow := c.rref.Row(i)
		for k := range row {
			row[k] ^= pivotRow[k]
		}
	}

	for _, w := range row {
		if w != 0 {
			return false
		}
	}
	return true
}

// Rank returns the rank of A (number of pivot columns found).
func (c *Context) Rank() int { return len(c.pivotCols) }

// Release drops the context's references to its backing storage. The
// prepared RREF and pivot list can be large (up to n×m bits); after
// Release they are collectable even while the Context itself is still
// reachable, mirroring the explicit teardown discipline of spec §9's
// CoreContext redesign.
func (c *Context) Release() {
	c.rref = nil
	c.pivotCols = nil
}
