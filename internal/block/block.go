// Package block assembles the per-block (A_i, b_i) coefficient systems
// (spec §4.F) from a CtHt[r4] entry, the v-diff propagator matrices,
// and the descrambled ciphertext blocks.
package block

import (
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/symbolic"
	"github.com/sieve4/r4sieve/internal/vdiff"
)

// NumBlocks is the number of ciphertext blocks per message (spec §6).
const NumBlocks = vdiff.NumBlocks

// System is one block's assembled (A, b) pair: A is 48×655 (the
// coefficient matrix over the 655 non-constant monomials), b is 48×1.
type System struct {
	A *gf2.Matrix
	B *gf2.Matrix
}

// CipherHt computes c·H^T for one descrambled ciphertext block c
// (1×208) and parity-check matrix h (48×208), yielding a 1×48 vector.
func CipherHt(c, h *gf2.Matrix) *gf2.Matrix {
	if c.Rows() != 1 || c.Cols() != symbolic.BlockBits {
		coreerr.Invariant("CipherHt", "ciphertext block must be 1x%d, got %dx%d", symbolic.BlockBits, c.Rows(), c.Cols())
	}
	return gf2.Mul(c, h.Transpose())
}

// Assemble builds all NumBlocks (A_i, b_i) pairs for a fixed r4, given
// its CtHt entry (656×48), the 14 v-diff matrices, and the 15
// precomputed cHt_i = c_i·H^T vectors (1×48 each), per spec §4.F.
func Assemble(ctHt *gf2.Matrix, vdiffs [vdiff.NumDiffRows]*gf2.Matrix, cipherHt [NumBlocks]*gf2.Matrix) [NumBlocks]System {
	if ctHt.Rows() != symbolic.VectorLen || ctHt.Cols() != 48 {
		coreerr.Invariant("Assemble", "CtHt must be %dx48, got %dx%d", symbolic.VectorLen, ctHt.Rows(), ctHt.Cols())
	}

	var out [NumBlocks]System
	for i := 0; i < NumBlocks; i++ {
		var s *gf2.Matrix
		if i == 0 {
			s = ctHt
		} else {
			s = gf2.Mul(vdiffs[i-1], ctHt)
		}

		r0 := s.Window(0, 0, 1, 48).Materialize()
		gf2.AddInplace(r0, cipherHt[i])
		b := r0.Transpose() // 48x1

		aPart := s.Window(1, 0, symbolic.VectorLen, 48).Materialize() // 655x48
		a := aPart.Transpose()                                       // 48x655

		out[i] = System{A: a, B: b}
	}
	return out
}
