// Package vdiff builds the 14 v-diff propagator matrices V[1..14]
// (spec §4.E): 656×656 GF(2) transforms such that v_i = v_0 · V[i].
package vdiff

import (
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/symbolic"
)

// NumBlocks and NumDiffRows are hard-coded per spec §6/§9 (15 blocks,
// 14 zS rows — block 0 is the implicit identity, spec §9 Open
// Question).
const (
	NumBlocks   = 15
	NumDiffRows = 14
)

// Diff holds one zS row: the per-register state-difference bits for
// one inter-block transition. R1/R2/R3 each have length equal to the
// register's width, index 0 unused and always 0 (spec §3: "length n_r,
// LSB=0") and indices [1,n_r) holding the actual difference bits.
type Diff struct {
	R1 []uint8 // length 19
	R2 []uint8 // length 22
	R3 []uint8 // length 23
}

func registerWidth(which int) int {
	switch which {
	case 1:
		return 19
	case 2:
		return 22
	case 3:
		return 23
	default:
		coreerr.Invariant("registerWidth", "unknown register %d", which)
		return 0
	}
}

func varOffset(which int) int {
	switch which {
	case 1:
		return symbolic.VarOffsetR1
	case 2:
		return symbolic.VarOffsetR2
	case 3:
		return symbolic.VarOffsetR3
	default:
		coreerr.Invariant("varOffset", "unknown register %d", which)
		return 0
	}
}

// applyRegister injects register which's difference vector d into V
// per spec §4.E's linear and quadratic block rules.
func applyRegister(v *gf2.Matrix, which int, d []uint8) {
	ni := registerWidth(which)
	if len(d) != ni {
		coreerr.Invariant("applyRegister", "register %d diff must have length %d, got %d", which, ni, len(d))
	}
	vo := varOffset(which)

	for j := 1; j < ni; j++ {
		v.Set(0, symbolic.LinearIndex(vo, j), d[j])
	}
	for u := 1; u < ni; u++ {
		lu := symbolic.LinearIndex(vo, u)
		for w := u + 1; w < ni; w++ {
			lv := symbolic.LinearIndex(vo, w)
			k := symbolic.QuadIndex(vo, ni, u, w)
			v.Set(0, k, d[u]&d[w])
			v.Set(lu, k, d[w])
			v.Set(lv, k, d[u])
		}
	}
}

// Build constructs the single V[i] (1-indexed, i in [1,14]) matrix from
// zS row i-1.
func Build(d Diff) *gf2.Matrix {
	v := gf2.New(symbolic.VectorLen, symbolic.VectorLen)
	for i := 0; i < symbolic.VectorLen; i++ {
		v.Set(i, i, 1)
	}
	applyRegister(v, 1, d.R1)
	applyRegister(v, 2, d.R2)
	applyRegister(v, 3, d.R3)
	return v
}

// BuildAll constructs V[1..14] from the 14 zS rows, in order.
func BuildAll(rows []Diff) [NumDiffRows]*gf2.Matrix {
	if len(rows) != NumDiffRows {
		coreerr.Invariant("BuildAll", "expected %d zS rows, got %d", NumDiffRows, len(rows))
	}
	var out [NumDiffRows]*gf2.Matrix
	for i, d := range rows {
		out[i] = Build(d)
	}
	return out
}
