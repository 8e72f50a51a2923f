// Package symbolic implements the LSegment symbolic-expansion engine
// (spec §4.C): the monomial vector v's 656-entry layout, the LSegment
// basis that tracks each register's taps under clocking, and the
// construction of the 208×656 symbolic keystream system C for a given
// clock pattern.
package symbolic

import "github.com/sieve4/r4sieve/internal/gf2"

// VectorLen is the total monomial count: 1 constant + (18+153) for R1 +
// (21+210) for R2 + (22+231) for R3 = 656 (spec §3).
const VectorLen = 1 + (18 + 153) + (21 + 210) + (22 + 231)

// Register widths (non-LSB count is width-1 linear terms).
const (
	widthR1 = 19
	widthR2 = 22
	widthR3 = 23
)

// var_offset of each register's linear block within v: 1, 172, 403
// (spec §3 — R1 occupies [1,172), R2 [172,403), R3 [403,656)).
const (
	VarOffsetR1 = 1
	VarOffsetR2 = 172
	VarOffsetR3 = 403
)

func quadCount(n int) int { return (n - 1) * (n - 2) / 2 }

// quadOffset implements spec §4.C's quad_offset(u,v) = Σ_{i=1..u-1}
// (ni-1-i) + (v-u-1), the position of the (u,v) quadratic pair within
// a register's quadratic block.
func quadOffset(u, v, ni int) int {
	off := 0
	for i := 1; i < u; i++ {
		off += ni - 1 - i
	}
	return off + (v - u - 1)
}

// LinearIndex returns v's index for register r's linear term at tap u
// (u in [1,ni)), given the register's var_offset.
func LinearIndex(varOffset, u int) int { return varOffset + (u - 1) }

// QuadIndex returns v's index for register r's quadratic term (u,v)
// (1<=u<v<ni), given the register's var_offset and width ni.
func QuadIndex(varOffset, ni, u, v int) int {
	return varOffset + (ni - 1) + quadOffset(u, v, ni)
}

// MonomialVector directly enumerates the 656 degree-≤2 monomials over
// the non-LSB bits of concrete register contents r1, r2, r3 (lengths
// 19, 22, 23; index 0 of each is the LSB, always 1 and absorbed into
// the constant). Used to test the symbolic system against direct
// evaluation (spec §8).
func MonomialVector(r1, r2, r3 []uint8) *gf2.Matrix {
	if len(r1) != widthR1 || len(r2) != widthR2 || len(r3) != widthR3 {
		panic("symbolic.MonomialVector: register length mismatch")
	}
	v := gf2.New(1, VectorLen)
	v.Set(0, 0, 1)
	fillRegister(v, VarOffsetR1, widthR1, r1)
	fillRegister(v, VarOffsetR2, widthR2, r2)
	fillRegister(v, VarOffsetR3, widthR3, r3)
	return v
}

func fillRegister(v *gf2.Matrix, varOffset, ni int, bits []uint8) {
	for u := 1; u < ni; u++ {
		v.Set(0, LinearIndex(varOffset, u), bits[u])
	}
	for u := 1; u < ni; u++ {
		for w := u + 1; w < ni; w++ {
			v.Set(0, QuadIndex(varOffset, ni, u, w), bits[u]&bits[w])
		}
	}
}
