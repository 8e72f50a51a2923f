package symbolic

import (
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/lfsr"
)

// DiscardPrefix and BlockBits are hard-coded per spec §6.
const (
	DiscardPrefix = 250
	BlockBits     = 208
)

// Initial one-hot tap rows per register (spec §4.C): the three
// majority-input tap positions followed by the linear-output tap.
var (
	initialTapsR1 = [4]int{1, 6, 15, 11}
	initialTapsR2 = [4]int{3, 8, 14, 1}
	initialTapsR3 = [4]int{4, 15, 19, 0}
)

// NewSegments builds the three fresh LSegments for one pattern
// evaluation, from the precomputed companion matrices.
func NewSegments(c *lfsr.Companions) (r1, r2, r3 *LSegment) {
	r1 = NewLSegment(1, widthR1, VarOffsetR1, c.A1, initialTapsR1)
	r2 = NewLSegment(2, widthR2, VarOffsetR2, c.A2, initialTapsR2)
	r3 = NewLSegment(3, widthR3, VarOffsetR3, c.A3, initialTapsR3)
	return
}

// BuildSystem runs one pattern of BlockBits+DiscardPrefix steps
// (458 = 250+208, spec §6) under clock mask sequence pattern, and
// returns the 208×656 symbolic system C (spec §3): row j of C holds
// the coefficients such that row_j · v = z_j for the j-th output bit.
//
// At each step, each register clocks iff its mask bit is set (bit 2 =
// R1, bit 1 = R2, bit 0 = R3, spec §3), then — once the discard prefix
// has elapsed — each register emits its row contribution, XORed
// together across the three registers (spec §4.C).
func BuildSystem(pattern []byte, c *lfsr.Companions) *gf2.Matrix {
	if len(pattern) != DiscardPrefix+BlockBits {
		coreerr.Invariant("BuildSystem", "pattern must have %d steps, got %d", DiscardPrefix+BlockBits, len(pattern))
	}

	r1, r2, r3 := NewSegments(c)
	out := gf2.New(BlockBits, VectorLen)

	for step := 0; step < len(pattern); step++ {
		mask := pattern[step]
		if mask&^0b111 != 0 {
			coreerr.Invariant("BuildSystem", "clock mask at step %d has bits above bit 2: %#x", step, mask)
		}
		if mask&0b100 != 0 {
			r1.Clock()
		}
		if mask&0b010 != 0 {
			r2.Clock()
		}
		if mask&0b001 != 0 {
			r3.Clock()
		}

		if step < DiscardPrefix {
			continue
		}
		j := step - DiscardPrefix
		rowBuf := gf2.New(1, VectorLen)
		r1.EmitRow(rowBuf)
		r2.EmitRow(rowBuf)
		r3.EmitRow(rowBuf)
		for k := 0; k < VectorLen; k++ {
			if rowBuf.Get(0, k) != 0 {
				out.Set(j, k, 1)
			}
		}
	}

	return out
}
