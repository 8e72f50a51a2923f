package symbolic

import "github.com/sieve4/r4sieve/internal/gf2"

// cross3LUT[x][y] tabulates cross3(x, y) for 3-bit-packed vectors x, y
// (bit0=component0, bit1=component1, bit2=component2), per spec §4.C:
// cross3(u,v) = u_0·v_1 ⊕ u_1·v_2 ⊕ u_2·v_0. This is the symbolic form
// of maj(a,b,c) = ab⊕bc⊕ca applied across two independent 3-vectors.
var cross3LUT [8][8]byte

func init() {
	bit := func(x byte, i uint) byte { return (x >> i) & 1 }
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			xb, yb := byte(x), byte(y)
			cross3LUT[x][y] = bit(xb, 0)*bit(yb, 1) ^ bit(xb, 1)*bit(yb, 2) ^ bit(xb, 2)*bit(yb, 0)
		}
	}
}

func cross3(u, v byte) byte { return cross3LUT[u][v] }

// LSegment is the per-register working state of the symbolic expansion
// (spec §3): a basis L (ni×4: three majority-input taps plus the
// linear output tap), the register's var_offset into v, its width ni,
// and the companion matrix that advances it one clock.
type LSegment struct {
	L         *gf2.Matrix
	companion *gf2.Matrix
	varOffset int
	ni        int
	register  int
}

// NewLSegment creates a fresh LSegment for register id reg (1, 2 or 3)
// of width ni, rooted at varOffset in v, with companion matrix a and
// initial one-hot basis rows tapRows (the three majority-tap positions
// followed by the linear-output-tap position).
func NewLSegment(reg, ni, varOffset int, a *gf2.Matrix, tapRows [4]int) *LSegment {
	l := gf2.New(ni, 4)
	for col, row := range tapRows {
		l.Set(row, col, 1)
	}
	return &LSegment{L: l, companion: a, varOffset: varOffset, ni: ni, register: reg}
}

// Clock advances the basis by one step: L ← A·L.
func (s *LSegment) Clock() {
	s.L = gf2.Mul(s.companion, s.L)
}

// packTaps returns row u of L's first three columns packed as a 3-bit
// value (bit0=col0, bit1=col1, bit2=col2).
func packTaps(l *gf2.Matrix, u int) byte {
	return l.Get(u, 0) | l.Get(u, 1)<<1 | l.Get(u, 2)<<2
}

// EmitRow XORs this LSegment's contribution to the in-progress output
// row dst (a 1×VectorLen accumulator) per spec §4.C's constant, linear
// and quadratic coefficient formulas.
func (s *LSegment) EmitRow(dst *gf2.Matrix) {
	t0 := packTaps(s.L, 0)
	l4 := func(u int) byte { return s.L.Get(u, 3) }

	xorBit(dst, 0, cross3(t0, t0)^l4(0))

	for u := 1; u < s.ni; u++ {
		tu := packTaps(s.L, u)
		val := cross3(tu, t0) ^ cross3(t0, tu) ^ cross3(tu, tu) ^ l4(u)
		xorBit(dst, LinearIndex(s.varOffset, u), val)
	}

	for u := 1; u < s.ni; u++ {
		tu := packTaps(s.L, u)
		for v := u + 1; v < s.ni; v++ {
			tv := packTaps(s.L, v)
			val := cross3(tu, tv) ^ cross3(tv, tu)
			xorBit(dst, QuadIndex(s.varOffset, s.ni, u, v), val)
		}
	}
}

func xorBit(dst *gf2.Matrix, col int, val byte) {
	dst.Set(0, col, dst.Get(0, col)^(val&1))
}
