package lfsr

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sieve4/r4sieve/internal/gf2"
)

func TestCompanionMatrixShape(t *testing.T) {
	c := BuildCompanions()
	require.Equal(t, LenR1, c.A1.Rows())
	require.Equal(t, LenR1, c.A1.Cols())
	require.Equal(t, LenR2, c.A2.Rows())
	require.Equal(t, LenR3, c.A3.Rows())
	require.Equal(t, LenR4, c.A4.Rows())
	// subdiagonal ones
	for i := 1; i < c.A1.Rows(); i++ {
		require.EqualValues(t, 1, c.A1.Get(i, i-1))
	}
	require.EqualValues(t, 1, c.A1.Get(0, LenR1-1))
}

// clockBitsCompanion must agree with the general matrix form state·A
// for every register width, establishing the two representations of
// "clock the register by one step" are the same operation.
func TestClockBitsCompanionMatchesMatrixForm(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cases := []struct {
		fp uint32
		n  int
	}{
		{FeedbackR1, LenR1},
		{FeedbackR2, LenR2},
		{FeedbackR3, LenR3},
		{FeedbackR4, LenR4},
	}
	for _, c := range cases {
		a := CompanionMatrix(c.fp, c.n)
		for trial := 0; trial < 20; trial++ {
			state := uint32(rng.Intn(1 << uint(c.n)))

			row := gf2.New(1, c.n)
			for j := 0; j < c.n; j++ {
				row.Set(0, j, uint8((state>>uint(j))&1))
			}
			next := ClockVector(row, a)

			var wantBits uint32
			for j := 0; j < c.n; j++ {
				wantBits |= uint32(next.Get(0, j)) << uint(j)
			}

			got := clockBitsCompanion(state, c.fp, c.n)
			require.Equal(t, wantBits, got, "mismatch for n=%d state=%b", c.n, state)
		}
	}
}

func TestClockPatternMaskHasNoHighBits(t *testing.T) {
	for _, r4 := range []uint16{0, 1, 0xFFFF, 0x1234, 0x8000} {
		row := GeneratePattern(r4)
		for i, b := range row {
			require.Zero(t, b&^0b111, "r4=%#x step=%d byte=%#x has bits above bit 2", r4, i, b)
		}
	}
}

func TestFromBytesRejectsWrongLength(t *testing.T) {
	require.Panics(t, func() {
		FromBytes(make([]byte, 10))
	})
}

func TestMajority(t *testing.T) {
	require.EqualValues(t, 0, maj(0, 0, 0))
	require.EqualValues(t, 1, maj(1, 1, 0))
	require.EqualValues(t, 1, maj(1, 0, 1))
	require.EqualValues(t, 1, maj(1, 1, 1))
	require.EqualValues(t, 0, maj(0, 1, 0))
}
