// Package lfsr builds the four LFSR companion matrices (spec §4.B) and
// the 2^16-entry clock-control pattern table (spec §3/§4.B).
package lfsr

import (
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/gf2"
)

// Feedback polynomials and widths, hard-coded per spec §6.
const (
	FeedbackR1 = 0xE4000
	FeedbackR2 = 0x622000
	FeedbackR3 = 0xCC0000
	FeedbackR4 = 0x26200

	LenR1 = 19
	LenR2 = 22
	LenR3 = 23
	LenR4 = 17
)

// CompanionMatrix builds the n×n transposed companion matrix for the
// feedback polynomial fp of a register of length n (spec §4.B): row 0
// encodes the feedback taps (fp>>(j+1))&1 for j<n-1 plus a 1 at column
// n-1, and ones on the subdiagonal elsewhere.
func CompanionMatrix(fp uint32, n int) *gf2.Matrix {
	if n <= 0 {
		coreerr.Invariant("CompanionMatrix", "register length must be positive, got %d", n)
	}
	a := gf2.New(n, n)
	for j := 0; j < n-1; j++ {
		a.Set(0, j, uint8((fp>>uint(j+1))&1))
	}
	a.Set(0, n-1, 1)
	for i := 1; i < n; i++ {
		a.Set(i, i-1, 1)
	}
	return a
}

// Companions holds the four companion matrices A1..A4, built once at
// startup and read-only thereafter (spec §3).
type Companions struct {
	A1, A2, A3, A4 *gf2.Matrix
}

// BuildCompanions constructs all four companion matrices.
func BuildCompanions() *Companions {
	return &Companions{
		A1: CompanionMatrix(FeedbackR1, LenR1),
		A2: CompanionMatrix(FeedbackR2, LenR2),
		A3: CompanionMatrix(FeedbackR3, LenR3),
		A4: CompanionMatrix(FeedbackR4, LenR4),
	}
}

// ClockVector advances a 1×n row state vector by one step: state · A.
func ClockVector(state, a *gf2.Matrix) *gf2.Matrix {
	return gf2.Mul(state, a)
}
