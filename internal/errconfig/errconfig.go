// Package errconfig enumerates the error configurations of spec §4.G:
// 15 "unknown-only" configurations plus 15·14·208 "unknown+known"
// configurations, and caches the per-position syndrome H·e_p used by
// KNOWN_POSITION blocks.
package errconfig

import (
	"golang.org/x/exp/slices"

	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/symbolic"
)

// Status is a per-block error status.
type Status int

const (
	StatusNone Status = iota
	StatusUnknownPosition
	StatusKnownPosition
)

// NumBlocks, per spec §6.
const NumBlocks = 15

// Known describes a KNOWN_POSITION block: which block, and at what bit
// position within it (spec §3).
type Known struct {
	Block    int
	Position int
}

// Config is one error configuration: block Unknown has UNKNOWN_POSITION
// status; Known (if non-nil) names a second block with KNOWN_POSITION
// status at a given bit position; every other block has NONE status.
type Config struct {
	Unknown int
	Known   *Known
}

// StatusOf reports the error status of block j under this
// configuration, and its known bit position if status is
// StatusKnownPosition.
func (c Config) StatusOf(j int) (status Status, position int) {
	if j == c.Unknown {
		return StatusUnknownPosition, 0
	}
	if c.Known != nil && j == c.Known.Block {
		return StatusKnownPosition, c.Known.Position
	}
	return StatusNone, 0
}

// Enumerator generates configurations and caches per-position
// syndromes H·e_p (spec §4.G).
type Enumerator struct {
	h         *gf2.Matrix
	syndromes [symbolic.BlockBits]*gf2.Matrix
}

// NewEnumerator validates h (48×208) and precomputes the syndrome
// cache H·e_p for every p in [0, BlockBits).
func NewEnumerator(h *gf2.Matrix) *Enumerator {
	if h.Rows() != 48 || h.Cols() != symbolic.BlockBits {
		coreerr.Invariant("NewEnumerator", "H must be 48x%d, got %dx%d", symbolic.BlockBits, h.Rows(), h.Cols())
	}
	e := &Enumerator{h: h}
	for p := 0; p < symbolic.BlockBits; p++ {
		e.syndromes[p] = h.Window(0, p, 48, p+1).Materialize()
	}
	return e
}

// Syndrome returns the cached H·e_p (48×1) for bit position p.
func (e *Enumerator) Syndrome(p int) *gf2.Matrix {
	if p < 0 || p >= symbolic.BlockBits {
		coreerr.Invariant("Syndrome", "position %d out of range [0,%d)", p, symbolic.BlockBits)
	}
	return e.syndromes[p]
}

// Generate returns all 15 + 15·14·208 = 43,695 configurations, ordered
// deterministically by (Unknown, Known.Block, Known.Position) with
// unknown-only configurations first for each Unknown block.
func Generate() []Config {
	configs := make([]Config, 0, NumBlocks+NumBlocks*(NumBlocks-1)*symbolic.BlockBits)
	for b1 := 0; b1 < NumBlocks; b1++ {
		configs = append(configs, Config{Unknown: b1})
		for b2 := 0; b2 < NumBlocks; b2++ {
			if b2 == b1 {
				continue
			}
			for p := 0; p < symbolic.BlockBits; p++ {
				configs = append(configs, Config{Unknown: b1, Known: &Known{Block: b2, Position: p}})
			}
		}
	}
	slices.SortStableFunc(configs, func(a, b Config) bool {
		if a.Unknown != b.Unknown {
			return a.Unknown < b.Unknown
		}
		ab, ap := knownKey(a)
		bb, bp := knownKey(b)
		if ab != bb {
			return ab < bb
		}
		return ap < bp
	})
	return configs
}

// knownKey orders unknown-only configs (Known == nil) before any
// known-position config for the same Unknown block.
func knownKey(c Config) (block, position int) {
	if c.Known == nil {
		return -1, -1
	}
	return c.Known.Block, c.Known.Position
}
