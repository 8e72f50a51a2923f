// Package sieve implements the R4 sieve driver of spec §4.I: for each
// of the 2^16 candidate clock-control register states, it assembles
// the per-block coefficient systems of internal/block and tests them
// against every enumerated error configuration via internal/solver.
//
// All precomputed, shared-immutable state — companion matrices, the
// clock-pattern table, the v-diff matrices, the per-block cHt vectors
// and the CtHt cache — lives on an explicitly constructed CoreContext
// rather than as package-level globals (spec §9's redesign mandate).
package sieve

import (
	"github.com/sieve4/r4sieve/internal/artifact"
	"github.com/sieve4/r4sieve/internal/block"
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/corelog"
	"github.com/sieve4/r4sieve/internal/ctht"
	"github.com/sieve4/r4sieve/internal/errconfig"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/lfsr"
	"github.com/sieve4/r4sieve/internal/vdiff"
)

// CoreContext bundles every read-only, shared-across-workers value the
// sieve needs for one sieve run. It is built once by NewCoreContext
// and never mutated afterward; no field may be written to once a
// sieve run starts (spec §5: "no locking is required because no
// thread writes to [this state] after initialization").
type CoreContext struct {
	Companions *lfsr.Companions
	Table      *lfsr.Table
	H          *gf2.Matrix
	VDiffs     [vdiff.NumDiffRows]*gf2.Matrix
	CipherHt   [block.NumBlocks]*gf2.Matrix
	CtHt       *ctht.Cache
	Enumerator *errconfig.Enumerator
	Configs    []errconfig.Config
	Log        *corelog.Logger
}

// NewCoreContext builds a CoreContext from a loaded artifact bundle.
// The CtHt cache is left empty (entries are computed on demand via
// PrepareFor during the sieve run, per spec §4.D's lazy variant); call
// WarmCtHt first to precompute all 2^16 entries eagerly instead.
func NewCoreContext(bundle *artifact.Bundle, log *corelog.Logger) (*CoreContext, error) {
	if log == nil {
		log = corelog.Nop()
	}
	if len(bundle.ZS) != vdiff.NumDiffRows {
		return nil, coreerr.Invalid("NewCoreContext", "bundle has %d zS rows, want %d", len(bundle.ZS), vdiff.NumDiffRows)
	}

	companions := lfsr.BuildCompanions()
	vdiffs := vdiff.BuildAll(bundle.ZS)
	enumerator := errconfig.NewEnumerator(bundle.H)
	configs := errconfig.Generate()

	var cipherHt [block.NumBlocks]*gf2.Matrix
	for i := 0; i < block.NumBlocks; i++ {
		c := artifact.Descramble(bundle.Ciphertext[i], bundle.S)
		cipherHt[i] = block.CipherHt(c, bundle.H)
	}

	return &CoreContext{
		Companions: companions,
		Table:      bundle.Table,
		H:          bundle.H,
		VDiffs:     vdiffs,
		CipherHt:   cipherHt,
		CtHt:       ctht.NewCache(companions, bundle.Table, bundle.H),
		Enumerator: enumerator,
		Configs:    configs,
		Log:        log,
	}, nil
}

// WarmCtHt eagerly precomputes every CtHt[r4] entry (spec §4.D), in
// the "bulk precomputation before the parallel phase" strategy spec §5
// names as one of the two valid ways to avoid per-entry contention.
func (c *CoreContext) WarmCtHt() {
	c.CtHt = ctht.Build(c.Companions, c.Table, c.H, c.Log)
}

// Release drops the context's largest references (the clock table and
// CtHt cache) so the garbage collector can reclaim them once a sieve
// run is done, matching spec §9's "teardown is scoped with guaranteed
// release on all exit paths".
func (c *CoreContext) Release() {
	c.Table = nil
	c.CtHt = nil
}
