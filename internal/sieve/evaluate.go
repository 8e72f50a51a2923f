package sieve

import (
	"github.com/sieve4/r4sieve/internal/block"
	"github.com/sieve4/r4sieve/internal/errconfig"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/solver"
)

// Status is a per-r4 terminal verdict (spec §4.I's state machine:
// START → SYSTEM_READY → one of these three).
type Status int

const (
	// StatusRejected means no pair of blocks could explain the
	// ciphertext even with their syndromes left unconstrained — the
	// invalidation pass (step 3) found no solvable pair.
	StatusRejected Status = iota
	// StatusCandidate means the validation pass (step 4) found a
	// solvable error configuration.
	StatusCandidate
	// StatusDiscarded means the invalidation pass passed (some pair
	// was solvable) but no full error configuration in the validation
	// pass was solvable.
	StatusDiscarded
)

func (s Status) String() string {
	switch s {
	case StatusRejected:
		return "rejected"
	case StatusCandidate:
		return "candidate"
	case StatusDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Witness identifies the error configuration that made an r4 a
// candidate: the UNKNOWN_POSITION block and the index into Configs.
type Witness struct {
	Unknown     int
	ConfigIndex int
}

// Verdict is one r4's terminal sieve outcome.
type Verdict struct {
	R4      uint16
	Status  Status
	Witness *Witness
}

// exclusionSet is a fixed-size membership set over the 15 block
// indices, avoiding a map allocation on this hot per-r4 path.
type exclusionSet [block.NumBlocks]bool

func exclude(indices ...int) exclusionSet {
	var e exclusionSet
	for _, i := range indices {
		e[i] = true
	}
	return e
}

func gatherA(systems [block.NumBlocks]block.System, ex exclusionSet) *gf2.Matrix {
	parts := make([]*gf2.Matrix, 0, block.NumBlocks)
	for j := 0; j < block.NumBlocks; j++ {
		if !ex[j] {
			parts = append(parts, systems[j].A)
		}
	}
	return gf2.VStack(parts...)
}

// gatherBPlain stacks the bare b_j vectors (no error-syndrome
// correction), used by the invalidation pass.
func gatherBPlain(systems [block.NumBlocks]block.System, ex exclusionSet) *gf2.Matrix {
	parts := make([]*gf2.Matrix, 0, block.NumBlocks)
	for j := 0; j < block.NumBlocks; j++ {
		if !ex[j] {
			parts = append(parts, systems[j].B)
		}
	}
	return gf2.VStack(parts...)
}

// gatherBForConfig stacks b_j vectors, XORing in the known-position
// syndrome for any block cfg marks KNOWN_POSITION, used by the
// validation pass.
func gatherBForConfig(systems [block.NumBlocks]block.System, enumerator *errconfig.Enumerator, cfg errconfig.Config, ex exclusionSet) *gf2.Matrix {
	parts := make([]*gf2.Matrix, 0, block.NumBlocks)
	for j := 0; j < block.NumBlocks; j++ {
		if ex[j] {
			continue
		}
		status, pos := cfg.StatusOf(j)
		if status != errconfig.StatusKnownPosition {
			parts = append(parts, systems[j].B)
			continue
		}
		bj := systems[j].B.Copy()
		gf2.AddInplace(bj, enumerator.Syndrome(pos))
		parts = append(parts, bj)
	}
	return gf2.VStack(parts...)
}

// invalidationPass implements spec §4.I step 3: r4 survives (returns
// true) iff some unordered pair of blocks can be left out of the
// stacked system while the remaining 13 blocks' bare systems are
// still jointly solvable.
func invalidationPass(systems [block.NumBlocks]block.System) bool {
	for u1 := 0; u1 < block.NumBlocks; u1++ {
		for u2 := u1 + 1; u2 < block.NumBlocks; u2++ {
			ex := exclude(u1, u2)
			a := gatherA(systems, ex)
			b := gatherBPlain(systems, ex)
			ctx := solver.Prepare(a)
			ok := ctx.Solvable(b)
			ctx.Release()
			if ok {
				return true
			}
		}
	}
	return false
}

// validationPass implements spec §4.I step 4: for each candidate
// unknown block u, prepare one solver for the 14-block stack excluding
// u and sweep every config in that u's contiguous segment of configs
// (errconfig.Generate orders configs by Unknown, so the segment is
// contiguous and a single Prepare serves all of it).
func validationPass(systems [block.NumBlocks]block.System, enumerator *errconfig.Enumerator, configs []errconfig.Config) *Witness {
	i := 0
	for i < len(configs) {
		u := configs[i].Unknown
		ex := exclude(u)
		a := gatherA(systems, ex)
		ctx := solver.Prepare(a)

		for i < len(configs) && configs[i].Unknown == u {
			b := gatherBForConfig(systems, enumerator, configs[i], ex)
			if ctx.Solvable(b) {
				ctx.Release()
				return &Witness{Unknown: u, ConfigIndex: i}
			}
			i++
		}
		ctx.Release()
	}
	return nil
}

// Evaluate runs the four steps of spec §4.I for a single r4: ensure
// CtHt[r4] is materialized, assemble the 15 per-block systems, run the
// invalidation pass, and on survival run the validation pass.
func Evaluate(ctx *CoreContext, r4 uint16) Verdict {
	ctHt := ctx.CtHt.PrepareFor(r4)
	systems := block.Assemble(ctHt, ctx.VDiffs, ctx.CipherHt)

	if !invalidationPass(systems) {
		return Verdict{R4: r4, Status: StatusRejected}
	}

	if w := validationPass(systems, ctx.Enumerator, ctx.Configs); w != nil {
		return Verdict{R4: r4, Status: StatusCandidate, Witness: w}
	}
	return Verdict{R4: r4, Status: StatusDiscarded}
}

// ConfigResult is one row of the full per-config solvability sweep
// produced by EvaluateAll, matching spec §6's CLI output: one record
// per (config-index, unknown-block, solvable).
type ConfigResult struct {
	ConfigIndex int
	Unknown     int
	Solvable    bool
}

// EvaluateAll runs the full validation sweep for a single r4 without
// short-circuiting at the first solvable config, reporting the
// solvability of every enumerated error configuration (spec §6's
// minimal CLI harness output). It does not run the invalidation pass
// first, so an r4 that would be REJECTED still reports a result for
// every config (all false, barring coincidental solvability of a
// strict subset of the invalidation pass's exclusion pairs).
func EvaluateAll(ctx *CoreContext, r4 uint16) []ConfigResult {
	ctHt := ctx.CtHt.PrepareFor(r4)
	systems := block.Assemble(ctHt, ctx.VDiffs, ctx.CipherHt)

	results := make([]ConfigResult, len(ctx.Configs))
	i := 0
	for i < len(ctx.Configs) {
		u := ctx.Configs[i].Unknown
		ex := exclude(u)
		a := gatherA(systems, ex)
		solverCtx := solver.Prepare(a)

		for i < len(ctx.Configs) && ctx.Configs[i].Unknown == u {
			b := gatherBForConfig(systems, ctx.Enumerator, ctx.Configs[i], ex)
			results[i] = ConfigResult{ConfigIndex: i, Unknown: u, Solvable: solverCtx.Solvable(b)}
			i++
		}
		solverCtx.Release()
	}
	return results
}
