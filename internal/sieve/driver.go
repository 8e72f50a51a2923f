package sieve

import (
	"runtime"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"golang.org/x/exp/slices"

	"github.com/sieve4/r4sieve/internal/lfsr"
)

// RunStats summarizes one sieve run: outcome counts and p50/p95
// per-r4 timing, reported the way spec §4.D's "must be
// progress-reported" precomputations are, via
// github.com/montanaflynn/stats.
type RunStats struct {
	Total      int
	Rejected   int
	Discarded  int
	Candidates int
	P50        time.Duration
	P95        time.Duration
	Elapsed    time.Duration
}

// RunResult is a completed sieve run: every r4's verdict, ordered by
// r4 ascending (spec §5: "the output stream must be merged in
// r4-increasing order"), plus summary stats.
type RunResult struct {
	Verdicts []Verdict
	Stats    RunStats
}

type timedVerdict struct {
	verdict Verdict
	elapsed time.Duration
}

// rangeSpec is one worker's disjoint slice of [0, 2^16).
type rangeSpec struct{ lo, hi int }

func partition(total, workers int) []rangeSpec {
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}
	chunk := (total + workers - 1) / workers
	ranges := make([]rangeSpec, 0, workers)
	for lo := 0; lo < total; lo += chunk {
		hi := lo + chunk
		if hi > total {
			hi = total
		}
		ranges = append(ranges, rangeSpec{lo: lo, hi: hi})
	}
	return ranges
}

// RunRange sieves r4 values in [lo, hi) across workers goroutines
// (workers<=0 defaults to runtime.NumCPU()). Spec §5: "the outer sieve
// loop may be partitioned into disjoint ranges ... and run in parallel
// worker threads, each owning its own per-block system builders,
// solver contexts, and transient matrices" — each worker here calls
// Evaluate independently, which allocates its own systems/solver state
// per r4, touching ctx's shared fields read-only.
func RunRange(ctx *CoreContext, lo, hi, workers int) RunResult {
	start := time.Now()
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ranges := partition(hi-lo, workers)

	var wg sync.WaitGroup
	batches := make(chan []timedVerdict, len(ranges))
	for _, rg := range ranges {
		wg.Add(1)
		go func(rg rangeSpec) {
			defer wg.Done()
			local := make([]timedVerdict, 0, rg.hi-rg.lo)
			for r4 := lo + rg.lo; r4 < lo+rg.hi; r4++ {
				t0 := time.Now()
				v := Evaluate(ctx, uint16(r4))
				local = append(local, timedVerdict{verdict: v, elapsed: time.Since(t0)})
			}
			batches <- local
		}(rg)
	}
	go func() {
		wg.Wait()
		close(batches)
	}()

	all := make([]timedVerdict, 0, hi-lo)
	done := 0
	for batch := range batches {
		all = append(all, batch...)
		done += len(batch)
		ctx.Log.Progress("r4-sieve", done, hi-lo)
	}

	slices.SortFunc(all, func(a, b timedVerdict) bool { return a.verdict.R4 < b.verdict.R4 })

	verdicts := make([]Verdict, len(all))
	durations := make([]float64, len(all))
	var rejected, discarded, candidates int
	for i, tv := range all {
		verdicts[i] = tv.verdict
		durations[i] = float64(tv.elapsed.Microseconds())
		switch tv.verdict.Status {
		case StatusRejected:
			rejected++
		case StatusDiscarded:
			discarded++
		case StatusCandidate:
			candidates++
		}
	}

	p50, _ := stats.Percentile(durations, 50)
	p95, _ := stats.Percentile(durations, 95)

	return RunResult{
		Verdicts: verdicts,
		Stats: RunStats{
			Total:      len(verdicts),
			Rejected:   rejected,
			Discarded:  discarded,
			Candidates: candidates,
			P50:        time.Duration(p50) * time.Microsecond,
			P95:        time.Duration(p95) * time.Microsecond,
			Elapsed:    time.Since(start),
		},
	}
}

// Run sieves the full [0, 2^16) range of r4 values.
func Run(ctx *CoreContext, workers int) RunResult {
	return RunRange(ctx, 0, lfsr.TableSize, workers)
}
