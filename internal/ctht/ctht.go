// Package ctht builds and caches CtHt[r4] = C(r4)^T · H^T (spec §4.D):
// a 656×48 matrix per R4 value, derived from the symbolic system C(r4)
// and the code's parity-check matrix H.
package ctht

import (
	"sync"

	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/corelog"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/lfsr"
	"github.com/sieve4/r4sieve/internal/symbolic"
)

// Cache holds CtHt[r4] for r4 in [0, lfsr.TableSize). Entries may be
// computed eagerly (Build) or lazily and memoized (PrepareFor); either
// way, once computed an entry is shared-immutable (spec §5) and safe
// to read concurrently without locking.
type Cache struct {
	companions *lfsr.Companions
	table      *lfsr.Table
	ht         *gf2.Matrix // H^T, 208×48

	once    []sync.Once
	entries []*gf2.Matrix
}

// NewCache constructs an empty cache bound to the given companions,
// clock-pattern table and parity-check matrix H (48×208). Panics
// (InternalInvariant) if h is not 48×208.
func NewCache(companions *lfsr.Companions, table *lfsr.Table, h *gf2.Matrix) *Cache {
	if h.Rows() != 48 || h.Cols() != symbolic.BlockBits {
		coreerr.Invariant("NewCache", "H must be 48x%d, got %dx%d", symbolic.BlockBits, h.Rows(), h.Cols())
	}
	return &Cache{
		companions: companions,
		table:      table,
		ht:         h.Transpose(),
		once:       make([]sync.Once, lfsr.TableSize),
		entries:    make([]*gf2.Matrix, lfsr.TableSize),
	}
}

// computeEntry builds CtHt for a single r4 (upper 16 bits).
func (c *Cache) computeEntry(r4 uint16) *gf2.Matrix {
	pattern := c.table.Row(r4)
	system := symbolic.BuildSystem(pattern, c.companions)
	ct := system.Transpose()
	return gf2.Mul(ct, c.ht)
}

// Build materializes all 2^16 entries eagerly, progress-reporting to
// log (spec §4.D: "a one-time ~30-minute precomputation and must be
// progress-reported").
func Build(companions *lfsr.Companions, table *lfsr.Table, h *gf2.Matrix, log *corelog.Logger) *Cache {
	if log == nil {
		log = corelog.Nop()
	}
	c := NewCache(companions, table, h)
	const reportEvery = 1 << 10
	for r4 := 0; r4 < lfsr.TableSize; r4++ {
		c.entries[r4] = c.computeEntry(uint16(r4))
		c.once[r4].Do(func() {}) // mark computed so PrepareFor never recomputes
		if r4%reportEvery == 0 {
			log.Progress("ctht-cache", r4, lfsr.TableSize)
		}
	}
	log.Progress("ctht-cache", lfsr.TableSize, lfsr.TableSize)
	return c
}

// PrepareFor lazily computes (if needed) and returns CtHt[r4], for
// memory-bounded callers that don't want to hold all 2^16 entries in
// RAM at once (spec §4.D). Safe for concurrent use by multiple
// workers: a race on the same uninitialized entry resolves to a single
// computation via sync.Once (spec §5).
func (c *Cache) PrepareFor(r4 uint16) *gf2.Matrix {
	c.once[r4].Do(func() {
		c.entries[r4] = c.computeEntry(r4)
	})
	return c.entries[r4]
}

// Get returns the cached entry for r4, or nil if it has not been
// computed by either Build or PrepareFor.
func (c *Cache) Get(r4 uint16) *gf2.Matrix {
	return c.entries[r4]
}
