package lfsr

import (
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/corelog"
)

// PatternLen is the number of clock-mask bytes per R4 value (spec §6).
const PatternLen = 458

// TableSize is the r4-dimension of the clock pattern table (spec §3).
const TableSize = 1 << 16

// Table is the 2^16 × 458-byte clock-control pattern table, indexed by
// the upper 16 bits of R4 (the LSB is always 1, spec §9 Open Question).
type Table struct {
	data []byte // flattened TableSize*PatternLen
}

// Row returns the 458-byte clock-mask sequence for the given upper-16
// bits of R4. The returned slice aliases the table's backing storage
// and must not be mutated.
func (t *Table) Row(r4Upper16 uint16) []byte {
	off := int(r4Upper16) * PatternLen
	return t.data[off : off+PatternLen]
}

func maj(a, b, c uint8) uint8 {
	if a+b+c >= 2 {
		return 1
	}
	return 0
}

// clockBitsCompanion advances a scalar n-bit register state by one step
// under the feedback polynomial fp, per the same transposed-companion
// algebra as CompanionMatrix (row 0 = feedback taps + top bit, ones on
// the subdiagonal): new_state[k] = state[0]*row0[k] ^ state[k+1] for
// k<n-1, and new_state[n-1] = state[0].
func clockBitsCompanion(state uint32, fp uint32, n int) uint32 {
	var next uint32
	b0 := state & 1
	for k := 0; k < n-1; k++ {
		tap := (fp >> uint(k+1)) & 1
		bit := (b0 & tap) ^ ((state >> uint(k+1)) & 1)
		next |= bit << uint(k)
	}
	next |= b0 << uint(n-1)
	return next
}

// GeneratePattern computes the 458-byte clock-mask sequence for a
// single R4 value, identified by its upper 16 bits (spec §4.B).
func GeneratePattern(r4Upper16 uint16) []byte {
	state := uint32(r4Upper16)<<1 | 1
	out := make([]byte, PatternLen)
	for step := 0; step < PatternLen; step++ {
		b1 := uint8((state >> 1) & 1)
		b6 := uint8((state >> 6) & 1)
		b15 := uint8((state >> 15) & 1)
		m := maj(b1, b6, b15)

		var mask byte
		if b15 == m {
			mask |= 0b100 // R1 clocks
		}
		if b6 == m {
			mask |= 0b010 // R2 clocks
		}
		if b1 == m {
			mask |= 0b001 // R3 clocks
		}
		out[step] = mask

		state = clockBitsCompanion(state, FeedbackR4, LenR4)
	}
	return out
}

// BuildTable materializes the full 2^16×458 clock pattern table,
// progress-reporting to log as it goes (this is the ~30 MiB one-time
// precomputation named in spec §3).
func BuildTable(log *corelog.Logger) *Table {
	if log == nil {
		log = corelog.Nop()
	}
	t := &Table{data: make([]byte, TableSize*PatternLen)}
	const reportEvery = 1 << 12
	for r4 := 0; r4 < TableSize; r4++ {
		row := GeneratePattern(uint16(r4))
		copy(t.data[r4*PatternLen:(r4+1)*PatternLen], row)
		if r4%reportEvery == 0 {
			log.Progress("clock-pattern-table", r4, TableSize)
		}
	}
	log.Progress("clock-pattern-table", TableSize, TableSize)
	return t
}

// FromBytes wraps an already-loaded flat byte buffer (e.g. read from
// r4_clock_patterns.bin by internal/artifact) as a Table.
func FromBytes(data []byte) *Table {
	if len(data) != TableSize*PatternLen {
		coreerr.Invariant("FromBytes", "clock pattern table must be %d bytes, got %d", TableSize*PatternLen, len(data))
	}
	return &Table{data: data}
}
