package artifact

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/lfsr"
)

// MappedTable is a clock-pattern table backed by an mmap'd file rather
// than a heap-allocated copy. The ~30 MiB r4_clock_patterns.bin is read
// once per process and never written to, so mapping it read-only lets
// the OS share the pages across runs and avoids doubling resident
// memory during Table construction.
type MappedTable struct {
	*lfsr.Table
	data []byte
}

// Close unmaps the backing file. The embedded *lfsr.Table must not be
// used after Close.
func (m *MappedTable) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// LoadClockTableMmap mmaps r4_clock_patterns.bin read-only and wraps it
// as an lfsr.Table without copying the file into the Go heap.
func LoadClockTableMmap(path string) (*MappedTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, coreerr.IO("LoadClockTableMmap", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, coreerr.IO("LoadClockTableMmap", err)
	}
	want := int64(lfsr.TableSize * lfsr.PatternLen)
	if info.Size() != want {
		return nil, coreerr.Invalid("LoadClockTableMmap", "r4_clock_patterns.bin must be %d bytes, got %d", want, info.Size())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, coreerr.IO("LoadClockTableMmap", err)
	}
	return &MappedTable{Table: lfsr.FromBytes(data), data: data}, nil
}

// LoadClockTable reads r4_clock_patterns.bin into a heap buffer. Use
// this instead of LoadClockTableMmap on platforms or filesystems where
// mmap isn't available (e.g. the file was staged onto a network mount
// that doesn't support shared mappings).
func LoadClockTable(path string) (*lfsr.Table, error) {
	data, err := readFile("LoadClockTable", path)
	if err != nil {
		return nil, err
	}
	if want := lfsr.TableSize * lfsr.PatternLen; len(data) != want {
		return nil, coreerr.Invalid("LoadClockTable", "r4_clock_patterns.bin must be %d bytes, got %d", want, len(data))
	}
	return lfsr.FromBytes(data), nil
}
