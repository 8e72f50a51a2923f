package artifact

import (
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/lfsr"
	"github.com/sieve4/r4sieve/internal/vdiff"
)

// Paths names the on-disk location of every spec §6 input artifact.
type Paths struct {
	H             string
	Gt            string
	ZS            string
	ClockPatterns string
	Ciphertext    string
	S             string
}

// Bundle is every loaded artifact plus the blake3 digest of each
// artifact file, keyed by artifact name. Nothing in this module reads
// Digests; the CtHt cache is held in memory only.
type Bundle struct {
	H          *gf2.Matrix
	Gt         *gf2.Matrix
	ZS         []vdiff.Diff
	Ciphertext [vdiff.NumBlocks]*gf2.Matrix
	S          *gf2.Matrix
	Table      *lfsr.Table

	Digests map[string]string
}

// Load reads every artifact named by p, in the teacher's "load
// everything up front, fail fast" style, and computes their digests.
// useMmap selects LoadClockTableMmap over LoadClockTable for the large
// clock pattern table. Load does not return the MappedTable, so a
// mapping made here is never unmapped by Close; use LoadClockTableMmap
// directly when the unmap lifecycle matters.
func Load(p Paths, useMmap bool) (*Bundle, error) {
	h, err := LoadH(p.H)
	if err != nil {
		return nil, err
	}
	gt, err := LoadGt(p.Gt)
	if err != nil {
		return nil, err
	}
	zs, err := LoadZS(p.ZS)
	if err != nil {
		return nil, err
	}
	ct, err := LoadCiphertext(p.Ciphertext)
	if err != nil {
		return nil, err
	}
	s, err := LoadS(p.S)
	if err != nil {
		return nil, err
	}

	var table *lfsr.Table
	if useMmap {
		mt, err := LoadClockTableMmap(p.ClockPatterns)
		if err != nil {
			return nil, err
		}
		table = mt.Table
	} else {
		table, err = LoadClockTable(p.ClockPatterns)
		if err != nil {
			return nil, err
		}
	}

	digests := make(map[string]string, 6)
	for name, path := range map[string]string{
		"H": p.H, "Gt": p.Gt, "zS": p.ZS,
		"clock_patterns": p.ClockPatterns, "ciphertext": p.Ciphertext, "s": p.S,
	} {
		d, err := HashFile(path)
		if err != nil {
			return nil, err
		}
		digests[name] = d
	}

	return &Bundle{H: h, Gt: gt, ZS: zs, Ciphertext: ct, S: s, Table: table, Digests: digests}, nil
}
