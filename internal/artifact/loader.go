// Package artifact loads the fixed-format binary inputs named in spec
// §6 (H.bin, Gt.bin, zS.bin, r4_clock_patterns.bin, ciphertext.bin,
// s.bin): all are MSB-first bit-packed, row-major. This package owns
// the MSB-first wire format conversion that internal/gf2 deliberately
// stays agnostic of.
package artifact

import (
	"os"

	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/symbolic"
	"github.com/sieve4/r4sieve/internal/vdiff"
)

// HRows, HCols, GtRows, GtCols are the outer (208,160) code's shapes
// (spec §6).
const (
	HRows, HCols   = 48, symbolic.BlockBits
	GtRows, GtCols = symbolic.BlockBits, 160
)

func readFile(op, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, coreerr.IO(op, err)
	}
	return data, nil
}

// unpackMatrix decodes a row-major, MSB-first-within-byte, byte-aligned
// per-row bit matrix (H.bin/Gt.bin/ciphertext.bin/s.bin's layout).
func unpackMatrix(op string, data []byte, rows, cols int) *gf2.Matrix {
	rowBytes := (cols + 7) / 8
	if len(data) != rows*rowBytes {
		coreerr.Invariant(op, "expected %d bytes for %dx%d matrix, got %d", rows*rowBytes, rows, cols, len(data))
	}
	m := gf2.New(rows, cols)
	for i := 0; i < rows; i++ {
		row := data[i*rowBytes : (i+1)*rowBytes]
		for j := 0; j < cols; j++ {
			byteIdx := j / 8
			bitIdx := uint(7 - j%8)
			if (row[byteIdx]>>bitIdx)&1 != 0 {
				m.Set(i, j, 1)
			}
		}
	}
	return m
}

// LoadH reads the (48×208) parity-check matrix from H.bin.
func LoadH(path string) (*gf2.Matrix, error) {
	data, err := readFile("LoadH", path)
	if err != nil {
		return nil, err
	}
	want := HRows * ((HCols + 7) / 8)
	if len(data) != want {
		return nil, coreerr.Invalid("LoadH", "H.bin must be %d bytes, got %d", want, len(data))
	}
	return unpackMatrix("LoadH", data, HRows, HCols), nil
}

// LoadGt reads the (208×160) G^T matrix from Gt.bin.
func LoadGt(path string) (*gf2.Matrix, error) {
	data, err := readFile("LoadGt", path)
	if err != nil {
		return nil, err
	}
	want := GtRows * ((GtCols + 7) / 8)
	if len(data) != want {
		return nil, coreerr.Invalid("LoadGt", "Gt.bin must be %d bytes, got %d", want, len(data))
	}
	return unpackMatrix("LoadGt", data, GtRows, GtCols), nil
}

// LoadCiphertext reads the 15 descrambled-ciphertext-sized blocks
// (15×26 bytes = 390 bytes) from ciphertext.bin, each as a 1×208
// matrix.
func LoadCiphertext(path string) ([vdiff.NumBlocks]*gf2.Matrix, error) {
	var out [vdiff.NumBlocks]*gf2.Matrix
	data, err := readFile("LoadCiphertext", path)
	if err != nil {
		return out, err
	}
	blockBytes := (symbolic.BlockBits + 7) / 8
	want := vdiff.NumBlocks * blockBytes
	if len(data) != want {
		return out, coreerr.Invalid("LoadCiphertext", "ciphertext.bin must be %d bytes, got %d", want, len(data))
	}
	for i := 0; i < vdiff.NumBlocks; i++ {
		block := data[i*blockBytes : (i+1)*blockBytes]
		out[i] = unpackMatrix("LoadCiphertext", block, 1, symbolic.BlockBits)
	}
	return out, nil
}

// LoadS reads the 26-byte descrambling constant from s.bin as a 1×208
// matrix.
func LoadS(path string) (*gf2.Matrix, error) {
	data, err := readFile("LoadS", path)
	if err != nil {
		return nil, err
	}
	want := (symbolic.BlockBits + 7) / 8
	if len(data) != want {
		return nil, coreerr.Invalid("LoadS", "s.bin must be %d bytes, got %d", want, len(data))
	}
	return unpackMatrix("LoadS", data, 1, symbolic.BlockBits), nil
}

// Descramble removes the affine scrambling constant s from a loaded
// ciphertext block (spec §4.F: "already with the scrambling constant s
// removed").
func Descramble(c, s *gf2.Matrix) *gf2.Matrix {
	out := c.Copy()
	gf2.AddInplace(out, s)
	return out
}

// zsRowBits is the raw bit count of one zS row: 18 (R1) + 21 (R2) + 22
// (R3) + 16 (R4, unused by v-diff construction but present in the
// wire format) = 77, per spec §6.
const zsRowBits = 18 + 21 + 22 + 16

// bitReader reads MSB-first bits from a continuous byte buffer with no
// per-row byte alignment, as zS.bin's format requires (spec §6: "no
// padding between rows").
type bitReader struct {
	data []byte
	pos  int
}

func (r *bitReader) readBit() uint8 {
	byteIdx := r.pos / 8
	bitIdx := uint(7 - r.pos%8)
	bit := (r.data[byteIdx] >> bitIdx) & 1
	r.pos++
	return bit
}

// LoadZS reads the 14 zS rows from zS.bin as vdiff.Diff values. Each
// row's R4 difference bits are consumed to keep the bitstream aligned
// but are not retained: spec §4.E's v-diff propagator only consumes
// zS_R1/R2/R3.
func LoadZS(path string) ([]vdiff.Diff, error) {
	data, err := readFile("LoadZS", path)
	if err != nil {
		return nil, err
	}
	want := (vdiff.NumDiffRows*zsRowBits + 7) / 8
	if len(data) != want {
		return nil, coreerr.Invalid("LoadZS", "zS.bin must be %d bytes, got %d", want, len(data))
	}

	br := &bitReader{data: data}
	rows := make([]vdiff.Diff, vdiff.NumDiffRows)
	for i := range rows {
		r1 := make([]uint8, 19)
		for k := 1; k < 19; k++ {
			r1[k] = br.readBit()
		}
		r2 := make([]uint8, 22)
		for k := 1; k < 22; k++ {
			r2[k] = br.readBit()
		}
		r3 := make([]uint8, 23)
		for k := 1; k < 23; k++ {
			r3[k] = br.readBit()
		}
		for k := 0; k < 16; k++ {
			br.readBit() // R4 diff, not used by v-diff
		}
		rows[i] = vdiff.Diff{R1: r1, R2: r2, R3: r3}
	}
	return rows, nil
}
