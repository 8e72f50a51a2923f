//go:build ignore

// Command genartifacts produces small testdata/ fixtures (H.bin,
// Gt.bin, zS.bin, ciphertext.bin, s.bin, and a truncated clock-pattern
// table) for development without a real recorded session. The
// internal/artifact clock-table loaders accept only the full
// 2^16-row table, so a truncated r4_clock_patterns.bin is rejected by
// them.
// Grounded in the original source's tools/gen_H_bin.c (derive H as the
// null space of G via echelonization), tools/gen_zS_bin.c (pack
// per-register difference bits into a row-major bitstream), and
// tools/gen_r4_patterns.c (clock-pattern generation, here truncated to
// -r4-count rows instead of the full 2^16).
//
// Run with:
//
//	go run tools/genartifacts/main.go -out testdata -r4-count 64
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/lfsr"
	"github.com/sieve4/r4sieve/internal/oracle"
)

func main() {
	outDir := flag.String("out", "testdata", "output directory for generated fixtures")
	r4Count := flag.Int("r4-count", 256, "number of leading r4 patterns to emit (the real table has 65536; this tool truncates for small local fixtures)")
	seed := flag.Int64("seed", 1, "PRNG seed for the random code and zS diffs")
	flag.Parse()

	if err := mainE(*outDir, *r4Count, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "genartifacts:", err)
		os.Exit(1)
	}
}

func mainE(outDir string, r4Count int, seed int64) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", outDir, err)
	}
	rng := rand.New(rand.NewSource(seed))

	gt, h := genCode(rng)
	if err := writePacked(filepath.Join(outDir, "Gt.bin"), gt); err != nil {
		return err
	}
	if err := writePacked(filepath.Join(outDir, "H.bin"), h); err != nil {
		return err
	}
	if err := genZS(filepath.Join(outDir, "zS.bin"), rng); err != nil {
		return err
	}
	if err := genClockPatterns(filepath.Join(outDir, "r4_clock_patterns.bin"), r4Count); err != nil {
		return err
	}
	if err := genCiphertextAndS(outDir, gt, rng); err != nil {
		return err
	}
	fmt.Printf("wrote fixtures to %s (%d clock-pattern rows)\n", outDir, r4Count)
	return nil
}

// genCode builds a random systematic [160,208] code's G^T, then
// derives H as the null space of G by echelonizing G and reading the
// free-column relations out of the reduced row echelon form — the same
// algorithm as gen_H_bin.c's transpose-then-echelonize-then-back-
// substitute, expressed over internal/gf2 instead of m4ri.
func genCode(rng *rand.Rand) (gt, h *gf2.Matrix) {
	const k, n = oracle.PlaintextBlockSize, oracle.CiphertextSize
	g := gf2.New(k, n)
	p := gf2.Random(k, n-k, rng)
	for i := 0; i < k; i++ {
		g.Set(i, i, 1)
		for j := 0; j < n-k; j++ {
			g.Set(i, k+j, p.Get(i, j))
		}
	}
	return g.Transpose(), nullSpace(g)
}

// nullSpace returns a parity-check matrix H (rank-deficiency × n) with
// g·H^T = 0, built by echelonizing g to RREF and reading one null-space
// row per free (non-pivot) column: row[fc] = 1, row[pivotCols[r]] =
// rref[r][fc] for every pivot row r, which is exactly the relation the
// RREF encodes for that free variable.
func nullSpace(g *gf2.Matrix) *gf2.Matrix {
	rref, rank, pivotCols := g.Echelonize()
	isPivot := make([]bool, g.Cols())
	for _, c := range pivotCols {
		isPivot[c] = true
	}

	h := gf2.New(g.Cols()-rank, g.Cols())
	row := 0
	for fc := 0; fc < g.Cols(); fc++ {
		if isPivot[fc] {
			continue
		}
		h.Set(row, fc, 1)
		for r := 0; r < rank; r++ {
			h.Set(row, pivotCols[r], rref.Get(r, fc))
		}
		row++
	}
	return h
}

func writePacked(path string, m *gf2.Matrix) error {
	nbytes := (m.Rows()*m.Cols() + 7) / 8
	buf := make([]byte, nbytes)
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			if m.Get(i, j) != 0 {
				idx := i*m.Cols() + j
				buf[idx>>3] |= 1 << uint(7-(idx&7))
			}
		}
	}
	return os.WriteFile(path, buf, 0o644)
}

// genZS writes 14 rows of 77 random difference bits (18 for R1, 21 for
// R2, 22 for R3, 16 for R4; the LSB of each register is not stored),
// packed MSB-first with no padding between rows, which is the layout
// internal/artifact.LoadZS's bitReader expects.
func genZS(path string, rng *rand.Rand) error {
	const rows, r1, r2, r3, r4 = 14, 18, 21, 22, 16
	bits := make([]byte, 0, rows*(r1+r2+r3+r4))
	for i := 0; i < rows; i++ {
		bits = appendDiffBits(bits, r1, rng)
		bits = appendDiffBits(bits, r2, rng)
		bits = appendDiffBits(bits, r3, rng)
		bits = appendDiffBits(bits, r4, rng)
	}
	buf := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b != 0 {
			buf[i/8] |= 1 << uint(7-i%8)
		}
	}
	return os.WriteFile(path, buf, 0o644)
}

func appendDiffBits(buf []byte, n int, rng *rand.Rand) []byte {
	for i := 0; i < n; i++ {
		buf = append(buf, byte(rng.Intn(2)))
	}
	return buf
}

// genClockPatterns writes the first n rows of the real clock-pattern
// generator (internal/lfsr.GeneratePattern), truncating
// tools/gen_r4_patterns.c's full 2^16-row table to a size usable as a
// local fixture.
func genClockPatterns(path string, n int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for r4 := 0; r4 < n; r4++ {
		if _, err := f.Write(lfsr.GeneratePattern(uint16(r4))); err != nil {
			return err
		}
	}
	return nil
}

// genCiphertextAndS manufactures a 15-block ciphertext.bin and s.bin
// pair whose blocks are all encrypted with r4=0's pattern, the first
// row of any clock-pattern table this tool writes.
func genCiphertextAndS(outDir string, gt *gf2.Matrix, rng *rand.Rand) error {
	companions := lfsr.BuildCompanions()
	pattern := lfsr.GeneratePattern(0)

	r1 := gf2.Random(1, lfsr.LenR1, rng)
	r1.Set(0, 0, 1)
	r2 := gf2.Random(1, lfsr.LenR2, rng)
	r2.Set(0, 0, 1)
	r3 := gf2.Random(1, lfsr.LenR3, rng)
	r3.Set(0, 0, 1)

	s := gf2.Random(1, oracle.CiphertextSize, rng)
	ctBuf := make([]byte, 0, oracle.NumBlocks*(oracle.CiphertextSize+7)/8)
	for i := 0; i < oracle.NumBlocks; i++ {
		z := oracle.Keystream(r1, r2, r3, pattern, companions)
		p := gf2.Random(1, oracle.PlaintextBlockSize, rng)
		e := oracle.Encode(p, gt)
		c := e.Copy()
		gf2.AddInplace(c, z)
		gf2.AddInplace(c, s)
		ctBuf = appendPackedRow(ctBuf, c)
	}
	if err := os.WriteFile(filepath.Join(outDir, "ciphertext.bin"), ctBuf, 0o644); err != nil {
		return err
	}
	return writePacked(filepath.Join(outDir, "s.bin"), s)
}

func appendPackedRow(buf []byte, row *gf2.Matrix) []byte {
	nbytes := (row.Cols() + 7) / 8
	start := len(buf)
	buf = append(buf, make([]byte, nbytes)...)
	for j := 0; j < row.Cols(); j++ {
		if row.Get(0, j) != 0 {
			buf[start+j/8] |= 1 << uint(7-(j&7))
		}
	}
	return buf
}
