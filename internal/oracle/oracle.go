// Package oracle is a reference encrypt-side implementation of the
// clock-controlled stream cipher, used only to manufacture ciphertext
// fixtures for tests elsewhere in this module. It is deliberately
// independent of internal/symbolic's algebraic machinery: where that
// package evaluates keystream bits symbolically over the initial
// state, this package clocks concrete numeric register state one step
// at a time, the way a reference encoder would.
package oracle

import (
	"github.com/sieve4/r4sieve/internal/coreerr"
	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/lfsr"
)

// Sizes per spec §6.
const (
	KeySize            = 64
	NonceSize          = 19
	PlaintextBlockSize = 160
	CiphertextSize     = 208
	NumBlocks          = 15
)

// KeySchedule derives the 64-bit subkey a from a 64-bit key and a
// 19-bit nonce (original_source/source/encrypt.c's key_scheduling):
// a starts as a copy of the key, then XORs in nonce bits at three
// fixed offset ranges.
func KeySchedule(key, nonce []uint8) []uint8 {
	if len(key) != KeySize {
		coreerr.Invariant("KeySchedule", "key must be %d bits, got %d", KeySize, len(key))
	}
	if len(nonce) != NonceSize {
		coreerr.Invariant("KeySchedule", "nonce must be %d bits, got %d", NonceSize, len(nonce))
	}
	a := append([]uint8(nil), key...)
	for i := 3; i <= 15; i++ {
		a[i] ^= nonce[i+3]
	}
	for i := 22; i <= 23; i++ {
		a[i] ^= nonce[i-18]
	}
	for i := 60; i <= 63; i++ {
		a[i] ^= nonce[i-60]
	}
	return a
}

// BitReversal reverses each of the four 16-bit blocks of a within
// itself (encrypt.c's bit_reversal).
func BitReversal(a []uint8) []uint8 {
	if len(a) != KeySize {
		coreerr.Invariant("BitReversal", "a must be %d bits, got %d", KeySize, len(a))
	}
	out := make([]uint8, KeySize)
	for blk := 0; blk < 4; blk++ {
		for j := 0; j < 16; j++ {
			out[blk*16+15-j] = a[blk*16+j]
		}
	}
	return out
}

// KeyInject clocks all four registers, starting from the all-zero
// state, 64 times unconditionally, XORing each register's bit 0 with
// the corresponding bit of aa whenever it is set, then forcing bit 0
// of each register to 1 (encrypt.c's key_injection + normalize_lsb).
// It returns the four resulting 1×n row-vector states.
func KeyInject(aa []uint8, c *lfsr.Companions) (r1, r2, r3, r4 *gf2.Matrix) {
	if len(aa) != KeySize {
		coreerr.Invariant("KeyInject", "aa must be %d bits, got %d", KeySize, len(aa))
	}
	r1 = gf2.New(1, lfsr.LenR1)
	r2 = gf2.New(1, lfsr.LenR2)
	r3 = gf2.New(1, lfsr.LenR3)
	r4 = gf2.New(1, lfsr.LenR4)

	for k := 0; k < KeySize; k++ {
		r1 = lfsr.ClockVector(r1, c.A1)
		r2 = lfsr.ClockVector(r2, c.A2)
		r3 = lfsr.ClockVector(r3, c.A3)
		r4 = lfsr.ClockVector(r4, c.A4)
		if aa[k] != 0 {
			r1.Set(0, 0, r1.Get(0, 0)^1)
			r2.Set(0, 0, r2.Get(0, 0)^1)
			r3.Set(0, 0, r3.Get(0, 0)^1)
			r4.Set(0, 0, r4.Get(0, 0)^1)
		}
	}
	r1.Set(0, 0, 1)
	r2.Set(0, 0, 1)
	r3.Set(0, 0, 1)
	r4.Set(0, 0, 1)
	return
}

func majority(a, b, c uint8) uint8 {
	if a+b+c >= 2 {
		return 1
	}
	return 0
}

// Keystream runs the discard-then-output loop of
// encrypt.c's keystream_generation_with_pattern: clock R1/R2/R3 per
// the pattern's mask bits for 250+208 steps, discard the first 250
// output bits, and emit a majority-combined output bit per remaining
// step. r1/r2/r3 are copied, not mutated.
func Keystream(r1, r2, r3 *gf2.Matrix, pattern []byte, c *lfsr.Companions) *gf2.Matrix {
	const discard = 250
	if len(pattern) != discard+CiphertextSize {
		coreerr.Invariant("Keystream", "pattern must have %d steps, got %d", discard+CiphertextSize, len(pattern))
	}
	r1, r2, r3 = r1.Copy(), r2.Copy(), r3.Copy()
	out := gf2.New(1, CiphertextSize)

	for step := 0; step < len(pattern); step++ {
		mask := pattern[step]
		if mask&0b100 != 0 {
			r1 = lfsr.ClockVector(r1, c.A1)
		}
		if mask&0b010 != 0 {
			r2 = lfsr.ClockVector(r2, c.A2)
		}
		if mask&0b001 != 0 {
			r3 = lfsr.ClockVector(r3, c.A3)
		}
		if step < discard {
			continue
		}
		maj1 := majority(r1.Get(0, 1), r1.Get(0, 6), r1.Get(0, 15))
		maj2 := majority(r2.Get(0, 3), r2.Get(0, 8), r2.Get(0, 14))
		maj3 := majority(r3.Get(0, 4), r3.Get(0, 15), r3.Get(0, 19))
		z := maj1 ^ maj2 ^ maj3 ^ r1.Get(0, 11) ^ r2.Get(0, 1) ^ r3.Get(0, 0)
		out.Set(0, step-discard, z)
	}
	return out
}

// R4Index extracts the clock-table index from a 17-bit R4 state: bits
// 1..16 (the upper 16 bits, LSB excluded), matching spec §9's
// resolved Open Question.
func R4Index(r4 *gf2.Matrix) uint16 {
	var idx uint16
	for k := 1; k < lfsr.LenR4; k++ {
		idx |= uint16(r4.Get(0, k)) << uint(k-1)
	}
	return idx
}

// Encode maps one 160-bit plaintext block p to its 208-bit linear
// codeword e = p·G, where G is the transpose of the loaded G^T matrix
// gt (encrypt.c's encode_plaintext: Gt_mat = transpose of the on-disk
// Gt array).
func Encode(p, gt *gf2.Matrix) *gf2.Matrix {
	if p.Rows() != 1 || p.Cols() != PlaintextBlockSize {
		coreerr.Invariant("Encode", "p must be 1x%d, got %dx%d", PlaintextBlockSize, p.Rows(), p.Cols())
	}
	if gt.Rows() != CiphertextSize || gt.Cols() != PlaintextBlockSize {
		coreerr.Invariant("Encode", "gt must be %dx%d, got %dx%d", CiphertextSize, PlaintextBlockSize, gt.Rows(), gt.Cols())
	}
	return gf2.Mul(p, gt.Transpose())
}

// Nonce builds the 19-bit little-endian nonce for block i of a
// message, given the base frame number fn (encrypt.c's encrypt_m4ri
// nonce construction: N[i][j] = ((fn+i)>>j)&1).
func Nonce(fn, i int) []uint8 {
	out := make([]uint8, NonceSize)
	v := fn + i
	for j := range out {
		out[j] = uint8((v >> uint(j)) & 1)
	}
	return out
}

// EncryptBlock produces the ciphertext and raw keystream for one
// block: key-schedule and bit-reverse the subkey from (key, nonce),
// inject it into a fresh LFSR state, generate the block's keystream,
// and XOR it with the codeword e and the scrambling constant s.
func EncryptBlock(key []uint8, nonce []uint8, p, gt, s *gf2.Matrix, c *lfsr.Companions, table *lfsr.Table) (ciphertext, keystream *gf2.Matrix) {
	a := KeySchedule(key, nonce)
	aa := BitReversal(a)
	r1, r2, r3, r4 := KeyInject(aa, c)
	pattern := table.Row(R4Index(r4))
	keystream = Keystream(r1, r2, r3, pattern, c)

	e := Encode(p, gt)
	ciphertext = e.Copy()
	gf2.AddInplace(ciphertext, keystream)
	gf2.AddInplace(ciphertext, s)
	return ciphertext, keystream
}

// InjectError flips bit position in block i of ciphertext blocks in
// place (encrypt.c's error-bit injection). Out-of-range i or position
// is a caller bug.
func InjectError(blocks []*gf2.Matrix, i, position int) {
	if i < 0 || i >= len(blocks) {
		coreerr.Invariant("InjectError", "block %d out of range [0,%d)", i, len(blocks))
	}
	b := blocks[i]
	b.Set(0, position, b.Get(0, position)^1)
}
