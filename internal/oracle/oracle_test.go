package oracle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sieve4/r4sieve/internal/gf2"
	"github.com/sieve4/r4sieve/internal/lfsr"
)

// systematicCode builds a random systematic [n,k] linear code G=[I|P],
// H=[P^T|I], which satisfies H·G^T=0 by construction — the same
// null-space property spec §8 asks be sanity-checked against the real
// H.bin/Gt.bin, demonstrated here on parameters matching production
// (k=160, n=208, so H is the spec's real 48×208 shape).
func systematicCode(k, n int, rng *rand.Rand) (g, h *gf2.Matrix) {
	r := n - k
	p := gf2.Random(k, r, rng)

	g = gf2.New(k, n)
	for i := 0; i < k; i++ {
		g.Set(i, i, 1)
		for j := 0; j < r; j++ {
			g.Set(i, k+j, p.Get(i, j))
		}
	}

	h = gf2.New(r, n)
	pt := p.Transpose()
	for i := 0; i < r; i++ {
		for j := 0; j < k; j++ {
			h.Set(i, j, pt.Get(i, j))
		}
		h.Set(i, k+i, 1)
	}
	return g, h
}

func TestSystematicCodeSatisfiesNullSpaceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(901))
	g, h := systematicCode(PlaintextBlockSize, CiphertextSize, rng)
	gt := g.Transpose()
	require.True(t, gf2.Mul(h, gt).IsZero())
}

func TestKeyScheduleAndBitReversalAreDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	key := make([]uint8, KeySize)
	for i := range key {
		key[i] = uint8(rng.Intn(2))
	}
	nonce := Nonce(9867, 3)
	a1 := KeySchedule(key, nonce)
	a2 := KeySchedule(key, nonce)
	require.Equal(t, a1, a2)

	aa := BitReversal(a1)
	require.Len(t, aa, KeySize)
	for blk := 0; blk < 4; blk++ {
		for j := 0; j < 16; j++ {
			require.Equal(t, a1[blk*16+j], aa[blk*16+15-j])
		}
	}
}

func TestKeyInjectForcesLSBOne(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	companions := lfsr.BuildCompanions()
	aa := make([]uint8, KeySize)
	for i := range aa {
		aa[i] = uint8(rng.Intn(2))
	}
	r1, r2, r3, r4 := KeyInject(aa, companions)
	require.Equal(t, uint8(1), r1.Get(0, 0))
	require.Equal(t, uint8(1), r2.Get(0, 0))
	require.Equal(t, uint8(1), r3.Get(0, 0))
	require.Equal(t, uint8(1), r4.Get(0, 0))
}

// TestEncryptBlockRoundTrip manufactures a single-block ciphertext and
// checks decoding it back via the same G/keystream recovers the
// original codeword (spec §8 scenario 1, no errors injected).
func TestEncryptBlockRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	companions := lfsr.BuildCompanions()
	table := lfsr.BuildTable(nil)

	gFull, _ := systematicCode(PlaintextBlockSize, CiphertextSize, rng)
	gt := gFull.Transpose()

	key := make([]uint8, KeySize)
	for i := range key {
		key[i] = uint8(rng.Intn(2))
	}
	s := gf2.Random(1, CiphertextSize, rng)
	p := gf2.Random(1, PlaintextBlockSize, rng)
	nonce := Nonce(9867, 0)

	ciphertext, keystream := EncryptBlock(key, nonce, p, gt, s, companions, table)
	require.Equal(t, 1, ciphertext.Rows())
	require.Equal(t, CiphertextSize, ciphertext.Cols())

	recovered := ciphertext.Copy()
	gf2.AddInplace(recovered, keystream)
	gf2.AddInplace(recovered, s)
	expected := Encode(p, gt)
	require.True(t, recovered.Equal(expected))
}

func TestInjectErrorFlipsExactlyOneBit(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	blocks := make([]*gf2.Matrix, NumBlocks)
	for i := range blocks {
		blocks[i] = gf2.Random(1, CiphertextSize, rng)
	}
	before := blocks[2].Copy()
	InjectError(blocks, 2, 5)
	require.NotEqual(t, before.Get(0, 5), blocks[2].Get(0, 5))
	for j := 0; j < CiphertextSize; j++ {
		if j == 5 {
			continue
		}
		require.Equal(t, before.Get(0, j), blocks[2].Get(0, j), "bit %d should be unchanged", j)
	}
}

func TestR4IndexUsesUpperSixteenBits(t *testing.T) {
	r4 := gf2.New(1, lfsr.LenR4)
	r4.Set(0, 0, 1)
	r4.Set(0, 1, 1)
	r4.Set(0, 16, 1)
	idx := R4Index(r4)
	require.Equal(t, uint16(1|(1<<15)), idx)
}
