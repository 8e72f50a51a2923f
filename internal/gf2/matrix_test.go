package gf2

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetGetRoundTrip(t *testing.T) {
	m := New(5, 70)
	m.Set(0, 0, 1)
	m.Set(4, 69, 1)
	m.Set(2, 37, 1)
	require.EqualValues(t, 1, m.Get(0, 0))
	require.EqualValues(t, 1, m.Get(4, 69))
	require.EqualValues(t, 1, m.Get(2, 37))
	require.EqualValues(t, 0, m.Get(1, 1))
}

func TestAddInplaceIsXOR(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := Random(8, 130, rng)
	b := Random(8, 130, rng)
	want := New(8, 130)
	for i := 0; i < 8; i++ {
		for j := 0; j < 130; j++ {
			want.Set(i, j, a.Get(i, j)^b.Get(i, j))
		}
	}
	AddInplace(a, b)
	require.True(t, a.Equal(want))
}

func TestMulIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := Random(12, 9, rng)
	id := New(9, 9)
	for i := 0; i < 9; i++ {
		id.Set(i, i, 1)
	}
	got := Mul(a, id)
	require.True(t, got.Equal(a))
}

func TestTransposeInvolution(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := Random(13, 21, rng)
	require.True(t, a.Transpose().Transpose().Equal(a))
}

func TestEchelonizeRankAndPivots(t *testing.T) {
	m := New(3, 3)
	// row2 = row0 ^ row1, so rank should be 2.
	m.Set(0, 0, 1)
	m.Set(1, 1, 1)
	m.Set(2, 0, 1)
	m.Set(2, 1, 1)
	_, rank, pivots := m.Echelonize()
	require.Equal(t, 2, rank)
	require.Equal(t, []int{0, 1}, pivots)
}

func TestWindowMaterializeMatchesParent(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	m := Random(20, 30, rng)
	v := m.Window(5, 10, 15, 20)
	sub := v.Materialize()
	for i := 0; i < 10; i++ {
		for j := 0; j < 10; j++ {
			require.Equal(t, m.Get(5+i, 10+j), sub.Get(i, j))
		}
	}
}

func TestWindowSetWritesThroughToParent(t *testing.T) {
	m := New(4, 4)
	v := m.Window(1, 1, 3, 3)
	v.Set(0, 0, 1)
	require.EqualValues(t, 1, m.Get(1, 1))
	require.EqualValues(t, 0, m.Get(0, 0))
}

func TestVStackConcatenatesRowsInOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	a := Random(3, 17, rng)
	b := Random(5, 17, rng)
	c := Random(1, 17, rng)
	stacked := VStack(a, b, c)
	require.Equal(t, 9, stacked.Rows())
	require.Equal(t, 17, stacked.Cols())
	for j := 0; j < 17; j++ {
		require.Equal(t, a.Get(0, j), stacked.Get(0, j))
		require.Equal(t, b.Get(2, j), stacked.Get(3+2, j))
		require.Equal(t, c.Get(0, j), stacked.Get(8, j))
	}
}

func TestVStackRejectsColumnMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := Random(2, 10, rng)
	b := Random(2, 11, rng)
	require.Panics(t, func() {
		VStack(a, b)
	})
}

func TestMaskTailBitsIgnoresPadding(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := Random(3, 70, rng)
	b := New(3, 70)
	for i := 0; i < 3; i++ {
		for j := 0; j < 70; j++ {
			b.Set(i, j, a.Get(i, j))
		}
	}
	require.True(t, a.Equal(b))
}
