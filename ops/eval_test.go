package ops

import (
	"testing"

	ocio "github.com/IXgSoul/OpenColorIO"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func in_delta_slice(t *testing.T, expected, actual []float32, delta float64) {
	t.Helper()
	require.Equal(t, len(expected), len(actual))
	for i := range expected {
		assert.InDelta(t, expected[i], actual[i], delta, "index %d", i)
	}
}

func TestScale(t *testing.T) {
	s := NewScale(0.5)
	r, g, b := s.Transform(1, 2, 4)
	assert.Equal(t, float32(0.5), r)
	assert.Equal(t, float32(1), g)
	assert.Equal(t, float32(2), b)

	r, g, b = NewScale(1).Transform(0.25, 0.5, 0.75)
	assert.Equal(t, float32(0.25), r)
	assert.Equal(t, float32(0.5), g)
	assert.Equal(t, float32(0.75), b)
}

func TestEvalTriplets(t *testing.T) {
	t.Run("ChainOrder", func(t *testing.T) {
		src := []float32{1, 2, 3, 4, 5, 6}
		dst := make([]float32, len(src))
		require.NoError(t, EvalTriplets(dst, src, NewScale(2), NewScale(3)))
		in_delta_slice(t, []float32{6, 12, 18, 24, 30, 36}, dst, 0)
		// src untouched
		assert.Equal(t, float32(1), src[0])
	})
	t.Run("InPlace", func(t *testing.T) {
		buf := []float32{1, 2, 3}
		require.NoError(t, EvalTriplets(buf, buf, NewScale(10)))
		in_delta_slice(t, []float32{10, 20, 30}, buf, 0)
	})
	t.Run("EmptyChain", func(t *testing.T) {
		src := []float32{1, 2, 3}
		dst := make([]float32, 3)
		require.NoError(t, EvalTriplets(dst, src))
		in_delta_slice(t, src, dst, 0)
	})
	t.Run("SizeMismatch", func(t *testing.T) {
		err := EvalTriplets(make([]float32, 3), make([]float32, 6), NewScale(1))
		require.Error(t, err)
		var dom *ocio.DomainError
		require.ErrorAs(t, err, &dom)
		assert.ErrorContains(t, err, "does not match")
	})
	t.Run("NotTriplets", func(t *testing.T) {
		err := EvalTriplets(make([]float32, 4), make([]float32, 4))
		require.Error(t, err)
		assert.ErrorContains(t, err, "multiple of 3")
	})
	t.Run("ManyTriplets", func(t *testing.T) {
		// large enough to actually split across goroutines
		const n = 10000
		src := make([]float32, 3*n)
		for i := range src {
			src[i] = float32(i)
		}
		dst := make([]float32, len(src))
		require.NoError(t, EvalTriplets(dst, src, NewScale(2)))
		for i := range dst {
			if dst[i] != 2*src[i] {
				t.Fatalf("triplet %d: got %v want %v", i/3, dst[i], 2*src[i])
			}
		}
	})
}
