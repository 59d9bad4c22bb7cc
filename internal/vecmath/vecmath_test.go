package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, Cosine(v, []float32{1, 2, 3}), 1e-6)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0, 0}, []float32{0, 1, 0}), 1e-6)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-2, 0}), 1e-6)
}

func TestCosine_Degenerate(t *testing.T) {
	assert.Equal(t, float32(0), Cosine([]float32{0, 0}, []float32{0, 0}))
	assert.Equal(t, float32(0), Cosine([]float32{1, 0}, []float32{0, 0}))
	assert.Equal(t, float32(0), Cosine([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Equal(t, float32(0), Cosine(nil, nil))
}

func TestL2Normalize(t *testing.T) {
	v := []float32{3, 4}
	L2Normalize(v)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1.0, Norm(v), 1e-6)

	zero := []float32{0, 0, 0}
	L2Normalize(zero)
	assert.True(t, IsZero(zero))
}
