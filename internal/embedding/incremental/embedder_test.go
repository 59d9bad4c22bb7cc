package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segembed/internal/domain"
	"segembed/internal/embedding/stablehash"
	"segembed/internal/vecmath"
)

var _ domain.IncrementalEmbedder = (*Embedder)(nil)

func TestEmbedder_FallbackBeforeTraining(t *testing.T) {
	fb := stablehash.New(32, 2)
	e := NewEmbedder(New(0.3), 32, &fb)

	v, err := e.Embed("東京は日本の首都です。")
	require.NoError(t, err)
	assert.Equal(t, fb.Transform("東京は日本の首都です。"), v)

	bare := NewEmbedder(New(0.3), 32, nil)
	v, err = bare.Embed("東京")
	require.NoError(t, err)
	assert.Len(t, v, 32)
	assert.True(t, vecmath.IsZero(v))
}

func TestEmbedder_Prepare(t *testing.T) {
	fb := stablehash.New(24, 2)
	e := NewEmbedder(New(0.3), 24, &fb)
	require.NoError(t, e.Prepare(corpus))

	assert.False(t, e.IsRetraining())
	assert.Equal(t, len(corpus), e.Controller().Model().DocumentsCount())
	assert.Greater(t, e.Controller().VocabSize(), 0)
	assert.Equal(t, "incremental", e.Name())
	assert.Equal(t, 24, e.Dimension())

	v, err := e.Embed(corpus[0])
	require.NoError(t, err)
	assert.Len(t, v, 24)
	assert.InDelta(t, 1.0, vecmath.Norm(v), 1e-4)
}

func TestEmbedder_PrepareFinishesInFlightRetrain(t *testing.T) {
	e := NewEmbedder(New(2.0), 16, nil)
	require.NoError(t, e.AddDocument(corpus[0]))
	require.NoError(t, e.Controller().StartBackgroundRetrain(16))
	require.False(t, e.StepRetrain())

	require.NoError(t, e.Prepare(corpus[1:6]))
	assert.False(t, e.IsRetraining())
	assert.Equal(t, 6, e.Controller().Model().DocumentsCount())
}

func TestEmbedder_DimensionMismatch(t *testing.T) {
	c := New(2.0)
	require.NoError(t, c.AddDocument(corpus[0], 8))
	require.NoError(t, c.AddDocument(corpus[1], 8))
	require.NoError(t, c.StartBackgroundRetrain(8))
	for !c.StepRetrain() {
	}

	_, err := NewEmbedder(c, 16, nil).Embed(corpus[0])
	assert.Error(t, err)
}

func TestEmbedder_ProgressPassThrough(t *testing.T) {
	e := NewEmbedder(New(2.0), 16, nil)
	require.NoError(t, e.AddDocument(corpus[0]))
	require.NoError(t, e.Controller().StartBackgroundRetrain(16))
	e.StepRetrain()
	assert.InDelta(t, 0.33, e.RetrainProgress(), 1e-6)
	e.CancelRetrain()
	assert.False(t, e.IsRetraining())
	assert.Zero(t, e.RetrainProgress())
}
