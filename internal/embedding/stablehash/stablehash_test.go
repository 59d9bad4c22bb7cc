package stablehash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segembed/internal/domain"
	"segembed/internal/vecmath"
)

var _ domain.Embedder = Embedder{}

func TestTransform_Basic(t *testing.T) {
	e := New(64, 2)
	emb := e.Transform("今日は天気がいいですね")
	require.Len(t, emb, 64)
	assert.False(t, vecmath.IsZero(emb))
	assert.InDelta(t, 1.0, vecmath.Norm(emb), 1e-5)
}

func TestTransform_Dimensions(t *testing.T) {
	for _, dim := range []int{1, 3, 5, 16, 100, 384} {
		emb := New(dim, 2).Transform("テキスト embedding 123")
		assert.Len(t, emb, dim)
		assert.InDelta(t, 1.0, vecmath.Norm(emb), 1e-5, "dim=%d", dim)
	}
	assert.Empty(t, New(0, 2).Transform("テキスト"))
}

func TestTransform_Stable(t *testing.T) {
	text := "同じテキスト"
	a := New(32, 2).Transform(text)
	b := New(32, 2).Transform(text)
	c := New(32, 2).Transform(text)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c)
}

func TestTransform_DifferentSeeds(t *testing.T) {
	a := NewWithSeed(32, 2, 42).Transform("テストテキスト")
	b := NewWithSeed(32, 2, 123).Transform("テストテキスト")
	assert.NotEqual(t, a, b)
}

func TestTransform_ShortText(t *testing.T) {
	emb := New(32, 3).Transform("あ")
	require.Len(t, emb, 32)
	assert.False(t, vecmath.IsZero(emb))
}

func TestTransform_Empty(t *testing.T) {
	emb := New(16, 2).Transform("")
	assert.Len(t, emb, 16)
	assert.True(t, vecmath.IsZero(emb))
}

func TestTransform_WhitespaceIsHashedWhole(t *testing.T) {
	// below five dimensions no class feature overwrites the hashed ones
	e := New(4, 2)
	for _, text := range []string{"   ", "\n\t", " "} {
		emb := e.Transform(text)
		assert.Len(t, emb, 4)
		assert.False(t, vecmath.IsZero(emb), "text %q", text)
		assert.InDelta(t, 1.0, vecmath.Norm(emb), 1e-5, "text %q", text)
	}
	assert.Equal(t, e.Transform("   "), e.Transform("   "))
}

func TestClassRatios_ByteLength(t *testing.T) {
	e := New(8, 2)
	out := make([]float32, 8)
	// 2 hiragana (3 bytes each) + 1 latin + 1 digit = 8 bytes
	e.classRatios("あいa1", out)
	assert.InDelta(t, 2.0/8.0, out[3], 1e-7)
	assert.Zero(t, out[4])
	assert.Zero(t, out[5])
	assert.InDelta(t, 1.0/8.0, out[6], 1e-7)
	assert.InDelta(t, 1.0/8.0, out[7], 1e-7)

	small := make([]float32, 4)
	New(4, 2).classRatios("あいa1", small)
	assert.True(t, vecmath.IsZero(small), "dimensions below five carry no class features")
}

func TestSimilarity(t *testing.T) {
	e := New(64, 2)
	near := e.Similarity("今日は天気がいい", "今日は天気が良い")
	far := e.Similarity("今日は天気がいい", "昨日は雨でした")
	assert.Greater(t, near, float32(0.5))
	assert.Less(t, far, near)
	assert.InDelta(t, 1.0, e.Similarity("同じ", "同じ"), 1e-6)
	assert.Zero(t, e.Similarity("", "今日"))
}

func TestBatch(t *testing.T) {
	e := New(32, 2)
	texts := []string{"東京は日本の首都です", "大阪は関西の大都市です"}
	batch := e.TransformBatch(texts)
	require.Len(t, batch, 2)
	assert.Equal(t, e.Transform(texts[0]), batch[0])

	sims := e.SimilarityBatch("東京は日本の首都です", texts)
	require.Len(t, sims, 2)
	assert.InDelta(t, 1.0, sims[0], 1e-6)
	assert.Less(t, sims[1], sims[0])
}

func TestEmbedderPort(t *testing.T) {
	e := New(16, 2)
	assert.Equal(t, "stablehash", e.Name())
	assert.NoError(t, e.Prepare([]string{"x"}))
	assert.Equal(t, 16, e.Dimension())
	v, err := e.Embed("テスト")
	require.NoError(t, err)
	assert.Equal(t, e.Transform("テスト"), v)
}
