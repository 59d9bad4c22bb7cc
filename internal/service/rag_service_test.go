package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segembed/internal/chunker"
	"segembed/internal/domain"
	"segembed/internal/embedding/incremental"
	"segembed/internal/embedding/stablehash"
	"segembed/internal/summarizer"
	"segembed/internal/tokenizer"
	"segembed/internal/vectorstore/memory"
)

var files = map[string]string{
	"weather.txt": "今日は天気がいいですね。天気予報では明日も晴れです。",
	"movies.txt":  "昨日は映画を見ました。映画館はとても混んでいました。",
	"food.txt":    "寿司が大好きです。ラーメンも美味しいですね。",
	"notes.md":    "この文書は無視されます。",
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func newService(e domain.Embedder, tok *tokenizer.Tokenizer) (*RAGServiceImpl, *memory.Storage) {
	store := memory.NewStorage()
	svc := NewRAGService(
		chunker.NewSentenceChunker(1, 0),
		e,
		store,
		summarizer.NewFrequencySummarizer(tok),
		tok,
		2,
		nil,
	)
	return svc, store
}

func newIncremental(threshold float64, dim int) (*incremental.Embedder, *tokenizer.Tokenizer) {
	ctrl := incremental.New(threshold, incremental.WithEmbeddingDim(dim))
	fb := stablehash.New(dim, 2)
	return incremental.NewEmbedder(ctrl, dim, &fb), ctrl.Tokenizer()
}

func TestIngestAndQuery_Incremental(t *testing.T) {
	dir := writeCorpus(t)
	e, tok := newIncremental(0.3, 32)
	svc, store := newService(e, tok)

	summary, err := svc.IngestDocuments([]string{filepath.Join(dir, "*")})
	require.NoError(t, err)
	assert.NotEmpty(t, summary)
	assert.Equal(t, 6, store.Len(), "one chunk per sentence, .md skipped")
	assert.False(t, svc.IsRetraining())

	res, err := svc.Query("映画を見ました", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Contains(t, res[0].Chunk.Text, "映画")
}

func TestIngest_NoDocuments(t *testing.T) {
	e, tok := newIncremental(0.3, 16)
	svc, _ := newService(e, tok)
	_, err := svc.IngestDocuments([]string{filepath.Join(t.TempDir(), "*.txt")})
	assert.Error(t, err)
}

func TestAddDocument_CooperativeRetrain(t *testing.T) {
	e, tok := newIncremental(0.3, 16)
	_, ok := domain.Embedder(e).(domain.IncrementalEmbedder)
	require.True(t, ok, "the incremental embedder must reach the retrain path")
	svc, store := newService(e, tok)

	require.NoError(t, svc.AddDocument("東京は日本の首都です。大阪は関西の大都市です。"))
	assert.Equal(t, 2, store.Len())
	require.True(t, svc.IsRetraining(), "the first document always triggers a retrain")

	steps := 0
	for {
		done, err := svc.StepRetrain()
		require.NoError(t, err)
		steps++
		if done {
			break
		}
		assert.Greater(t, svc.RetrainProgress(), float32(0))
	}
	assert.Equal(t, 4, steps)
	assert.False(t, svc.IsRetraining())
	assert.Equal(t, 2, store.Len(), "reindex replaces rather than duplicates")
	assert.Greater(t, e.Controller().VocabSize(), 0)

	done, err := svc.StepRetrain()
	require.NoError(t, err)
	assert.True(t, done)

	res, err := svc.Query("東京は日本の首都です。", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "東京は日本の首都です。", res[0].Chunk.Text)
}

func TestAddDocument_RequiresIncremental(t *testing.T) {
	tok := tokenizer.New()
	svc, _ := newService(stablehash.New(16, 2), tok)
	assert.ErrorIs(t, svc.AddDocument("テスト"), ErrNotIncremental)
	assert.ErrorIs(t, svc.ExportModel(filepath.Join(t.TempDir(), "m.json")), ErrNotIncremental)

	done, err := svc.StepRetrain()
	require.NoError(t, err)
	assert.True(t, done)
	assert.False(t, svc.IsRetraining())
	assert.Zero(t, svc.RetrainProgress())
}

func TestQuery_LexicalFallback(t *testing.T) {
	dir := writeCorpus(t)
	e, tok := newIncremental(0.3, 32)
	svc, _ := newService(e, tok)
	_, err := svc.IngestDocuments([]string{filepath.Join(dir, "*.txt")})
	require.NoError(t, err)

	// Tokens unknown to the model give a zero vector; lexical overlap still ranks.
	vec, err := e.Embed("ＸＹＺ")
	require.NoError(t, err)
	require.True(t, isZero(vec))

	res, err := svc.Query("ＸＹＺ", 3)
	require.NoError(t, err)
	assert.Len(t, res, 3)
	for _, r := range res {
		assert.Zero(t, r.Score)
	}
}

func TestExportModel(t *testing.T) {
	e, tok := newIncremental(0.3, 16)
	svc, _ := newService(e, tok)
	require.NoError(t, svc.AddDocument("桜の季節は美しいです。"))

	path := filepath.Join(t.TempDir(), "models", "model.json")
	require.NoError(t, svc.ExportModel(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	restored, err := incremental.Import(string(data))
	require.NoError(t, err)
	assert.Equal(t, 1, restored.DocumentCount())
}

func TestOverlapOchiai(t *testing.T) {
	set := func(xs ...string) map[string]struct{} {
		m := map[string]struct{}{}
		for _, x := range xs {
			m[x] = struct{}{}
		}
		return m
	}
	assert.InDelta(t, 1.0, overlapOchiai(set("a", "b"), set("a", "b")), 1e-12)
	assert.InDelta(t, 0.5, overlapOchiai(set("a", "b"), set("a", "c")), 1e-12)
	assert.Zero(t, overlapOchiai(set(), set("a")))
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
