package incremental

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segembed/internal/embedding/tfidf"
	"segembed/internal/tokenizer"
)

func TestExportImport(t *testing.T) {
	c := New(0.3)
	require.NoError(t, c.AddDocument("テスト文書", 32))

	data, err := c.Export()
	require.NoError(t, err)

	restored, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, c.DocumentCount(), restored.DocumentCount())
	assert.Equal(t, c.IsRetraining(), restored.IsRetraining())
	assert.Equal(t, c.Phase(), restored.Phase())
}

func TestExportImport_Empty(t *testing.T) {
	data, err := New(0.5).Export()
	require.NoError(t, err)

	restored, err := Import(data)
	require.NoError(t, err)
	assert.Zero(t, restored.DocumentCount())
	assert.Equal(t, DefaultEmbeddingDim, restored.EmbeddingDim())
	assert.False(t, restored.IsRetraining())
}

func TestExportImport_TrainedModel(t *testing.T) {
	c := New(2.0, WithReduction(tfidf.StrategyPower))
	c.SetUserDictionary([]tokenizer.DictionaryEntry{{Surface: "東京", Variants: []string{"トーキョー"}}})
	c.Tokenizer().AddStopWord("首都")
	for _, d := range corpus {
		require.NoError(t, c.AddDocument(d, 16))
	}
	require.NoError(t, c.StartBackgroundRetrain(16))
	drain(t, c)

	data, err := c.Export()
	require.NoError(t, err)
	restored, err := Import(data)
	require.NoError(t, err)

	assert.Equal(t, c.VocabSize(), restored.VocabSize())
	assert.Equal(t, 16, restored.EmbeddingDim())
	assert.Equal(t, tfidf.StrategyPower, restored.Model().Strategy())
	assert.True(t, restored.Tokenizer().IsStopWord("首都"))
	assert.Equal(t, c.Tokenizer().Tokenize("トーキョー"), restored.Tokenizer().Tokenize("トーキョー"))
	assert.InDeltaSlice(t, c.Transform(corpus[10]), restored.Transform(corpus[10]), 1e-6)
}

func TestExportImport_MidRetrain(t *testing.T) {
	c := New(2.0)
	for _, d := range corpus[:8] {
		require.NoError(t, c.AddDocument(d, 8))
	}
	require.NoError(t, c.StartBackgroundRetrain(8))
	require.False(t, c.StepRetrain())

	data, err := c.Export()
	require.NoError(t, err)
	restored, err := Import(data)
	require.NoError(t, err)

	require.True(t, restored.IsRetraining())
	assert.Equal(t, PhaseComputingTfIdf, restored.Phase())
	assert.InDelta(t, 0.33, restored.RetrainProgress(), 1e-6)
	assert.Zero(t, restored.VocabSize())

	assert.False(t, restored.StepRetrain())
	assert.False(t, restored.StepRetrain())
	assert.True(t, restored.StepRetrain())
	drain(t, c)

	assert.Equal(t, c.VocabSize(), restored.VocabSize())
	assert.InDeltaSlice(t, c.Transform(corpus[3]), restored.Transform(corpus[3]), 1e-6)
}

func TestImport_Invalid(t *testing.T) {
	valid, err := New(0.5).Export()
	require.NoError(t, err)

	mutate := func(f func(s *state)) string {
		var s state
		require.NoError(t, json.Unmarshal([]byte(valid), &s))
		f(&s)
		out, err := json.Marshal(s)
		require.NoError(t, err)
		return string(out)
	}

	for name, data := range map[string]string{
		"garbage":   "not json",
		"truncated": valid[:len(valid)/2],
		"version":   mutate(func(s *state) { s.Version = 99 }),
		"documents": mutate(func(s *state) { s.Documents = []string{"a"} }),
		"phase":     strings.Replace(valid, `"retrain_step":"idle"`, `"retrain_step":"sleeping"`, 1),
		"pending":   mutate(func(s *state) { s.IsRetraining = true; s.Phase = PhaseComputingTfIdf }),
		"flag":      mutate(func(s *state) { s.Phase = PhaseComplete }),
		"model":     mutate(func(s *state) { s.Model.Vocabulary = []string{"a"} }),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Import(data)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}
