package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"segembed/internal/tokenizer"
)

var weatherDocs = []string{
	"今日は天気がいいですね",
	"明日は雨が降りそうです",
	"今日は映画を見ました",
	"天気は晴れです",
	"映画は面白かったです",
}

func TestDynamicCap(t *testing.T) {
	cases := []struct {
		docs    int
		atLeast int
	}{
		{5, 1000},
		{50, 5000},
		{200, 10000},
	}
	for _, tc := range cases {
		got := DynamicCap(tc.docs, 50000)
		assert.GreaterOrEqual(t, got, tc.atLeast, "docs=%d", tc.docs)
		assert.LessOrEqual(t, got, 50000)
	}
	assert.Equal(t, 50000, DynamicCap(10000, 50000))
	assert.Equal(t, 20000, DynamicCap(200, 50000))
	assert.Equal(t, 300, DynamicCap(3, 300))
}

func TestBuild(t *testing.T) {
	v := Build(tokenizer.New(), weatherDocs)

	_, hasToday := v.Index("今日")
	_, hasWeather := v.Index("天気")
	_, hasMovie := v.Index("映画")
	assert.True(t, hasToday || hasWeather || hasMovie)
	assert.Greater(t, v.Len(), 5)
	assert.Less(t, v.Len(), 1000)

	_, ok := v.Index("は")
	assert.False(t, ok)
	_, ok = v.Index("です")
	assert.False(t, ok)
}

func TestBuild_DenseIndices(t *testing.T) {
	v := Build(tokenizer.New(), weatherDocs)
	for i, term := range v.Terms() {
		idx, ok := v.Index(term)
		require.True(t, ok)
		assert.Equal(t, i, idx)
		assert.Equal(t, term, v.Term(i))
	}
}

func TestBuild_Deterministic(t *testing.T) {
	a := Build(tokenizer.New(), weatherDocs)
	b := Build(tokenizer.New(), weatherDocs)
	assert.Equal(t, a.Terms(), b.Terms())
}

func TestBuild_StopWordsOnly(t *testing.T) {
	tok := tokenizer.New()
	v := Build(tok, []string{"です", "ます", "は", "です ます"})
	for _, w := range []string{"です", "ます", "は"} {
		_, ok := v.Index(w)
		assert.False(t, ok, "stop word %q in vocabulary", w)
	}
}

func TestBuild_Empty(t *testing.T) {
	v := Build(tokenizer.New(), nil)
	assert.Zero(t, v.Len())
	_, ok := v.Index("今日")
	assert.False(t, ok)
}

func TestBuild_DropsUniversalTerms(t *testing.T) {
	docs := []string{"共通語彙一", "共通語彙二", "共通語彙三", "共通語彙四"}
	v := Build(tokenizer.New(), docs)
	_, ok := v.Index("共通")
	assert.False(t, ok, "terms in every document exceed the max doc freq ratio")
	_, ok = v.Index("語彙一")
	assert.True(t, ok)
}

func TestBuild_RespectsCap(t *testing.T) {
	opts := tokenizer.DefaultOptions()
	opts.MaxVocabSize = 10
	v := Build(tokenizer.NewWithOptions(opts), weatherDocs)
	assert.Equal(t, 10, v.Len())
}

func TestFromTerms(t *testing.T) {
	v := FromTerms([]string{"b", "a", "b"})
	assert.Equal(t, 2, v.Len())
	assert.Equal(t, []string{"b", "a"}, v.Terms())

	var nilVocab *Vocabulary
	assert.Zero(t, nilVocab.Len())
}
