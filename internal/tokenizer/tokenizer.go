// Package tokenizer segments text that has no explicit word boundaries.
//
// No morphological dictionary is used. Candidate tokens are produced by a
// union of heuristics: character n-grams, single-class character runs,
// single ideographs, class-transition word boundaries and, when configured,
// a user dictionary that folds variant spellings into a canonical form.
// The result is a set; downstream statistics never depend on token order.
package tokenizer

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Options configures tokenization and the vocabulary statistics built on it.
type Options struct {
	MinNgram         int     `json:"min_ngram"`
	MaxNgram         int     `json:"max_ngram"`
	MinDocFreq       int     `json:"min_doc_freq"`
	MaxDocFreqRatio  float64 `json:"max_doc_freq_ratio"`
	MaxVocabSize     int     `json:"max_vocab_size"`
	StopWordsEnabled bool    `json:"stop_words_enabled"`
	NormalizeNFKC    bool    `json:"normalize_nfkc"`
}

// DefaultOptions mirrors the settings used when no configuration is given.
func DefaultOptions() Options {
	return Options{
		MinNgram:         2,
		MaxNgram:         3,
		MinDocFreq:       1,
		MaxDocFreqRatio:  0.9,
		MaxVocabSize:     50000,
		StopWordsEnabled: true,
	}
}

// Tokenizer is not safe for concurrent mutation; Tokenize may be called
// concurrently once configuration is finished.
type Tokenizer struct {
	opts      Options
	stopWords map[string]struct{}
	dict      *UserDictionary
}

// New creates a tokenizer with default options and the built-in stop words.
func New() *Tokenizer { return NewWithOptions(DefaultOptions()) }

// NewWithNgrams creates a default tokenizer with custom n-gram bounds.
func NewWithNgrams(minN, maxN int) *Tokenizer {
	opts := DefaultOptions()
	opts.MinNgram = minN
	opts.MaxNgram = maxN
	return NewWithOptions(opts)
}

// NewWithOptions creates a tokenizer from explicit options.
func NewWithOptions(opts Options) *Tokenizer {
	if opts.MinNgram < 1 {
		opts.MinNgram = 1
	}
	if opts.MaxNgram < opts.MinNgram {
		opts.MaxNgram = opts.MinNgram
	}
	return &Tokenizer{opts: opts, stopWords: DefaultStopWords()}
}

// Options returns the active configuration.
func (t *Tokenizer) Options() Options { return t.opts }

// SetUserDictionary replaces the dictionary wholesale.
func (t *Tokenizer) SetUserDictionary(entries []DictionaryEntry) {
	t.dict = NewUserDictionary(entries)
}

// ClearUserDictionary removes the dictionary.
func (t *Tokenizer) ClearUserDictionary() { t.dict = nil }

// UserDictionary returns the configured dictionary or nil.
func (t *Tokenizer) UserDictionary() *UserDictionary { return t.dict }

func (t *Tokenizer) SetStopWordsEnabled(enabled bool) { t.opts.StopWordsEnabled = enabled }

func (t *Tokenizer) AddStopWord(word string) { t.stopWords[word] = struct{}{} }

func (t *Tokenizer) RemoveStopWord(word string) { delete(t.stopWords, word) }

// SetStopWords replaces the stop word set.
func (t *Tokenizer) SetStopWords(words []string) {
	t.stopWords = make(map[string]struct{}, len(words))
	for _, w := range words {
		t.stopWords[w] = struct{}{}
	}
}

// StopWords returns the stop words in sorted order.
func (t *Tokenizer) StopWords() []string {
	out := make([]string, 0, len(t.stopWords))
	for w := range t.stopWords {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// IsStopWord reports whether token is filtered by the stop word list.
func (t *Tokenizer) IsStopWord(token string) bool {
	if !t.opts.StopWordsEnabled {
		return false
	}
	_, ok := t.stopWords[token]
	return ok
}

// Tokenize returns the deduplicated candidate tokens of text in sorted order.
func (t *Tokenizer) Tokenize(text string) []string {
	if t.opts.NormalizeNFKC {
		text = norm.NFKC.String(text)
	}
	set := make(map[string]struct{})
	spans := []string{text}
	if t.dict != nil {
		matches := t.dict.FindMatches(text)
		for _, m := range matches {
			set[m.Surface] = struct{}{}
		}
		spans = unmatchedSpans(text, matches)
	}
	for _, span := range spans {
		t.collect(span, set)
	}
	out := make([]string, 0, len(set))
	for tok := range set {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

func (t *Tokenizer) collect(span string, set map[string]struct{}) {
	for _, group := range [][]string{
		CharNgrams(span, t.opts.MinNgram, t.opts.MaxNgram),
		KanjiUnigrams(span),
		CharTypeSequences(span),
		EstimateWordBoundaries(span),
	} {
		for _, tok := range group {
			if t.IsStopWord(tok) {
				continue
			}
			set[tok] = struct{}{}
		}
	}
}

// CharNgrams emits every contiguous run of n runes, for n in [minN, maxN],
// after removing whitespace.
func CharNgrams(text string, minN, maxN int) []string {
	chars := stripSpace(text)
	if minN < 1 {
		minN = 1
	}
	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(chars); i++ {
			out = append(out, string(chars[i:i+n]))
		}
	}
	return out
}

// CharTypeSequences emits maximal runs of a single non-Other class that are
// longer than one rune.
func CharTypeSequences(text string) []string {
	var out []string
	var run []rune
	current := Other
	flush := func() {
		if current != Other && len(run) > 1 {
			out = append(out, string(run))
		}
		run = run[:0]
	}
	for _, r := range text {
		ct := Classify(r)
		if ct != current {
			flush()
			current = ct
		}
		if ct != Other {
			run = append(run, r)
		}
	}
	flush()
	return out
}

// KanjiUnigrams emits every ideograph as its own token.
func KanjiUnigrams(text string) []string {
	var out []string
	for _, r := range text {
		if Classify(r) == Ideograph {
			out = append(out, string(r))
		}
	}
	return out
}

// EstimateWordBoundaries splits text where the script class changes in a way
// that usually marks a word break. Single-rune pieces are dropped.
func EstimateWordBoundaries(text string) []string {
	var out []string
	var word []rune
	prev := Other
	flush := func() {
		if len(word) > 1 {
			out = append(out, string(word))
		}
		word = word[:0]
	}
	for _, r := range text {
		ct := Classify(r)
		if isBoundary(prev, ct, r) && len(word) > 0 {
			flush()
		}
		if ct != Other {
			word = append(word, r)
			prev = ct
		}
	}
	flush()
	return out
}

func isBoundary(prev, cur CharType, r rune) bool {
	switch {
	case prev == Other || cur == Other:
		return true
	case prev == Hiragana && cur == Ideograph:
		return true
	case prev == Katakana && cur == Ideograph:
		return true
	case prev == Ideograph && cur == Hiragana:
		_, ok := boundaryParticles[r]
		return ok
	}
	return false
}

func stripSpace(text string) []rune {
	return []rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text))
}
