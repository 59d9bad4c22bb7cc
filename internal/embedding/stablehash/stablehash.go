// Package stablehash provides a training-free embedder based on feature
// hashing of character n-grams.
//
// Output depends only on (text, dimension, n-gram size, seed) and is
// bit-for-bit reproducible across processes and releases, which makes it
// usable before any corpus exists and safe as a cache key.
package stablehash

import (
	"encoding/binary"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"segembed/internal/tokenizer"
	"segembed/internal/vecmath"
)

const (
	DefaultSeed  = 42
	hashesPerKey = 3
	// classFeatures are written into the trailing dimensions.
	classFeatures = 5
)

// Embedder is an immutable value; copies behave identically.
type Embedder struct {
	dimension int
	ngramSize int
	seed      uint64
}

// New returns an embedder with the default seed.
func New(dimension, ngramSize int) Embedder {
	return NewWithSeed(dimension, ngramSize, DefaultSeed)
}

// NewWithSeed returns an embedder with an explicit seed.
func NewWithSeed(dimension, ngramSize int, seed uint64) Embedder {
	if dimension < 0 {
		dimension = 0
	}
	if ngramSize < 1 {
		ngramSize = 1
	}
	return Embedder{dimension: dimension, ngramSize: ngramSize, seed: seed}
}

func (e Embedder) Dimension() int { return e.dimension }

func (e Embedder) NgramSize() int { return e.ngramSize }

func (e Embedder) Seed() uint64 { return e.seed }

// Transform embeds text into a unit vector of Dimension() floats. Empty text
// yields the zero vector. Text with fewer visible characters than the n-gram
// size, whitespace-only text included, is hashed whole.
func (e Embedder) Transform(text string) []float32 {
	out := make([]float32, e.dimension)
	if e.dimension == 0 || text == "" {
		return out
	}
	chars := make([]rune, 0, len(text))
	for _, r := range text {
		if !unicode.IsSpace(r) {
			chars = append(chars, r)
		}
	}
	if len(chars) < e.ngramSize {
		e.accumulate(text, out)
	} else {
		for i := 0; i+e.ngramSize <= len(chars); i++ {
			e.accumulate(string(chars[i:i+e.ngramSize]), out)
		}
	}
	e.classRatios(text, out)
	vecmath.L2Normalize(out)
	return out
}

// accumulate adds ±1 for each of three independent hashes of token. The
// sign keeps collisions from systematically inflating the norm.
func (e Embedder) accumulate(token string, out []float32) {
	for i := uint32(0); i < hashesPerKey; i++ {
		h := e.hash(token, i)
		idx := h % uint64(e.dimension)
		if h&1 == 0 {
			out[idx]++
		} else {
			out[idx]--
		}
	}
}

func (e Embedder) hash(token string, index uint32) uint64 {
	var prefix [12]byte
	binary.LittleEndian.PutUint64(prefix[:8], e.seed)
	binary.LittleEndian.PutUint32(prefix[8:], index)
	d := xxhash.New()
	_, _ = d.Write(prefix[:])
	_, _ = d.WriteString(token)
	return d.Sum64()
}

// classRatios overwrites the last five dimensions with the share of
// hiragana, katakana, ideograph, latin and digit characters. Shares are
// divided by the UTF-8 byte length of text, not its rune count; cached
// embeddings depend on this.
func (e Embedder) classRatios(text string, out []float32) {
	if e.dimension < classFeatures || len(text) == 0 {
		return
	}
	var counts [tokenizer.Digit + 1]int
	for _, r := range text {
		counts[tokenizer.Classify(r)]++
	}
	total := float32(len(text))
	start := e.dimension - classFeatures
	for i, ct := range []tokenizer.CharType{
		tokenizer.Hiragana, tokenizer.Katakana, tokenizer.Ideograph, tokenizer.Latin, tokenizer.Digit,
	} {
		out[start+i] = float32(counts[ct]) / total
	}
}

// Similarity returns the cosine similarity of the two embeddings.
func (e Embedder) Similarity(a, b string) float32 {
	return vecmath.Cosine(e.Transform(a), e.Transform(b))
}

// TransformBatch embeds each text.
func (e Embedder) TransformBatch(texts []string) [][]float32 {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.Transform(t)
	}
	return out
}

// SimilarityBatch scores every candidate against query.
func (e Embedder) SimilarityBatch(query string, candidates []string) []float32 {
	q := e.Transform(query)
	out := make([]float32, len(candidates))
	for i, c := range candidates {
		out[i] = vecmath.Cosine(q, e.Transform(c))
	}
	return out
}
