// Package tfidf implements a TF-IDF model with an optional learned linear
// reduction to a fixed number of dimensions (latent semantic analysis).
//
// A Model is immutable once Fit returns; it may be shared between goroutines.
package tfidf

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"segembed/internal/vocab"
)

// Model maps token sequences to dense vectors of EmbeddingDim floats.
type Model struct {
	vocabulary     *vocab.Vocabulary
	idf            []float64
	components     *mat.Dense // targetDim x vocabSize, nil when not reduced
	embeddingDim   int
	documentsCount int
	strategy       Strategy
}

// Option customises Fit.
type Option func(*fitConfig)

type fitConfig struct {
	reducer Reducer
}

// WithReducer selects the reduction strategy. The default is SVDReducer.
func WithReducer(r Reducer) Option {
	return func(c *fitConfig) {
		if r != nil {
			c.reducer = r
		}
	}
}

// New returns an empty model: every Transform yields a zero vector.
// A negative dimension is treated as zero.
func New(embeddingDim int) *Model {
	return &Model{vocabulary: vocab.FromTerms(nil), embeddingDim: max(embeddingDim, 0)}
}

// Fit computes IDF weights for the terms of v over documents and, when the
// corpus is large enough, learns a reduction to embeddingDim dimensions.
// Document frequencies are recomputed from documents because v may have been
// built from a different observation window.
func Fit(documents [][]string, v *vocab.Vocabulary, embeddingDim int, opts ...Option) *Model {
	cfg := fitConfig{reducer: SVDReducer{}}
	for _, o := range opts {
		o(&cfg)
	}
	if v == nil {
		v = vocab.FromTerms(nil)
	}
	embeddingDim = max(embeddingDim, 0)
	m := &Model{
		vocabulary:     v,
		embeddingDim:   embeddingDim,
		documentsCount: len(documents),
	}
	vocabSize := v.Len()

	df := make([]int, vocabSize)
	for _, doc := range documents {
		seen := make(map[int]struct{}, len(doc))
		for _, tok := range doc {
			idx, ok := v.Index(tok)
			if !ok {
				continue
			}
			if _, dup := seen[idx]; dup {
				continue
			}
			seen[idx] = struct{}{}
			df[idx]++
		}
	}

	n := float64(m.documentsCount)
	m.idf = make([]float64, vocabSize)
	for i, f := range df {
		if f > 0 {
			m.idf[i] = math.Log((n + 1) / (float64(f) + 1))
		}
	}

	if embeddingDim <= 0 || m.documentsCount < 2 || vocabSize < embeddingDim {
		return m
	}

	x := mat.NewDense(vocabSize, m.documentsCount, nil)
	for j, doc := range documents {
		if len(doc) == 0 {
			continue
		}
		total := float64(len(doc))
		counts := make(map[int]float64)
		for _, tok := range doc {
			if idx, ok := v.Index(tok); ok {
				counts[idx]++
			}
		}
		for idx, c := range counts {
			x.Set(idx, j, c/total*m.idf[idx])
		}
	}

	targetDim := min(embeddingDim, vocabSize, m.documentsCount)
	m.components = cfg.reducer.Reduce(x, targetDim)
	m.strategy = cfg.reducer.Strategy()
	return m
}

// Transform embeds tokens. Unknown tokens are ignored and the result always
// has EmbeddingDim entries; it is not normalised.
func (m *Model) Transform(tokens []string) []float32 {
	out := make([]float32, m.embeddingDim)
	vocabSize := m.vocabulary.Len()
	if vocabSize == 0 || len(tokens) == 0 {
		return out
	}

	counts := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := m.vocabulary.Index(tok); ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return out
	}
	total := float64(len(tokens))
	weights := make([]float64, vocabSize)
	for idx, c := range counts {
		weights[idx] = c / total * m.idf[idx]
	}

	if m.components == nil {
		for i := 0; i < vocabSize && i < m.embeddingDim; i++ {
			out[i] = float32(weights[i])
		}
		return out
	}

	rows, _ := m.components.Dims()
	var proj mat.VecDense
	proj.MulVec(m.components, mat.NewVecDense(vocabSize, weights))
	for i := 0; i < rows && i < m.embeddingDim; i++ {
		out[i] = float32(proj.AtVec(i))
	}
	return out
}

func (m *Model) VocabSize() int { return m.vocabulary.Len() }

func (m *Model) EmbeddingDim() int { return m.embeddingDim }

func (m *Model) DocumentsCount() int { return m.documentsCount }

// Vocabulary returns the fitted vocabulary.
func (m *Model) Vocabulary() *vocab.Vocabulary { return m.vocabulary }

// IDF returns a copy of the IDF weights, aligned with the vocabulary.
func (m *Model) IDF() []float64 { return append([]float64(nil), m.idf...) }

// HasReduction reports whether a reduction matrix was learned.
func (m *Model) HasReduction() bool { return m.components != nil }

// Strategy names the reduction that produced the model, empty when none.
func (m *Model) Strategy() Strategy { return m.strategy }

// Matrix is a row-major dense matrix in plain form.
type Matrix struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// Snapshot is the serialisable form of a Model.
type Snapshot struct {
	Vocabulary     []string  `json:"vocabulary"`
	IDF            []float64 `json:"idf_weights"`
	Components     *Matrix   `json:"components,omitempty"`
	EmbeddingDim   int       `json:"embedding_dim"`
	DocumentsCount int       `json:"documents_count"`
	Strategy       Strategy  `json:"strategy,omitempty"`
}

// Snapshot captures every field of the model.
func (m *Model) Snapshot() Snapshot {
	s := Snapshot{
		Vocabulary:     m.vocabulary.Terms(),
		IDF:            m.IDF(),
		EmbeddingDim:   m.embeddingDim,
		DocumentsCount: m.documentsCount,
		Strategy:       m.strategy,
	}
	if s.Vocabulary == nil {
		s.Vocabulary = []string{}
	}
	if m.components != nil {
		r, c := m.components.Dims()
		data := make([]float64, 0, r*c)
		for i := 0; i < r; i++ {
			data = append(data, m.components.RawRowView(i)...)
		}
		s.Components = &Matrix{Rows: r, Cols: c, Data: data}
	}
	return s
}

// FromSnapshot rebuilds a model, rejecting snapshots whose parts disagree.
func FromSnapshot(s Snapshot) (*Model, error) {
	if s.EmbeddingDim < 0 {
		return nil, fmt.Errorf("negative embedding dimension %d", s.EmbeddingDim)
	}
	v := vocab.FromTerms(s.Vocabulary)
	if v.Len() != len(s.Vocabulary) {
		return nil, errors.New("vocabulary contains duplicate terms")
	}
	if len(s.IDF) != v.Len() {
		return nil, fmt.Errorf("idf weights (%d) not aligned with vocabulary (%d)", len(s.IDF), v.Len())
	}
	m := &Model{
		vocabulary:     v,
		idf:            append([]float64(nil), s.IDF...),
		embeddingDim:   s.EmbeddingDim,
		documentsCount: s.DocumentsCount,
		strategy:       s.Strategy,
	}
	if c := s.Components; c != nil {
		if c.Rows <= 0 || c.Cols != v.Len() || len(c.Data) != c.Rows*c.Cols {
			return nil, fmt.Errorf("components %dx%d with %d values do not match vocabulary size %d",
				c.Rows, c.Cols, len(c.Data), v.Len())
		}
		m.components = mat.NewDense(c.Rows, c.Cols, append([]float64(nil), c.Data...))
	}
	return m, nil
}
