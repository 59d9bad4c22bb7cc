// Package incremental keeps a TF-IDF embedding model current while documents
// keep arriving.
//
// Retraining never happens inside a single call. StartBackgroundRetrain
// arms a four-phase state machine and the host drives it with StepRetrain,
// interleaving other work between steps. The live model is replaced in one
// atomic store when the machine completes, so readers see either the old or
// the new model, never a mix.
//
// The Controller is single-writer: AddDocument, StartBackgroundRetrain,
// StepRetrain, CancelRetrain and the dictionary setters need exclusive
// access. Transform and Similarity only read the live model.
package incremental

import (
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"segembed/internal/embedding/tfidf"
	"segembed/internal/tokenizer"
	"segembed/internal/vecmath"
	"segembed/internal/vocab"
)

// DefaultEmbeddingDim is the dimension of the model before any retrain.
const DefaultEmbeddingDim = 64

var (
	// ErrAlreadyRetraining is returned when a retrain is started while another
	// one is in flight.
	ErrAlreadyRetraining = errors.New("retraining already in progress")
	// ErrDecode wraps every failure to import an exported model.
	ErrDecode = errors.New("decode model")
	// ErrInvalidDimension is returned for a non-positive embedding dimension.
	ErrInvalidDimension = errors.New("embedding dimension must be positive")
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReduction selects the reduction strategy used by retrains.
func WithReduction(s tfidf.Strategy) Option {
	return func(c *Controller) { c.reduction = s }
}

// WithTokenizer replaces the default tokenizer.
func WithTokenizer(t *tokenizer.Tokenizer) Option {
	return func(c *Controller) {
		if t != nil {
			c.tok = t
		}
	}
}

// WithEmbeddingDim sets the dimension of the initial, empty model.
func WithEmbeddingDim(dim int) Option {
	return func(c *Controller) { c.initialDim = dim }
}

// Controller owns the corpus, the live model and the pending model.
type Controller struct {
	tok        *tokenizer.Tokenizer
	model      atomic.Pointer[tfidf.Model]
	pending    *tfidf.Model
	documents  []string
	tokenized  [][]string
	reduction  tfidf.Strategy
	initialDim int
	logger     *zap.Logger

	updateThreshold    float64
	changesSinceUpdate int
	retraining         bool
	progress           float32
	phase              Phase
}

// New creates a controller that retrains automatically once the share of
// documents added since the last retrain reaches updateThreshold.
func New(updateThreshold float64, opts ...Option) *Controller {
	c := &Controller{
		tok:             tokenizer.New(),
		reduction:       tfidf.StrategySVD,
		initialDim:      DefaultEmbeddingDim,
		logger:          zap.NewNop(),
		updateThreshold: updateThreshold,
	}
	for _, o := range opts {
		o(c)
	}
	c.model.Store(tfidf.New(c.initialDim))
	return c
}

// NewWithNgrams is New with custom n-gram bounds for the default tokenizer.
func NewWithNgrams(updateThreshold float64, minN, maxN int, opts ...Option) *Controller {
	opts = append([]Option{WithTokenizer(tokenizer.NewWithNgrams(minN, maxN))}, opts...)
	return New(updateThreshold, opts...)
}

// AddDocument stores text and starts a retrain when enough of the corpus is
// new. A document added while a retrain is in flight is stored; it reaches
// the model on the next retrain unless the vocabulary phase has not run yet.
// The only error is ErrInvalidDimension from an automatic start, and the
// document is stored even then.
func (c *Controller) AddDocument(text string, embeddingDim int) error {
	c.documents = append(c.documents, text)
	c.tokenized = append(c.tokenized, c.tok.Tokenize(text))
	c.changesSinceUpdate++

	ratio := float64(c.changesSinceUpdate) / float64(max(len(c.documents), 1))
	if ratio >= c.updateThreshold && !c.retraining {
		return c.StartBackgroundRetrain(embeddingDim)
	}
	return nil
}

// StartBackgroundRetrain arms the state machine with an empty pending model.
func (c *Controller) StartBackgroundRetrain(embeddingDim int) error {
	if c.retraining {
		return ErrAlreadyRetraining
	}
	if embeddingDim <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, embeddingDim)
	}
	c.retraining = true
	c.progress = 0
	c.phase = PhaseBuildingVocabulary
	c.pending = tfidf.New(embeddingDim)
	c.logger.Debug("retrain started",
		zap.Int("documents", len(c.documents)),
		zap.Int("embedding_dim", embeddingDim),
		zap.String("reduction", string(c.reduction)))
	return nil
}

// StepRetrain executes one phase and reports whether the controller is at
// rest. From a fresh start it returns true on the fourth call.
//
// The vocabulary phase also fits the pending model; the two following phases
// only advance the reported progress.
func (c *Controller) StepRetrain() bool {
	if !c.retraining {
		return true
	}
	switch c.phase {
	case PhaseIdle:
		return true
	case PhaseBuildingVocabulary:
		v := vocab.Build(c.tok, c.documents)
		c.pending = tfidf.Fit(c.tokenized, v, c.pending.EmbeddingDim(),
			tfidf.WithReducer(tfidf.ReducerFor(c.reduction)))
	case PhaseComplete:
		c.model.Store(c.pending)
		c.pending = nil
		c.retraining = false
		c.changesSinceUpdate = 0
		c.progress = 1.0
		c.phase = PhaseIdle
		m := c.model.Load()
		c.logger.Info("retrain complete",
			zap.Int("vocab_size", m.VocabSize()),
			zap.Int("documents", m.DocumentsCount()),
			zap.Bool("reduced", m.HasReduction()))
		return true
	}
	c.progress = c.phase.progress()
	c.phase = c.phase.next()
	c.logger.Debug("retrain step", zap.Stringer("phase", c.phase), zap.Float32("progress", c.progress))
	return false
}

// CancelRetrain drops the pending model; the live model is untouched.
func (c *Controller) CancelRetrain() {
	if c.retraining {
		c.logger.Info("retrain cancelled", zap.Stringer("phase", c.phase))
	}
	c.retraining = false
	c.progress = 0
	c.phase = PhaseIdle
	c.pending = nil
}

func (c *Controller) IsRetraining() bool { return c.retraining }

// RetrainProgress returns a value in [0, 1].
func (c *Controller) RetrainProgress() float32 { return c.progress }

// Phase returns the phase that the next StepRetrain will execute.
func (c *Controller) Phase() Phase { return c.phase }

// Transform returns the unit-length embedding of text, or a zero vector when
// the model knows none of its tokens.
func (c *Controller) Transform(text string) []float32 {
	emb := c.model.Load().Transform(c.tok.Tokenize(text))
	vecmath.L2Normalize(emb)
	return emb
}

// Similarity returns the cosine similarity of two texts in [-1, 1].
func (c *Controller) Similarity(a, b string) float32 {
	return vecmath.Cosine(c.Transform(a), c.Transform(b))
}

// TransformBatch embeds each text against the same model.
func (c *Controller) TransformBatch(texts []string) [][]float32 {
	m := c.model.Load()
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.Transform(c.tok.Tokenize(t))
		vecmath.L2Normalize(out[i])
	}
	return out
}

// SimilarityBatch scores each candidate against query.
func (c *Controller) SimilarityBatch(query string, candidates []string) []float32 {
	vecs := c.TransformBatch(append([]string{query}, candidates...))
	out := make([]float32, len(candidates))
	for i := range candidates {
		out[i] = vecmath.Cosine(vecs[0], vecs[i+1])
	}
	return out
}

func (c *Controller) DocumentCount() int { return len(c.documents) }

func (c *Controller) VocabSize() int { return c.model.Load().VocabSize() }

func (c *Controller) EmbeddingDim() int { return c.model.Load().EmbeddingDim() }

// Model returns the live model.
func (c *Controller) Model() *tfidf.Model { return c.model.Load() }

// Tokenizer returns the tokenizer shared by ingestion and queries.
func (c *Controller) Tokenizer() *tokenizer.Tokenizer { return c.tok }

// SetUserDictionary replaces the user dictionary and re-tokenizes the stored
// corpus so the next retrain sees canonical surface forms.
func (c *Controller) SetUserDictionary(entries []tokenizer.DictionaryEntry) {
	c.tok.SetUserDictionary(entries)
	c.retokenize()
}

// ClearUserDictionary removes the dictionary and re-tokenizes the corpus.
func (c *Controller) ClearUserDictionary() {
	c.tok.ClearUserDictionary()
	c.retokenize()
}

func (c *Controller) retokenize() {
	for i, doc := range c.documents {
		c.tokenized[i] = c.tok.Tokenize(doc)
	}
}
