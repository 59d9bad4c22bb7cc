package incremental

import (
	"fmt"

	"segembed/internal/embedding/stablehash"
)

// Embedder adapts a Controller to domain.IncrementalEmbedder. Until the first
// retrain produces a vocabulary, vectors come from the stable hash fallback
// (or are zero when no fallback is set), always with the configured dimension.
type Embedder struct {
	ctrl     *Controller
	dim      int
	fallback *stablehash.Embedder
}

// NewEmbedder wraps ctrl. fallback may be nil.
func NewEmbedder(ctrl *Controller, dim int, fallback *stablehash.Embedder) *Embedder {
	return &Embedder{ctrl: ctrl, dim: dim, fallback: fallback}
}

func (e *Embedder) Name() string { return "incremental" }

func (e *Embedder) Dimension() int { return e.dim }

func (e *Embedder) Controller() *Controller { return e.ctrl }

// Prepare adds corpus to the controller and runs a full retrain in place.
// An in-flight retrain is finished first.
func (e *Embedder) Prepare(corpus []string) error {
	for !e.ctrl.StepRetrain() {
	}
	for _, text := range corpus {
		if err := e.ctrl.AddDocument(text, e.dim); err != nil {
			return fmt.Errorf("add document: %w", err)
		}
	}
	if !e.ctrl.IsRetraining() && e.ctrl.DocumentCount() > 0 {
		if err := e.ctrl.StartBackgroundRetrain(e.dim); err != nil {
			return err
		}
	}
	for !e.ctrl.StepRetrain() {
	}
	return nil
}

func (e *Embedder) Embed(text string) ([]float32, error) {
	if e.ctrl.VocabSize() > 0 {
		v := e.ctrl.Transform(text)
		if len(v) != e.dim {
			return nil, fmt.Errorf("model dimension %d, expected %d", len(v), e.dim)
		}
		return v, nil
	}
	if e.fallback != nil {
		return e.fallback.Transform(text), nil
	}
	return make([]float32, e.dim), nil
}

func (e *Embedder) AddDocument(text string) error { return e.ctrl.AddDocument(text, e.dim) }

func (e *Embedder) StepRetrain() bool { return e.ctrl.StepRetrain() }

func (e *Embedder) CancelRetrain() { e.ctrl.CancelRetrain() }

func (e *Embedder) IsRetraining() bool { return e.ctrl.IsRetraining() }

func (e *Embedder) RetrainProgress() float32 { return e.ctrl.RetrainProgress() }

// Export serializes the wrapped controller.
func (e *Embedder) Export() (string, error) { return e.ctrl.Export() }
