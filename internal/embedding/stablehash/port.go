package stablehash

// Name returns the identifier of this embedder implementation.
func (e Embedder) Name() string { return "stablehash" }

// Prepare is a no-op: the embedder needs no corpus.
func (e Embedder) Prepare(corpus []string) error { return nil }

// Embed returns Transform(text); it never fails.
func (e Embedder) Embed(text string) ([]float32, error) { return e.Transform(text), nil }
