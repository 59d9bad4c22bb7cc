package domain

// Document represents a single text file loaded into the system.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a semantically meaningful part of a document used for indexing.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float32, error)
}

// IncrementalEmbedder is an Embedder whose model keeps learning from added
// documents. Retraining is cooperative: the host calls StepRetrain until it
// reports done, doing other work in between.
type IncrementalEmbedder interface {
	Embedder
	AddDocument(text string) error
	StepRetrain() (done bool)
	CancelRetrain()
	IsRetraining() bool
	RetrainProgress() float32
}

// Tokenizer splits text into the tokens used for lexical matching.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(dimension int) error
	Upsert(chunks []Chunk, vectors [][]float32) error
	Search(vector []float32, topK int) ([]SearchResult, error)
	Clear() error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// RAGService defines the operations exposed by the application core.
type RAGService interface {
	IngestDocuments(paths []string) (summary string, err error)
	Query(query string, topK int) ([]SearchResult, error)
	AddDocument(text string) error
	StepRetrain() (done bool, err error)
	IsRetraining() bool
	RetrainProgress() float32
	ExportModel(path string) error
}
