package service

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"segembed/internal/domain"
	"segembed/internal/vecmath"
)

// ErrNotIncremental is returned by operations that need a model which learns
// from added documents.
var ErrNotIncremental = errors.New("embedder does not support incremental updates")

type modelExporter interface {
	Export() (string, error)
}

type RAGServiceImpl struct {
	chunker             domain.Chunker
	embedder            domain.Embedder
	store               domain.VectorStore
	summarizer          domain.Summarizer
	tokenizer           domain.Tokenizer
	summaryMaxSentences int
	chunks              []domain.Chunk
	indexed             bool
	logger              *zap.Logger
}

func NewRAGService(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, summarizer domain.Summarizer, tokenizer domain.Tokenizer, summaryMaxSentences int, logger *zap.Logger) *RAGServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RAGServiceImpl{
		chunker:             chunker,
		embedder:            embedder,
		store:               store,
		summarizer:          summarizer,
		tokenizer:           tokenizer,
		summaryMaxSentences: summaryMaxSentences,
		logger:              logger,
	}
}

// IngestDocuments replaces the index with the chunks of every .txt file
// matched by paths and returns a summary of their text.
func (s *RAGServiceImpl) IngestDocuments(paths []string) (string, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return "", err
			}
			documents = append(documents, domain.Document{ID: hashString(m), Path: m, Content: string(data)})
		}
	}
	if len(documents) == 0 {
		return "", fmt.Errorf("no .txt documents found")
	}

	var allChunks []domain.Chunk
	var allTexts []string
	var allTextConcat strings.Builder
	for _, d := range documents {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return "", err
		}
		for _, ch := range chunks {
			allChunks = append(allChunks, ch)
			allTexts = append(allTexts, ch.Text)
		}
		allTextConcat.WriteString("\n")
		allTextConcat.WriteString(d.Content)
	}
	// Keep chunks for reindexing and fallback ranking
	s.chunks = allChunks
	if err := s.embedder.Prepare(allTexts); err != nil {
		return "", err
	}
	if err := s.reindex(); err != nil {
		return "", err
	}
	s.logger.Info("documents ingested",
		zap.Int("documents", len(documents)),
		zap.Int("chunks", len(allChunks)),
		zap.String("embedder", s.embedder.Name()))

	return s.summarizer.Summarize(allTextConcat.String(), s.summaryMaxSentences)
}

// AddDocument chunks text, feeds each chunk to the incremental model and
// indexes the chunks with the current model.
func (s *RAGServiceImpl) AddDocument(text string) error {
	inc, ok := s.embedder.(domain.IncrementalEmbedder)
	if !ok {
		return ErrNotIncremental
	}
	doc := domain.Document{ID: hashString(text), Content: text}
	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	for _, ch := range chunks {
		if err := inc.AddDocument(ch.Text); err != nil {
			return err
		}
	}
	s.chunks = append(s.chunks, chunks...)
	if !s.indexed {
		return s.reindex()
	}
	vectors, err := s.embedAll(chunks)
	if err != nil {
		return err
	}
	s.logger.Debug("document added", zap.Int("chunks", len(chunks)), zap.Bool("retraining", inc.IsRetraining()))
	return s.store.Upsert(chunks, vectors)
}

// StepRetrain advances an in-flight retrain by one phase. When the retrain
// completes every chunk is re-embedded with the new model.
func (s *RAGServiceImpl) StepRetrain() (bool, error) {
	inc, ok := s.embedder.(domain.IncrementalEmbedder)
	if !ok || !inc.IsRetraining() {
		return true, nil
	}
	if !inc.StepRetrain() {
		return false, nil
	}
	if err := s.reindex(); err != nil {
		return true, fmt.Errorf("reindex after retrain: %w", err)
	}
	s.logger.Info("index rebuilt after retrain", zap.Int("chunks", len(s.chunks)))
	return true, nil
}

func (s *RAGServiceImpl) IsRetraining() bool {
	inc, ok := s.embedder.(domain.IncrementalEmbedder)
	return ok && inc.IsRetraining()
}

func (s *RAGServiceImpl) RetrainProgress() float32 {
	if inc, ok := s.embedder.(domain.IncrementalEmbedder); ok {
		return inc.RetrainProgress()
	}
	return 0
}

// ExportModel writes the embedder's model as JSON to path.
func (s *RAGServiceImpl) ExportModel(path string) error {
	exp, ok := s.embedder.(modelExporter)
	if !ok {
		return ErrNotIncremental
	}
	data, err := exp.Export()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		return err
	}
	s.logger.Info("model exported", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func (s *RAGServiceImpl) Query(query string, topK int) ([]domain.SearchResult, error) {
	vec, err := s.embedder.Embed(query)
	if err != nil {
		return nil, err
	}
	if vecmath.IsZero(vec) || !s.indexed {
		return s.lexicalSearch(query, topK), nil
	}
	res, err := s.store.Search(vec, topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return s.lexicalSearch(query, topK), nil
	}
	return res, nil
}

func (s *RAGServiceImpl) reindex() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	if err := s.store.Init(s.embedder.Dimension()); err != nil {
		return err
	}
	vectors, err := s.embedAll(s.chunks)
	if err != nil {
		return err
	}
	if err := s.store.Upsert(s.chunks, vectors); err != nil {
		return err
	}
	s.indexed = true
	return nil
}

func (s *RAGServiceImpl) embedAll(chunks []domain.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))
	for i := range chunks {
		vec, err := s.embedder.Embed(chunks[i].Text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (s *RAGServiceImpl) lexicalSearch(query string, topK int) []domain.SearchResult {
	qset := s.tokenSet(query)
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(s.chunks))
	for i, ch := range s.chunks {
		scores[i] = pair{i, overlapOchiai(qset, s.tokenSet(ch.Text))}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK <= 0 {
		topK = 5
	}
	topK = min(topK, len(scores))
	out := make([]domain.SearchResult, 0, topK)
	for _, p := range scores[:topK] {
		out = append(out, domain.SearchResult{Chunk: s.chunks[p.idx], Score: p.score})
	}
	return out
}

func (s *RAGServiceImpl) tokenSet(text string) map[string]struct{} {
	tokens := s.tokenizer.Tokenize(strings.ToLower(text))
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai is |A∩B| / sqrt(|A||B|).
func overlapOchiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
