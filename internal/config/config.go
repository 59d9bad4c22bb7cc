package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"segembed/internal/tokenizer"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// IncrementalEmbedderConfig configures the locally trained TF-IDF embedder.
type IncrementalEmbedderConfig struct {
	Dimension       int     `yaml:"dimension"`
	UpdateThreshold float64 `yaml:"update_threshold"`
	// Reduction is "svd" or "power".
	Reduction string `yaml:"reduction"`
	// HashFallback serves stable hash vectors until the first retrain.
	HashFallback bool `yaml:"hash_fallback"`
}

// StableHashConfig configures the training-free hash embedder.
type StableHashConfig struct {
	Dimension int    `yaml:"dimension"`
	NgramSize int    `yaml:"ngram_size"`
	Seed      uint64 `yaml:"seed"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type        string                     `yaml:"type"`
	Incremental *IncrementalEmbedderConfig `yaml:"incremental,omitempty"`
	StableHash  *StableHashConfig          `yaml:"stablehash,omitempty"`
	OpenAI      *OpenAIEmbedderConfig      `yaml:"openai,omitempty"`
}

// TokenizerConfig mirrors tokenizer.Options plus stop word and dictionary
// customisation.
type TokenizerConfig struct {
	MinNgram         int                         `yaml:"min_ngram"`
	MaxNgram         int                         `yaml:"max_ngram"`
	MinDocFreq       int                         `yaml:"min_doc_freq"`
	MaxDocFreqRatio  float64                     `yaml:"max_doc_freq_ratio"`
	MaxVocabSize     int                         `yaml:"max_vocab_size"`
	StopWordsEnabled bool                        `yaml:"stop_words_enabled"`
	NormalizeNFKC    bool                        `yaml:"normalize_nfkc"`
	ExtraStopWords   []string                    `yaml:"extra_stop_words,omitempty"`
	UserDictionary   []tokenizer.DictionaryEntry `yaml:"user_dictionary,omitempty"`
}

// Options converts the config into tokenizer options.
func (c TokenizerConfig) Options() tokenizer.Options {
	return tokenizer.Options{
		MinNgram:         c.MinNgram,
		MaxNgram:         c.MaxNgram,
		MinDocFreq:       c.MinDocFreq,
		MaxDocFreqRatio:  c.MaxDocFreqRatio,
		MaxVocabSize:     c.MaxVocabSize,
		StopWordsEnabled: c.StopWordsEnabled,
		NormalizeNFKC:    c.NormalizeNFKC,
	}
}

// Build returns a tokenizer configured from c.
func (c TokenizerConfig) Build() *tokenizer.Tokenizer {
	tok := tokenizer.NewWithOptions(c.Options())
	for _, w := range c.ExtraStopWords {
		tok.AddStopWord(w)
	}
	if len(c.UserDictionary) > 0 {
		tok.SetUserDictionary(c.UserDictionary)
	}
	return tok
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	Distance    string `yaml:"distance"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// Console writes to stderr; keep it off while the TUI owns the terminal.
	Console    bool   `yaml:"console"`
	JSON       bool   `yaml:"json"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// ModelConfig points at exported model files.
type ModelConfig struct {
	ImportPath string `yaml:"import_path,omitempty"`
	ExportPath string `yaml:"export_path,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Tokenizer   TokenizerConfig   `yaml:"tokenizer"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Logging     LoggingConfig     `yaml:"logging"`
	Model       ModelConfig       `yaml:"model"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/segembed/config.yaml.
// If neither exists, it writes defaults to ~/.config/segembed/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects settings no component can honour.
func (c *AppConfig) Validate() error {
	t := c.Tokenizer
	if t.MinNgram < 1 || t.MaxNgram < t.MinNgram {
		return fmt.Errorf("tokenizer: invalid n-gram range [%d, %d]", t.MinNgram, t.MaxNgram)
	}
	if t.MaxDocFreqRatio <= 0 || t.MaxDocFreqRatio > 1 {
		return fmt.Errorf("tokenizer: max_doc_freq_ratio %v outside (0, 1]", t.MaxDocFreqRatio)
	}
	if t.MinDocFreq < 1 {
		return fmt.Errorf("tokenizer: min_doc_freq %d must be at least 1", t.MinDocFreq)
	}
	if t.MaxVocabSize <= 0 {
		return fmt.Errorf("tokenizer: max_vocab_size %d must be positive", t.MaxVocabSize)
	}
	switch c.Embedder.Type {
	case "incremental":
		inc := c.Embedder.Incremental
		if inc == nil || inc.Dimension <= 0 {
			return errors.New("embedder.incremental: dimension must be positive")
		}
		if inc.Reduction != "svd" && inc.Reduction != "power" {
			return fmt.Errorf("embedder.incremental: unknown reduction %q", inc.Reduction)
		}
	case "stablehash":
		if sh := c.Embedder.StableHash; sh == nil || sh.Dimension <= 0 {
			return errors.New("embedder.stablehash: dimension must be positive")
		}
	case "openai":
		if c.Embedder.OpenAI == nil {
			return errors.New("embedder.openai: missing section")
		}
	default:
		return fmt.Errorf("embedder: unknown type %q", c.Embedder.Type)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant == nil || c.VectorStore.Qdrant.URL == "" {
			return errors.New("vector_store.qdrant: url is required")
		}
	default:
		return fmt.Errorf("vector_store: unknown type %q", c.VectorStore.Type)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "segembed", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	opts := tokenizer.DefaultOptions()
	cfg := &AppConfig{
		Embedder: EmbedderConfig{
			Type: "incremental",
			Incremental: &IncrementalEmbedderConfig{
				Dimension:       64,
				UpdateThreshold: 0.3,
				Reduction:       "svd",
				HashFallback:    true,
			},
		},
		Tokenizer: TokenizerConfig{
			MinNgram:         opts.MinNgram,
			MaxNgram:         opts.MaxNgram,
			MinDocFreq:       opts.MinDocFreq,
			MaxDocFreqRatio:  opts.MaxDocFreqRatio,
			MaxVocabSize:     opts.MaxVocabSize,
			StopWordsEnabled: opts.StopWordsEnabled,
			NormalizeNFKC:    opts.NormalizeNFKC,
		},
		Chunker:     ChunkerConfig{Type: "sentence", SentencesPerChunk: 5, OverlapSentences: 1},
		VectorStore: VectorStoreConfig{Type: "memory"},
		Summarizer:  SummarizerConfig{Type: "frequency", MaxSentences: 5},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "segembed.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	switch cfg.Embedder.Type {
	case "incremental":
		if cfg.Embedder.Incremental == nil {
			cfg.Embedder.Incremental = &IncrementalEmbedderConfig{HashFallback: true}
		}
		inc := cfg.Embedder.Incremental
		if inc.Dimension == 0 {
			inc.Dimension = 64
		}
		if inc.UpdateThreshold == 0 {
			inc.UpdateThreshold = 0.3
		}
		if inc.Reduction == "" {
			inc.Reduction = "svd"
		}
	case "stablehash":
		if cfg.Embedder.StableHash == nil {
			cfg.Embedder.StableHash = &StableHashConfig{}
		}
		sh := cfg.Embedder.StableHash
		if sh.Dimension == 0 {
			sh.Dimension = 64
		}
		if sh.NgramSize == 0 {
			sh.NgramSize = 2
		}
		if sh.Seed == 0 {
			sh.Seed = 42
		}
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		q := cfg.VectorStore.Qdrant
		if q.Collection == "" {
			q.Collection = "segembed"
		}
		if q.Distance == "" {
			q.Distance = "Cosine"
		}
		if q.TimeoutSecs == 0 {
			q.TimeoutSecs = 10
		}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
