// Package embedding builds the configured domain.Embedder.
package embedding

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"segembed/internal/config"
	"segembed/internal/domain"
	"segembed/internal/embedding/incremental"
	"segembed/internal/embedding/openai"
	"segembed/internal/embedding/stablehash"
	"segembed/internal/embedding/tfidf"
	"segembed/internal/tokenizer"
)

// New returns the embedder selected by cfg.Embedder.Type together with the
// tokenizer that lexical matching should share with it. An incremental
// embedder is restored from cfg.Model.ImportPath when that file exists.
func New(cfg *config.AppConfig, logger *zap.Logger) (domain.Embedder, *tokenizer.Tokenizer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Embedder.Type {
	case "incremental":
		ic := cfg.Embedder.Incremental
		if ic == nil {
			return nil, nil, errors.New("embedder.incremental section is required")
		}
		ctrl, err := loadController(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		var fallback *stablehash.Embedder
		if ic.HashFallback {
			fb := stablehash.New(ic.Dimension, 2)
			fallback = &fb
		}
		return incremental.NewEmbedder(ctrl, ic.Dimension, fallback), ctrl.Tokenizer(), nil

	case "stablehash":
		sh := cfg.Embedder.StableHash
		if sh == nil {
			return nil, nil, errors.New("embedder.stablehash section is required")
		}
		return stablehash.NewWithSeed(sh.Dimension, sh.NgramSize, sh.Seed), cfg.Tokenizer.Build(), nil

	case "openai":
		oc := cfg.Embedder.OpenAI
		if oc == nil {
			return nil, nil, errors.New("embedder.openai section is required")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   oc.BaseURL,
			APIKeyEnv: oc.APIKeyEnv,
			Model:     oc.Model,
			Timeout:   time.Duration(oc.TimeoutSecs) * time.Second,
			Logger:    logger.Named("openai"),
		})
		if err != nil {
			return nil, nil, err
		}
		return client, cfg.Tokenizer.Build(), nil

	default:
		return nil, nil, fmt.Errorf("unknown embedder type %q", cfg.Embedder.Type)
	}
}

func loadController(cfg *config.AppConfig, logger *zap.Logger) (*incremental.Controller, error) {
	logger = logger.Named("incremental")
	if path := cfg.Model.ImportPath; path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			ctrl, err := incremental.Import(string(data), incremental.WithLogger(logger))
			if err != nil {
				return nil, fmt.Errorf("import %s: %w", path, err)
			}
			logger.Info("model restored", zap.String("path", path), zap.Int("documents", ctrl.DocumentCount()))
			return ctrl, nil
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}
	ic := cfg.Embedder.Incremental
	return incremental.New(ic.UpdateThreshold,
		incremental.WithTokenizer(cfg.Tokenizer.Build()),
		incremental.WithReduction(tfidf.Strategy(ic.Reduction)),
		incremental.WithEmbeddingDim(ic.Dimension),
		incremental.WithLogger(logger),
	), nil
}
