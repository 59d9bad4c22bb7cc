// Package vectorstore selects a domain.VectorStore from configuration.
package vectorstore

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"segembed/internal/config"
	"segembed/internal/domain"
	"segembed/internal/vectorstore/memory"
	"segembed/internal/vectorstore/qdrant"
)

// New builds the store named by cfg.Type. The Qdrant API key may be given
// inline or as "$ENV_NAME".
func New(cfg config.VectorStoreConfig, logger *zap.Logger) (domain.VectorStore, error) {
	switch cfg.Type {
	case "", "memory":
		return memory.NewStorage(), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("vector_store.qdrant section is required")
		}
		q := cfg.Qdrant
		apiKey := q.APIKey
		if len(apiKey) > 1 && apiKey[0] == '$' {
			apiKey = os.Getenv(apiKey[1:])
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        q.URL,
			APIKey:     apiKey,
			Collection: q.Collection,
			Distance:   q.Distance,
			Timeout:    time.Duration(q.TimeoutSecs) * time.Second,
			Logger:     logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store type %q", cfg.Type)
	}
}
