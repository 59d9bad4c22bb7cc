package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"segembed/internal/config"
	"segembed/internal/vectorstore/memory"
	"segembed/internal/vectorstore/qdrant"
)

func TestNew(t *testing.T) {
	s, err := New(config.VectorStoreConfig{Type: "memory"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Storage{}, s)

	t.Setenv("QDRANT_KEY", "k")
	s, err = New(config.VectorStoreConfig{
		Type:   "qdrant",
		Qdrant: &config.QdrantConfig{URL: "http://localhost:6333", APIKey: "$QDRANT_KEY", Collection: "c"},
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &qdrant.Storage{}, s)

	_, err = New(config.VectorStoreConfig{Type: "qdrant"}, nil)
	assert.Error(t, err)
	_, err = New(config.VectorStoreConfig{Type: "faiss"}, nil)
	assert.Error(t, err)
}
