// Package embedding builds the text embedding function used by the vector store.
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/philippgille/chromem-go"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"doc-gpt/internal/config"
)

// NewEmbedder creates the embedding client for the configured provider.
func NewEmbedder(cfg *config.Config) (*embeddings.EmbedderImpl, error) {
	var (
		client embeddings.EmbedderClient
		err    error
	)
	switch cfg.Provider.Type {
	case config.ProviderOllama:
		client, err = ollama.New(
			ollama.WithServerURL(cfg.Provider.Endpoint),
			ollama.WithModel(cfg.Provider.EmbeddingDeployment),
		)
	case config.ProviderAzure:
		client, err = openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(cfg.Provider.APIVersion),
			openai.WithBaseURL(cfg.Provider.Endpoint),
			openai.WithToken(strings.TrimPrefix(cfg.Provider.APIKey, "Bearer ")),
			openai.WithEmbeddingModel(cfg.Provider.EmbeddingDeployment),
		)
	default:
		client, err = openai.New(
			openai.WithBaseURL(cfg.Provider.Endpoint),
			openai.WithToken(strings.TrimPrefix(cfg.Provider.APIKey, "Bearer ")),
			openai.WithEmbeddingModel(cfg.Provider.EmbeddingDeployment),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

// Func adapts an embedder to the function signature the vector store expects.
func Func(embedder *embeddings.EmbedderImpl) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		return embedder.EmbedQuery(ctx, text)
	}
}

// CachedFunc wraps fn with an in-memory TTL cache so repeated texts are
// embedded once. Errors are never cached.
func CachedFunc(fn chromem.EmbeddingFunc, ttl, sweep time.Duration) chromem.EmbeddingFunc {
	store := cache.New(ttl, sweep)
	return func(ctx context.Context, text string) ([]float32, error) {
		sum := sha256.Sum256([]byte(text))
		key := hex.EncodeToString(sum[:])
		if v, ok := store.Get(key); ok {
			return v.([]float32), nil
		}
		vec, err := fn(ctx, text)
		if err != nil {
			return nil, err
		}
		store.Set(key, vec, cache.DefaultExpiration)
		return vec, nil
	}
}
