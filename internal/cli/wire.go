package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"doc-gpt/internal/config"
	"doc-gpt/internal/db"
	"doc-gpt/internal/embedding"
	"doc-gpt/internal/fetch"
	"doc-gpt/internal/llmservice"
	"doc-gpt/internal/memstore"
	"doc-gpt/internal/rag"
)

// service bundles everything a command needs after wiring.
type service struct {
	cfg    *config.Config
	memory *memstore.Store
	docs   *db.Store
	engine *llmservice.Client
	rag    *rag.RAG
}

func buildService(ctx context.Context) (*service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	embedder, err := embedding.NewEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	embedFunc := embedding.CachedFunc(
		embedding.Func(embedder),
		time.Duration(cfg.Embedding.CacheTTLMinutes)*time.Minute,
		time.Duration(cfg.Embedding.CacheSweepMinutes)*time.Minute,
	)

	memory, err := memstore.New(cfg.Storage.VectorDir, false, embedFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}
	docs, err := db.New(ctx, cfg.Storage.DatabasePath, cfg.Debug || debug)
	if err != nil {
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	engine, err := llmservice.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	fetcher, err := fetch.New(cfg.Scratch.Dir, cfg.Scratch.MaxFetchBytes, time.Duration(cfg.Provider.TimeoutSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare scratch dir: %w", err)
	}

	return &service{
		cfg:    cfg,
		memory: memory,
		docs:   docs,
		engine: engine,
		rag:    rag.NewRAG(memory, docs, engine, fetcher, nil),
	}, nil
}

func (s *service) close() {
	if err := s.docs.Close(); err != nil {
		log.Warn().Err(err).Msg("Error closing document store")
	}
}
