// Package rag implements the query, summarize and ingest pipelines on
// top of the memory store, the document catalog and the model provider.
package rag

import (
	"context"
	"fmt"
	"strings"

	"doc-gpt/internal/db"
	"doc-gpt/internal/llmservice"
	"doc-gpt/internal/models"
	"doc-gpt/internal/parser"
)

// MemoryStore is the vector store surface the pipelines use.
type MemoryStore interface {
	Save(ctx context.Context, rec models.MemoryRecord) error
	Get(ctx context.Context, collection, key string) (string, error)
	Delete(ctx context.Context, collection, key string) bool
	Search(ctx context.Context, collection, query string, limit int, minScore float32) ([]models.SearchMatch, error)
}

// DocumentStore is the catalog surface the ingest pipeline uses.
type DocumentStore interface {
	Upsert(ctx context.Context, doc *db.Document) error
}

// Fetcher downloads a remote document and returns its local path plus a
// cleanup function.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, func(), error)
}

// ExtractFunc turns a local document file into plain text.
type ExtractFunc func(path string) (string, error)

// RAG wires the pipelines to their dependencies.
type RAG struct {
	store   MemoryStore
	docs    DocumentStore
	engine  llmservice.Engine
	fetcher Fetcher
	extract ExtractFunc
}

// NewRAG builds the pipeline service. A nil extract falls back to the
// file parser.
func NewRAG(store MemoryStore, docs DocumentStore, engine llmservice.Engine, fetcher Fetcher, extract ExtractFunc) *RAG {
	if extract == nil {
		extract = parser.Extract
	}
	return &RAG{store: store, docs: docs, engine: engine, fetcher: fetcher, extract: extract}
}

// Query answers the request with memory retrieved from the collection.
// An empty retrieval still completes, with an empty context block.
func (r *RAG) Query(ctx context.Context, req models.QueryRequest) (*models.Completion, error) {
	if err := validateQuery(req); err != nil {
		return nil, err
	}
	req.ApplyDefaults()

	matches, err := r.store.Search(ctx, req.Collection, req.Query, req.Limit, float32(req.MinRelevanceScore))
	if err != nil {
		return nil, fmt.Errorf("failed to search memory: %w", err)
	}

	var data strings.Builder
	for _, m := range matches {
		data.WriteString(m.Text + "\n\n")
	}

	result, err := r.engine.Complete(ctx, llmservice.CompletionRequest{
		Template: models.QueryPromptTemplate,
		Variables: map[string]string{
			"data":  data.String(),
			"input": req.Query,
		},
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete query: %w", err)
	}

	return &models.Completion{Query: req.Query, Text: result.Text, Usage: result.Usage}, nil
}

func validateQuery(req models.QueryRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return fmt.Errorf("%w: query must not be empty", models.ErrValidation)
	}
	if strings.TrimSpace(req.Collection) == "" {
		return fmt.Errorf("%w: collection must not be empty", models.ErrValidation)
	}
	if req.MaxTokens < 0 || req.Limit < 0 {
		return fmt.Errorf("%w: maxTokens and limit must not be negative", models.ErrValidation)
	}
	if req.MinRelevanceScore < 0 || req.MinRelevanceScore > 1 {
		return fmt.Errorf("%w: minRelevanceScore must be within [0, 1]", models.ErrValidation)
	}
	return nil
}
