package rag

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/rs/zerolog/log"

	"doc-gpt/internal/chunker"
	"doc-gpt/internal/db"
	"doc-gpt/internal/fetch"
	"doc-gpt/internal/metrics"
	"doc-gpt/internal/models"
)

// Ingest downloads the document at rawURL, chunks it and stores the
// chunks as blob memory. Failures never surface as errors, the result
// simply carries no records.
func (r *RAG) Ingest(ctx context.Context, rawURL string) *models.IngestResult {
	docURL, err := url.QueryUnescape(rawURL)
	if err != nil {
		return r.degrade(rawURL, err)
	}

	path, cleanup, err := r.fetcher.Fetch(ctx, docURL)
	if err != nil {
		return r.degrade(docURL, err)
	}
	defer cleanup()

	text, err := r.extract(path)
	if err != nil {
		return r.degrade(docURL, err)
	}

	name := fetch.FileNameFromURL(docURL)
	chunks := chunker.Chunk(text, models.IngestChunkSize)
	if len(chunks) == 0 {
		log.Info().Str("url", docURL).Msg("document has no text")
		return &models.IngestResult{URL: docURL, MemoryRecords: []models.MemoryRecord{}}
	}

	meta, err := json.Marshal(map[string]string{"docID": models.Provenance(name)})
	if err != nil {
		return r.degrade(docURL, err)
	}

	records := make([]models.MemoryRecord, 0, len(chunks))
	for i, chunk := range chunks {
		key := models.ChunkKey{Doc: name, Index: i + 1, Total: len(chunks)}
		rec := models.MemoryRecord{
			Collection: models.BlobCollection,
			Key:        key.String(),
			Text:       chunk,
			Metadata:   string(meta),
		}
		if err := r.store.Save(ctx, rec); err != nil {
			return r.degrade(docURL, err)
		}
		metrics.ChunksPersisted.Inc()
		records = append(records, rec)
	}

	doc := &db.Document{
		Collection:  models.DocsCollection,
		Key:         name,
		Description: name,
		Location:    docURL,
	}
	if err := r.docs.Upsert(ctx, doc); err != nil {
		return r.degrade(docURL, err)
	}

	log.Info().Str("url", docURL).Int("chunks", len(chunks)).Msg("document ingested")
	return &models.IngestResult{URL: docURL, MemoryRecords: records}
}

// degrade reports an ingest failure as an empty result.
func (r *RAG) degrade(docURL string, err error) *models.IngestResult {
	log.Warn().Err(err).Str("url", docURL).Msg("ingest failed")
	metrics.IngestFailures.Inc()
	return &models.IngestResult{URL: docURL, MemoryRecords: []models.MemoryRecord{}}
}
