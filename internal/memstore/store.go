// Package memstore persists memory records in an embedded vector database.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"sort"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"doc-gpt/internal/metrics"
	"doc-gpt/internal/models"
)

// Store keeps one vector collection per memory collection name.
type Store struct {
	db    *chromem.DB
	embed chromem.EmbeddingFunc
}

// New opens the vector database under dir, or an in-memory one when
// inMemory is set.
func New(dir string, inMemory bool, embed chromem.EmbeddingFunc) (*Store, error) {
	if inMemory {
		return &Store{db: chromem.NewDB(), embed: embed}, nil
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}
	return &Store{db: db, embed: embed}, nil
}

func (s *Store) collection(name string) (*chromem.Collection, error) {
	col, err := s.db.GetOrCreateCollection(name, nil, s.embed)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}
	return col, nil
}

// Save stores one record. An existing record under the same key is
// replaced. A record saved without metadata gets the leading segment of
// its key attached as docID, so provenance stays queryable.
func (s *Store) Save(ctx context.Context, rec models.MemoryRecord) error {
	col, err := s.collection(rec.Collection)
	if err != nil {
		return err
	}
	// no update in chromem, replace by delete then add
	if err := col.Delete(ctx, nil, nil, rec.Key); err != nil {
		return fmt.Errorf("failed to replace record %s: %w", rec.Key, err)
	}
	meta := metadataMap(rec.Metadata)
	if meta == nil {
		meta = map[string]string{"docID": models.Provenance(rec.Key)}
	}
	doc := chromem.Document{ID: rec.Key, Content: rec.Text, Metadata: meta}
	if err := col.AddDocuments(ctx, []chromem.Document{doc}, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to store record %s: %w", rec.Key, err)
	}
	return nil
}

// metadataMap turns the record's JSON metadata string into the map the
// store expects. A string that is not a flat object is kept whole.
func metadataMap(meta string) map[string]string {
	if meta == "" {
		return nil
	}
	m := map[string]string{}
	if err := json.Unmarshal([]byte(meta), &m); err != nil {
		return map[string]string{"meta": meta}
	}
	return m
}

// Get returns the stored text for key, or the empty string when the key
// is absent.
func (s *Store) Get(ctx context.Context, collection, key string) (string, error) {
	col, err := s.collection(collection)
	if err != nil {
		return "", err
	}
	doc, err := col.GetByID(ctx, key)
	if err != nil {
		// absent key
		return "", nil
	}
	return doc.Content, nil
}

// Delete removes key from collection. It reports false when the store
// rejected the delete.
func (s *Store) Delete(ctx context.Context, collection, key string) bool {
	col, err := s.collection(collection)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("failed to open collection for delete")
		metrics.MemoryDeleteFailures.Inc()
		return false
	}
	if err := col.Delete(ctx, nil, nil, key); err != nil {
		log.Error().Err(err).Str("collection", collection).Str("key", key).Msg("failed to delete record")
		metrics.MemoryDeleteFailures.Inc()
		return false
	}
	return true
}

// Search returns up to limit records scoring at or above minScore,
// ordered by score descending, then key ascending. Zero matches is not
// an error.
func (s *Store) Search(ctx context.Context, collection, query string, limit int, minScore float32) ([]models.SearchMatch, error) {
	col, err := s.collection(collection)
	if err != nil {
		return nil, err
	}

	// the store rejects result counts above the collection size
	n := limit
	if count := col.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := col.Query(ctx, query, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", collection, err)
	}

	matches := make([]models.SearchMatch, 0, len(results))
	for _, r := range results {
		if r.Similarity < minScore {
			continue
		}
		matches = append(matches, models.SearchMatch{Key: r.ID, Text: r.Content, Score: r.Similarity})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Key < matches[j].Key
	})
	return matches, nil
}

// Export writes the database to path. Collections narrows the export
// when non-empty.
func (s *Store) Export(path string, compress bool, encryptionKey string, collections ...string) error {
	if err := s.db.ExportToFile(path, compress, encryptionKey, collections...); err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}
	return nil
}

// Import loads records previously written by Export into the store.
func (s *Store) Import(path string, encryptionKey string, collections ...string) error {
	if err := s.db.ImportFromFile(path, encryptionKey, collections...); err != nil {
		return fmt.Errorf("failed to import database: %w", err)
	}
	return nil
}
