// Package db is the document catalog, backed by an embedded sqlite
// database.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite"
)

// Document is one catalog row describing an ingested document.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	Collection  string `bun:"collection,pk" json:"collection"`
	Key         string `bun:"key,pk" json:"key"`
	Description string `bun:"description" json:"description"`
	Location    string `bun:"location" json:"location"`
}

// Store provides access to the document catalog.
type Store struct {
	db *bun.DB
}

// New opens the catalog database at path, creating the schema when
// missing.
func New(ctx context.Context, path string, debug bool) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	store := &Store{db: db}
	if err := store.init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*Document)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

// Upsert inserts doc, replacing description and location when the
// document already exists.
func (s *Store) Upsert(ctx context.Context, doc *Document) error {
	_, err := s.db.NewInsert().
		Model(doc).
		On(`CONFLICT (collection, "key") DO UPDATE`).
		Set("description = EXCLUDED.description").
		Set("location = EXCLUDED.location").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", doc.Key, err)
	}
	return nil
}

// Get returns the document under collection and key, or nil when it is
// absent.
func (s *Store) Get(ctx context.Context, collection, key string) (*Document, error) {
	doc := new(Document)
	err := s.db.NewSelect().
		Model(doc).
		Where("collection = ?", collection).
		Where(`"key" = ?`, key).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", key, err)
	}
	return doc, nil
}

// List returns every document in collection ordered by key.
func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	var docs []Document
	err := s.db.NewSelect().
		Model(&docs).
		Where("collection = ?", collection).
		Order("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

// Delete removes the document row and reports whether one was present.
func (s *Store) Delete(ctx context.Context, collection, key string) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*Document)(nil)).
		Where("collection = ?", collection).
		Where(`"key" = ?`, key).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
