package db

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "docs.db"), false)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestUpsertInsertsAndUpdates(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	doc := &Document{Collection: "docs", Key: "report.pdf", Description: "report.pdf", Location: "https://example.com/report.pdf"}
	if err := store.Upsert(ctx, doc); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	doc.Location = "https://example.com/v2/report.pdf"
	if err := store.Upsert(ctx, doc); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := store.Get(ctx, "docs", "report.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Location != "https://example.com/v2/report.pdf" {
		t.Fatalf("unexpected document %+v", got)
	}

	docs, err := store.List(ctx, "docs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("upsert duplicated the row: %d rows", len(docs))
	}
}

func TestGetAbsentDocument(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Get(context.Background(), "docs", "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestListOrdersByKey(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, key := range []string{"c.pdf", "a.pdf", "b.pdf"} {
		if err := store.Upsert(ctx, &Document{Collection: "docs", Key: key, Description: key, Location: key}); err != nil {
			t.Fatalf("upsert %s: %v", key, err)
		}
	}
	if err := store.Upsert(ctx, &Document{Collection: "other", Key: "x.pdf", Description: "x.pdf", Location: "x.pdf"}); err != nil {
		t.Fatalf("upsert other collection: %v", err)
	}

	docs, err := store.List(ctx, "docs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	for i, want := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		if docs[i].Key != want {
			t.Fatalf("unexpected order at %d: %+v", i, docs)
		}
	}
}

func TestDeleteReportsPresence(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	deleted, err := store.Delete(ctx, "docs", "nope")
	if err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	if deleted {
		t.Fatal("absent document reported as deleted")
	}

	if err := store.Upsert(ctx, &Document{Collection: "docs", Key: "a.pdf", Description: "a.pdf", Location: "a.pdf"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	deleted, err = store.Delete(ctx, "docs", "a.pdf")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Fatal("present document not reported as deleted")
	}

	got, err := store.Get(ctx, "docs", "a.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("document still present: %+v", got)
	}
}
