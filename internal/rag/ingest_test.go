package rag

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"doc-gpt/internal/fetch"
	"doc-gpt/internal/models"
)

func newIngestRAG(t *testing.T, store *fakeMemoryStore, docs *fakeDocStore) (*RAG, string) {
	t.Helper()
	dir := t.TempDir()
	fetcher, err := fetch.New(dir, 1<<20, 5*time.Second)
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}
	return NewRAG(store, docs, &fakeEngine{}, fetcher, nil), dir
}

func TestIngestStoresChunksAndCatalog(t *testing.T) {
	body := strings.Repeat(strings.Repeat("a", 84)+"\n", 72)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/report.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	store := &fakeMemoryStore{}
	docs := &fakeDocStore{}
	r, dir := newIngestRAG(t, store, docs)

	docURL := srv.URL + "/files/report.txt"
	res := r.Ingest(context.Background(), url.QueryEscape(docURL))

	if res.URL != docURL {
		t.Fatalf("url not decoded: %q", res.URL)
	}
	if len(res.MemoryRecords) != 3 {
		t.Fatalf("expected 3 records, got %d", len(res.MemoryRecords))
	}
	wantKeys := []string{"report.txt-1-3", "report.txt-2-3", "report.txt-3-3"}
	for i, rec := range res.MemoryRecords {
		if rec.Key != wantKeys[i] {
			t.Fatalf("record %d key = %q, want %q", i, rec.Key, wantKeys[i])
		}
		if rec.Collection != models.BlobCollection {
			t.Fatalf("record %d in collection %q", i, rec.Collection)
		}
		if rec.Metadata != `{"docID":"report.txt"}` {
			t.Fatalf("record %d metadata %q", i, rec.Metadata)
		}
		if rec.Text == "" {
			t.Fatalf("record %d has no text", i)
		}
	}
	if len(store.saved) != 3 {
		t.Fatalf("expected 3 saved records, got %d", len(store.saved))
	}

	if len(docs.upserts) != 1 {
		t.Fatalf("expected one catalog entry, got %d", len(docs.upserts))
	}
	doc := docs.upserts[0]
	if doc.Collection != models.DocsCollection || doc.Key != "report.txt" || doc.Location != docURL {
		t.Fatalf("unexpected catalog entry %+v", doc)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read scratch dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch file not cleaned up: %d left", len(entries))
	}
}

func TestIngestFetchFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store := &fakeMemoryStore{}
	docs := &fakeDocStore{}
	r, _ := newIngestRAG(t, store, docs)

	res := r.Ingest(context.Background(), url.QueryEscape(srv.URL+"/missing.txt"))
	if res.MemoryRecords == nil || len(res.MemoryRecords) != 0 {
		t.Fatalf("expected empty record list, got %+v", res.MemoryRecords)
	}
	if len(store.saved) != 0 || len(docs.upserts) != 0 {
		t.Fatal("degraded ingest still persisted data")
	}
}

func TestIngestMalformedEncodingDegrades(t *testing.T) {
	store := &fakeMemoryStore{}
	r, _ := newIngestRAG(t, store, &fakeDocStore{})

	res := r.Ingest(context.Background(), "%zz")
	if res.URL != "%zz" {
		t.Fatalf("unexpected url %q", res.URL)
	}
	if len(res.MemoryRecords) != 0 {
		t.Fatalf("expected empty record list, got %+v", res.MemoryRecords)
	}
}

func TestIngestSaveFailureDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("some text to ingest"))
	}))
	defer srv.Close()

	store := &fakeMemoryStore{saveErr: errors.New("store full")}
	docs := &fakeDocStore{}
	r, _ := newIngestRAG(t, store, docs)

	res := r.Ingest(context.Background(), url.QueryEscape(srv.URL+"/note.txt"))
	if len(res.MemoryRecords) != 0 {
		t.Fatalf("expected empty record list, got %+v", res.MemoryRecords)
	}
	if len(docs.upserts) != 0 {
		t.Fatal("catalog updated despite failed save")
	}
}

func TestIngestUnsupportedFormatDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("binary"))
	}))
	defer srv.Close()

	store := &fakeMemoryStore{}
	r, _ := newIngestRAG(t, store, &fakeDocStore{})

	res := r.Ingest(context.Background(), url.QueryEscape(srv.URL+"/blob.xyz"))
	if len(res.MemoryRecords) != 0 {
		t.Fatalf("expected empty record list, got %+v", res.MemoryRecords)
	}
	if len(store.saved) != 0 {
		t.Fatal("degraded ingest still saved records")
	}
}
