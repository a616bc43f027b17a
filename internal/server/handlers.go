package server

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"doc-gpt/internal/db"
	"doc-gpt/internal/models"
	"doc-gpt/internal/rag"
)

// Handlers carries the service dependencies of the HTTP surface.
type Handlers struct {
	RAG    *rag.RAG
	Memory rag.MemoryStore
	Docs   *db.Store

	// StoreTimeout bounds store-only requests, PipelineTimeout bounds
	// requests that reach the model provider.
	StoreTimeout    time.Duration
	PipelineTimeout time.Duration
}

func (h *Handlers) storeContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.StoreTimeout)
}

func (h *Handlers) pipelineContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), h.PipelineTimeout)
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"code": "bad_request", "message": err.Error()})
}

// pathParam returns the decoded path parameter. Paths are routed in
// their escaped form.
func pathParam(c *fiber.Ctx, name string) string {
	v := c.Params(name)
	if dec, err := url.PathUnescape(v); err == nil {
		return dec
	}
	return v
}

// Health reports liveness.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "docgpt",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Query answers a question with memory retrieved from a collection.
func (h *Handlers) Query(c *fiber.Ctx) error {
	var req models.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := h.pipelineContext(c)
	defer cancel()

	res, err := h.RAG.Query(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Summarize runs the chunk-wise summarization pipeline.
func (h *Handlers) Summarize(c *fiber.Ctx) error {
	var req models.SummarizeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}

	ctx, cancel := h.pipelineContext(c)
	defer cancel()

	res, err := h.RAG.Summarize(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// Ingest downloads and indexes the document named by the wildcard. The
// wildcard is passed along still URL-encoded, the pipeline decodes it.
func (h *Handlers) Ingest(c *fiber.Ctx) error {
	ctx, cancel := h.pipelineContext(c)
	defer cancel()

	return c.JSON(h.RAG.Ingest(ctx, c.Params("*")))
}

// GetMemory returns one stored memory record.
func (h *Handlers) GetMemory(c *fiber.Ctx) error {
	collection := pathParam(c, "collection")
	key := pathParam(c, "id")

	ctx, cancel := h.storeContext(c)
	defer cancel()

	text, err := h.Memory.Get(ctx, collection, key)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("%w: no memory under %s/%s", models.ErrNotFound, collection, key)
	}
	return c.JSON(models.MemoryRecord{Collection: collection, Key: key, Text: text})
}

// SaveMemory stores one memory record.
func (h *Handlers) SaveMemory(c *fiber.Ctx) error {
	var rec models.MemoryRecord
	if err := c.BodyParser(&rec); err != nil {
		return badRequest(c, err)
	}
	if err := validateRecord(rec, true); err != nil {
		return err
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.Memory.Save(ctx, rec); err != nil {
		return err
	}
	return c.JSON(rec)
}

// DeleteMemory removes one memory record.
func (h *Handlers) DeleteMemory(c *fiber.Ctx) error {
	var rec models.MemoryRecord
	if err := c.BodyParser(&rec); err != nil {
		return badRequest(c, err)
	}
	if err := validateRecord(rec, false); err != nil {
		return err
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	if !h.Memory.Delete(ctx, rec.Collection, rec.Key) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    "delete_failed",
			"message": fmt.Sprintf("failed to delete %s/%s", rec.Collection, rec.Key),
		})
	}
	return c.JSON(rec)
}

// ListDocuments returns the catalog entries of one collection.
func (h *Handlers) ListDocuments(c *fiber.Ctx) error {
	collection := pathParam(c, "collection")

	ctx, cancel := h.storeContext(c)
	defer cancel()

	docs, err := h.Docs.List(ctx, collection)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("%w: no documents in %s", models.ErrNotFound, collection)
	}
	return c.JSON(docs)
}

// GetDocument returns one catalog entry.
func (h *Handlers) GetDocument(c *fiber.Ctx) error {
	collection := pathParam(c, "collection")
	key := pathParam(c, "key")

	ctx, cancel := h.storeContext(c)
	defer cancel()

	doc, err := h.Docs.Get(ctx, collection, key)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("%w: no document %s/%s", models.ErrNotFound, collection, key)
	}
	return c.JSON(doc)
}

// UpsertDocument creates or updates a catalog entry.
func (h *Handlers) UpsertDocument(c *fiber.Ctx) error {
	var doc db.Document
	if err := c.BodyParser(&doc); err != nil {
		return badRequest(c, err)
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	ctx, cancel := h.storeContext(c)
	defer cancel()

	if err := h.Docs.Upsert(ctx, &doc); err != nil {
		return err
	}
	c.Set("Location", fmt.Sprintf("/doc/%s/%s", url.PathEscape(doc.Collection), url.PathEscape(doc.Key)))
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// DeleteDocument removes one catalog entry.
func (h *Handlers) DeleteDocument(c *fiber.Ctx) error {
	collection := pathParam(c, "collection")
	key := pathParam(c, "key")

	ctx, cancel := h.storeContext(c)
	defer cancel()

	deleted, err := h.Docs.Delete(ctx, collection, key)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: no document %s/%s", models.ErrNotFound, collection, key)
	}
	return c.JSON(fiber.Map{"collection": collection, "key": key})
}

func validateRecord(rec models.MemoryRecord, needText bool) error {
	if strings.TrimSpace(rec.Collection) == "" {
		return fmt.Errorf("%w: collection must not be empty", models.ErrValidation)
	}
	if strings.TrimSpace(rec.Key) == "" {
		return fmt.Errorf("%w: key must not be empty", models.ErrValidation)
	}
	if needText && strings.TrimSpace(rec.Text) == "" {
		return fmt.Errorf("%w: text must not be empty", models.ErrValidation)
	}
	return nil
}

func validateDocument(doc db.Document) error {
	if strings.TrimSpace(doc.Collection) == "" {
		return fmt.Errorf("%w: collection must not be empty", models.ErrValidation)
	}
	if strings.TrimSpace(doc.Key) == "" {
		return fmt.Errorf("%w: key must not be empty", models.ErrValidation)
	}
	return nil
}
