// Package server assembles the HTTP surface of the service.
package server

import (
	"errors"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"doc-gpt/internal/config"
	"doc-gpt/internal/models"
)

// New builds the fiber application with every route registered. Paths
// stay escaped so the ingest wildcard reaches the pipeline in its raw
// form.
func New(cfg *config.Config, h *Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "docgpt",
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prom := fiberprometheus.New("docgpt")
	prom.RegisterAt(app, "/metrics")
	app.Use(prom.Middleware)

	registerRoutes(app, h)
	return app
}

func registerRoutes(app *fiber.App, h *Handlers) {
	app.Get("/health", h.Health)
	app.Post("/summarize", h.Summarize)

	doc := app.Group("/doc")
	doc.Post("/ingest/*", h.Ingest)
	doc.Post("/", h.UpsertDocument)
	doc.Get("/:collection", h.ListDocuments)
	doc.Get("/:collection/:key", h.GetDocument)
	doc.Delete("/:collection/:key", h.DeleteDocument)

	gpt := app.Group("/gpt")
	gpt.Post("/query", h.Query)
	gpt.Get("/memory/:collection/:id", h.GetMemory)
	gpt.Post("/memory", h.SaveMemory)
	gpt.Delete("/memory", h.DeleteMemory)
}

// errorHandler maps pipeline errors onto JSON error responses.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal_error"

	var fiberErr *fiber.Error
	switch {
	case errors.Is(err, models.ErrValidation):
		status = fiber.StatusBadRequest
		code = "invalid_request"
	case errors.Is(err, models.ErrNotFound):
		status = fiber.StatusNotFound
		code = "not_found"
	case errors.As(err, &fiberErr):
		status = fiberErr.Code
		code = "request_failed"
	}
	return c.Status(status).JSON(fiber.Map{"code": code, "message": err.Error()})
}
