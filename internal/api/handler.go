// Package api exposes the statement pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/issuer"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
)

// Error messages returned to clients.
const (
	msgNoFile       = "No file provided"
	msgNoSelection  = "No file selected"
	msgInvalidType  = "Invalid file type. Only PDF files are allowed"
	msgInternalFail = "Internal server error"
)

// ParseResponse is the body of a successful /api/parse call.
type ParseResponse struct {
	Success bool                   `json:"success"`
	Data    models.StatementRecord `json:"data"`
}

// ErrorResponse is the body of every failed call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	pipeline *pipeline.Pipeline
	cfg      config.ServerConfig
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// NewHandler returns a handler over p. gatherer may be nil, which disables
// /metrics regardless of cfg.
func NewHandler(p *pipeline.Pipeline, cfg config.ServerConfig, gatherer prometheus.Gatherer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{pipeline: p, cfg: cfg, gatherer: gatherer, logger: logger}
}

// App builds the fiber application with every route registered.
func (h *Handler) App() *fiber.App {
	limit := h.cfg.MaxUploadMB
	if limit <= 0 {
		limit = 16
	}
	app := fiber.New(fiber.Config{
		AppName:               "statement-extractor",
		BodyLimit:             limit << 20,
		DisableStartupMessage: true,
		ErrorHandler:          h.handleError,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.Register(app)
	return app
}

// Register mounts the routes on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.HandleHealth)
	app.Post("/api/parse", h.HandleParse)
	app.Get("/api/supported-issuers", h.HandleSupportedIssuers)
	if h.cfg.MetricsEnabled && h.gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"engine": "fiber",
	})
}

// HandleSupportedIssuers lists the issuers of the active registry.
func (h *Handler) HandleSupportedIssuers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"issuers": h.pipeline.Registry().Names()})
}

// HandleParse accepts a multipart PDF upload in field "file" and returns the
// extracted statement record. An optional "issuer" field skips detection.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, msgNoFile)
	}
	files := form.File["file"]
	if len(files) == 0 {
		// A browser submitting an empty file input sends the part with
		// filename="", which the multipart reader files under Value.
		if _, ok := form.Value["file"]; ok {
			return writeError(c, fiber.StatusBadRequest, msgNoSelection)
		}
		return writeError(c, fiber.StatusBadRequest, msgNoFile)
	}
	fh := files[0]
	if fh.Filename == "" {
		return writeError(c, fiber.StatusBadRequest, msgNoSelection)
	}
	if !allowedFile(fh.Filename) {
		return writeError(c, fiber.StatusBadRequest, msgInvalidType)
	}

	var profile *issuer.Profile
	if name := strings.TrimSpace(c.FormValue("issuer")); name != "" {
		p, ok := h.pipeline.Registry().Lookup(name)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, h.pipeline.Registry().Unsupported().Error())
		}
		profile = p
	}

	tmpPath := filepath.Join(os.TempDir(), "statement-"+uuid.NewString()+".pdf")
	if err := c.SaveFile(fh, tmpPath); err != nil {
		return fmt.Errorf("save upload: %w", err)
	}
	defer os.Remove(tmpPath)

	ctx := c.UserContext()
	if h.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	rec, report, err := h.pipeline.Parse(ctx, tmpPath, profile)
	if err != nil {
		if errors.Is(err, issuer.ErrUnsupportedIssuer) {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
		h.logger.Error("parse failed",
			"request_id", requestID(c),
			"file", fh.Filename,
			"error", err,
		)
		return writeError(c, fiber.StatusInternalServerError, err.Error())
	}

	h.logger.Info("upload parsed",
		"request_id", requestID(c),
		"file", fh.Filename,
		"size", fh.Size,
		"issuer", rec.Issuer,
		"method", report.Method,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return c.JSON(ParseResponse{Success: true, Data: rec})
}

// handleError maps errors escaping a handler, including recovered panics and
// fiber's own body-limit errors, to the JSON error shape.
func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := msgInternalFail
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		h.logger.Error("request failed",
			"request_id", requestID(c),
			"path", c.Path(),
			"error", err,
		)
	}
	return writeError(c, code, msg)
}

func allowedFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg})
}
