// Package pipeline runs a statement PDF through extraction, issuer detection,
// field extraction and transaction resolution.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/insightdelivered/statement-extractor/internal/confidence"
	"github.com/insightdelivered/statement-extractor/internal/extractor"
	"github.com/insightdelivered/statement-extractor/internal/fields"
	"github.com/insightdelivered/statement-extractor/internal/issuer"
	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/ocr"
	"github.com/insightdelivered/statement-extractor/internal/transactions"
)

// TextExtractor produces the text-layer extraction of a document.
type TextExtractor interface {
	Extract(path string) (models.ExtractionResult, error)
}

// PageRecognizer runs OCR over every page of a document. *ocr.Engine
// satisfies it.
type PageRecognizer interface {
	ExtractPages(ctx context.Context, path string) ([]ocr.Page, error)
}

// PDFExtractor reads the text layer with the extractor package.
type PDFExtractor struct{}

// Extract opens path and builds its layout-aware extraction.
func (PDFExtractor) Extract(path string) (models.ExtractionResult, error) {
	doc, err := extractor.Open(path)
	if err != nil {
		return models.ExtractionResult{}, err
	}
	defer doc.Close()
	return extractor.ExtractWithLayout(doc), nil
}

// Pipeline parses statements against one issuer registry. It holds no
// per-document state and is safe for concurrent use.
type Pipeline struct {
	registry        *issuer.Registry
	text            TextExtractor
	recognizer      PageRecognizer
	maxTransactions int
	metrics         *Metrics
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics records pipeline metrics.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTextExtractor replaces the text-layer extractor.
func WithTextExtractor(t TextExtractor) Option {
	return func(p *Pipeline) { p.text = t }
}

// WithMaxTransactions bounds the text fallback transaction scan.
func WithMaxTransactions(n int) Option {
	return func(p *Pipeline) { p.maxTransactions = n }
}

// New returns a pipeline over registry. recognizer may be nil, which
// disables the OCR fallback.
func New(registry *issuer.Registry, recognizer PageRecognizer, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		registry:        registry,
		text:            PDFExtractor{},
		recognizer:      recognizer,
		maxTransactions: transactions.DefaultMaxTransactions,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry returns the active issuer registry.
func (p *Pipeline) Registry() *issuer.Registry {
	return p.registry
}

// Parse extracts a statement record from the PDF at path. When profile is
// nil the issuer is detected from the text; an unknown issuer yields an
// *issuer.UnsupportedIssuerError. Only an unreadable document or an unknown
// issuer is an error: missing fields are sentinels on the record.
func (p *Pipeline) Parse(ctx context.Context, path string, profile *issuer.Profile) (models.StatementRecord, models.ExtractionReport, error) {
	start := time.Now()
	res, report, err := p.Extract(ctx, path)
	if err != nil {
		p.metrics.countParse("", "", outcomeUnreadable)
		return models.StatementRecord{}, report, err
	}

	if profile == nil {
		profile, err = p.Detect(res)
		if err != nil {
			p.metrics.countParse("", string(report.Method), outcomeUnsupported)
			p.logger.Info("issuer not detected", "path", path, "method", report.Method)
			return models.StatementRecord{}, report, err
		}
	}

	rec := p.Assemble(res, profile)
	p.metrics.countParse(profile.Name, string(report.Method), outcomeOK)
	p.metrics.observeTransactions(len(rec.Transactions))
	p.metrics.observeStage("total", start)
	p.logger.Info("statement parsed",
		"path", path,
		"issuer", profile.Name,
		"method", report.Method,
		"pages", report.Pages,
		"transactions", len(rec.Transactions),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return rec, report, nil
}

// Detect finds the issuer of an extraction, trying the plain text before
// the layout text.
func (p *Pipeline) Detect(res models.ExtractionResult) (*issuer.Profile, error) {
	for _, text := range []string{res.RawText, res.LayoutText} {
		if prof, ok := p.registry.Detect(text); ok {
			return prof, nil
		}
	}
	return nil, p.registry.Unsupported()
}

// Assemble runs field extraction and transaction resolution for profile.
func (p *Pipeline) Assemble(res models.ExtractionResult, profile *issuer.Profile) models.StatementRecord {
	start := time.Now()
	rec := fields.New(res).Record(profile)
	p.metrics.observeStage("fields", start)

	start = time.Now()
	rec.Transactions = transactions.Extract(res, profile, p.maxTransactions)
	p.metrics.observeStage("transactions", start)
	return rec
}

// Extract produces the best available extraction of path. The text layer is
// used unless it fails the readability gate, in which case OCR output
// replaces it when it scores higher. OCR problems never fail the call.
func (p *Pipeline) Extract(ctx context.Context, path string) (models.ExtractionResult, models.ExtractionReport, error) {
	start := time.Now()
	res, err := p.text.Extract(path)
	p.metrics.observeStage("text", start)
	if err != nil {
		return models.ExtractionResult{}, models.ExtractionReport{}, err
	}

	report := models.ExtractionReport{
		Method:         models.MethodText,
		TextConfidence: confidence.Score(res.RawText),
		Pages:          res.Pages,
		Tables:         len(res.Tables),
	}
	if p.recognizer == nil || extractor.IsReadable(res.RawText) {
		return res, report, nil
	}

	report.OCRAttempted = true
	start = time.Now()
	ocrRes, err := p.recognize(ctx, path)
	p.metrics.observeStage("ocr", start)
	if err != nil {
		p.logger.Warn("ocr fallback failed", "path", path, "error", err)
		p.metrics.countOCR(false)
		return res, report, nil
	}

	report.OCRConfidence = confidence.Score(ocrRes.RawText)
	chosen := confidence.Prefer(report.TextConfidence, report.OCRConfidence)
	p.metrics.countOCR(chosen)
	p.logger.Debug("ocr fallback scored",
		"path", path,
		"text_confidence", report.TextConfidence,
		"ocr_confidence", report.OCRConfidence,
		"chosen", chosen,
	)
	if !chosen {
		return res, report, nil
	}

	report.Method = models.MethodOCR
	report.Tables = len(ocrRes.Tables)
	if ocrRes.Pages > report.Pages {
		report.Pages = ocrRes.Pages
	}
	return ocrRes, report, nil
}

// recognize runs OCR and shapes its word boxes into an extraction.
func (p *Pipeline) recognize(ctx context.Context, path string) (models.ExtractionResult, error) {
	pages, err := p.recognizer.ExtractPages(ctx, path)
	if err != nil {
		return models.ExtractionResult{}, err
	}
	if err := ctx.Err(); err != nil && len(pages) == 0 {
		return models.ExtractionResult{}, err
	}

	words := make([]extractor.PageWords, len(pages))
	var failed []error
	for i, pg := range pages {
		if pg.Err != nil {
			failed = append(failed, pg.Err)
		}
		words[i] = extractor.PageWords{
			Width:  float64(pg.Width),
			Height: float64(pg.Height),
			Words:  toWords(pg.Words),
		}
	}
	if len(failed) > 0 {
		p.logger.Warn("ocr pages degraded", "path", path, "failed_pages", len(failed), "error", errors.Join(failed...))
	}

	res := extractor.FromWords(words)
	sanitize(&res)
	return res, nil
}

func toWords(boxes []ocr.WordBox) []extractor.Word {
	out := make([]extractor.Word, 0, len(boxes))
	for _, b := range boxes {
		if strings.TrimSpace(b.Text) == "" {
			continue
		}
		out = append(out, extractor.Word{
			X0:     float64(b.Left),
			X1:     float64(b.Left + b.Width),
			Top:    float64(b.Top),
			Bottom: float64(b.Top + b.Height),
			Text:   b.Text,
		})
	}
	return out
}

// sanitize repairs OCR amount misreads in every text of res.
func sanitize(res *models.ExtractionResult) {
	res.RawText = ocr.SanitizeAmounts(res.RawText)
	res.LayoutText = ocr.SanitizeAmounts(res.LayoutText)
	for i := range res.Regions {
		res.Regions[i].Text = ocr.SanitizeAmounts(res.Regions[i].Text)
	}
	for i := range res.Tables {
		t := &res.Tables[i]
		for j := range t.HeaderRow {
			t.HeaderRow[j] = ocr.SanitizeAmounts(t.HeaderRow[j])
		}
		for _, row := range t.Rows {
			for j := range row {
				row[j] = ocr.SanitizeAmounts(row[j])
			}
		}
	}
}
