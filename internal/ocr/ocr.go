package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"
)

// Config controls rasterization and the tesseract invocation.
type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	DPI         int // default 300
	PSM         int // page segmentation mode, default 6 (uniform block)
	OEM         int // engine mode, default 3
	Workers     int // pages recognized concurrently, default 4
}

// PageSource renders document pages to images. *fitz.Document satisfies it.
type PageSource interface {
	NumPage() int
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}

// Engine is the image fallback extractor.
type Engine struct {
	cfg    Config
	runner Runner
	open   func(path string) (PageSource, error)
	logger *slog.Logger
}

// New returns an Engine that rasterizes with MuPDF and recognizes with the
// tesseract command line.
func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.OEM < 0 || cfg.OEM > 3 {
		cfg.OEM = 3
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Engine{
		cfg:    cfg,
		runner: execRunner{logger: logger},
		open:   openFitz,
		logger: logger,
	}
}

func openFitz(path string) (PageSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// WithRunner replaces the command runner.
func (e *Engine) WithRunner(r Runner) *Engine {
	e.runner = r
	return e
}

// WithPageSource replaces how documents are opened for rasterization.
func (e *Engine) WithPageSource(open func(path string) (PageSource, error)) *Engine {
	e.open = open
	return e
}

// Page is the recognition result for one page. Width and Height are the
// rasterized size in pixels. A page that failed has no words and empty text.
type Page struct {
	Index      int
	Width      int
	Height     int
	Text       string
	Words      []WordBox
	Confidence float64
	Err        error
}

// Rasterize renders every page at the given DPI. A page that cannot be
// rendered is left nil.
func (e *Engine) Rasterize(path string, dpi int) ([]image.Image, error) {
	src, err := e.open(path)
	if err != nil {
		return nil, fmt.Errorf("open for rasterization: %w", err)
	}
	defer src.Close()

	images := make([]image.Image, src.NumPage())
	for n := range images {
		img, err := src.ImageDPI(n, float64(dpi))
		if err != nil {
			e.logger.Warn("page rasterization failed", "path", path, "page", n, "error", err)
			continue
		}
		images[n] = img
	}
	return images, nil
}

// ExtractPages rasterizes, preprocesses and recognizes every page of the
// document, up to Workers pages at a time. Results are in page order.
// Failures on a page are recorded on that page and never abort the others;
// an error is returned only when the document cannot be rendered at all.
func (e *Engine) ExtractPages(ctx context.Context, path string) ([]Page, error) {
	start := time.Now()
	src, err := e.open(path)
	if err != nil {
		return nil, fmt.Errorf("open for rasterization: %w", err)
	}
	defer src.Close()

	workDir, err := os.MkdirTemp("", "statement-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("create ocr work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pages := make([]Page, src.NumPage())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for n := range pages {
		g.Go(func() error {
			pages[n] = e.extractPage(gctx, src, workDir, n)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, p := range pages {
		if p.Err != nil {
			failed++
			e.logger.Warn("ocr page failed", "path", path, "page", p.Index, "error", p.Err)
		}
	}
	e.logger.Debug("ocr finished",
		"path", path,
		"pages", len(pages),
		"failed_pages", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

func (e *Engine) extractPage(ctx context.Context, src PageSource, dir string, n int) Page {
	page := Page{Index: n}
	if err := ctx.Err(); err != nil {
		page.Err = err
		return page
	}

	raw, err := src.ImageDPI(n, float64(e.cfg.DPI))
	if err != nil {
		page.Err = fmt.Errorf("rasterize: %w", err)
		return page
	}
	img := Preprocess(raw)
	page.Width, page.Height = img.Bounds().Dx(), img.Bounds().Dy()

	imgPath, err := saveImage(dir, fmt.Sprintf("page-%03d.png", n), img)
	if err != nil {
		page.Err = err
		return page
	}

	words, err := e.wordBoxesFromFile(ctx, imgPath)
	if err != nil {
		page.Err = err
		return page
	}
	page.Words = words
	page.Text = TextFromWords(words)
	page.Confidence = MeanConfidence(words)
	return page
}
