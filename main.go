package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/insightdelivered/statement-extractor/internal/api"
	"github.com/insightdelivered/statement-extractor/internal/config"
	"github.com/insightdelivered/statement-extractor/internal/issuer"
	"github.com/insightdelivered/statement-extractor/internal/ocr"
	"github.com/insightdelivered/statement-extractor/internal/pipeline"
	"github.com/insightdelivered/statement-extractor/internal/writer"
)

const version = "2.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatalf("Configuration error: %v\n", err)
	}

	// CLI flags, defaulting to the environment configuration
	regionFlag := flag.String("region", cfg.Pipeline.Region, "Issuer set: in, us, uk")
	issuerFlag := flag.String("issuer", "", "Issuer name, e.g. hdfc or amex (auto-detected if omitted)")
	formatFlag := flag.String("format", "json", "Output format: json, csv, xlsx")
	outputFlag := flag.String("output", "", "Output file path (defaults to input filename with the format extension, - for stdout)")
	headerFlag := flag.Bool("header", true, "Include statement summary rows in CSV output")
	ocrFlag := flag.Bool("ocr", cfg.OCR.Enabled, "Fall back to OCR for scanned statements")
	dpiFlag := flag.Int("dpi", cfg.OCR.DPI, "Rasterization DPI for OCR")
	debugFlag := flag.Bool("debug", false, "Print the extraction report for each file")
	serveFlag := flag.Bool("serve", false, "Start the HTTP API on SERVER_ADDR instead of converting files")
	verboseFlag := flag.Bool("v", false, "Verbose (debug) logging")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	helpFlag := flag.Bool("help", false, "Show usage help")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Credit Card and Bank Statement Extractor
by Insight Delivered (QEA AutoLens)

Extracts the card number, billing cycle, due date, balances and
transactions from credit card and bank statement PDFs, including
scanned statements through OCR.

Usage:
  statement-extractor [flags] <input.pdf> [input2.pdf ...]
  statement-extractor -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Auto-detect the issuer and write statement.json
  statement-extractor statement.pdf

  # Specify the issuer explicitly and export CSV
  statement-extractor -issuer=hdfc -format=csv statement.pdf

  # US card statements to an Excel workbook
  statement-extractor -region=us -format=xlsx -output=chase.xlsx chase.pdf

  # Run the HTTP API
  statement-extractor -serve

Supported issuer sets:
  in  - American Express, HDFC Bank, ICICI Bank, Kotak Mahindra Bank, State Bank of India
  us  - American Express, Bank of America, Chase, Citi, Wells Fargo
  uk  - Metro Bank, HSBC, Barclays
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-extractor v%s\n", version)
		os.Exit(0)
	}

	if *helpFlag || (flag.NArg() == 0 && !*serveFlag) {
		flag.Usage()
		os.Exit(0)
	}

	cfg.Pipeline.Region = *regionFlag
	cfg.OCR.Enabled = *ocrFlag
	cfg.OCR.DPI = *dpiFlag
	if *verboseFlag {
		cfg.LogLevel = slog.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		fatalf("Configuration error: %v\n", err)
	}

	registry, err := issuer.ForRegion(cfg.Pipeline.Region)
	if err != nil {
		fatalf("%v\n", err)
	}

	if *serveFlag {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
		if err := serve(cfg, registry, logger); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	format, err := writer.ParseFormat(*formatFlag)
	if err != nil {
		fatalf("%v\n", err)
	}

	var profile *issuer.Profile
	if *issuerFlag != "" {
		p, ok := registry.Lookup(*issuerFlag)
		if !ok {
			fatalf("Unknown issuer %q. Supported: %s\n", *issuerFlag, strings.Join(registry.Supported(), ", "))
		}
		profile = p
	}

	p := newPipeline(cfg, registry, logger, nil)
	inputFiles := flag.Args()
	if *outputFlag != "" && *outputFlag != "-" && len(inputFiles) > 1 {
		fatalf("-output names a single file; omit it to convert %d inputs\n", len(inputFiles))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := fileOptions{
		profile: profile,
		format:  format,
		output:  *outputFlag,
		header:  *headerFlag,
		debug:   *debugFlag,
	}
	for _, inputPath := range inputFiles {
		if err := processFile(ctx, p, inputPath, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", inputPath, err)
			os.Exit(1)
		}
	}
}

type fileOptions struct {
	profile *issuer.Profile
	format  writer.Format
	output  string
	header  bool
	debug   bool
}

func newPipeline(cfg *config.Config, registry *issuer.Registry, logger *slog.Logger, metrics *pipeline.Metrics) *pipeline.Pipeline {
	var recognizer pipeline.PageRecognizer
	if cfg.OCR.Enabled {
		recognizer = ocr.New(ocr.Config{
			Tesseract:   cfg.OCR.Tesseract,
			Lang:        cfg.OCR.Lang,
			TessdataDir: cfg.OCR.TessdataDir,
			DPI:         cfg.OCR.DPI,
			PSM:         cfg.OCR.PSM,
			OEM:         cfg.OCR.OEM,
			Workers:     cfg.OCR.Workers,
		}, logger)
	}
	return pipeline.New(registry, recognizer, logger,
		pipeline.WithMaxTransactions(cfg.Pipeline.MaxTransactions),
		pipeline.WithMetrics(metrics),
	)
}

func processFile(ctx context.Context, p *pipeline.Pipeline, inputPath string, opts fileOptions) error {
	// Validate input file
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if ext != ".pdf" {
		return fmt.Errorf("expected .pdf file, got %q", ext)
	}

	fmt.Fprintf(os.Stderr, "Processing: %s\n", inputPath)

	rec, report, err := p.Parse(ctx, inputPath, opts.profile)
	if err != nil {
		var unsupported *issuer.UnsupportedIssuerError
		if errors.As(err, &unsupported) {
			return fmt.Errorf("%w\n  Try specifying the issuer explicitly with -issuer, or another -region", err)
		}
		return fmt.Errorf("parsing failed: %w", err)
	}

	if opts.debug {
		fmt.Fprintf(os.Stderr, "  Method: %s (text confidence %.2f", report.Method, report.TextConfidence)
		if report.OCRAttempted {
			fmt.Fprintf(os.Stderr, ", OCR confidence %.2f", report.OCRConfidence)
		}
		fmt.Fprintf(os.Stderr, ")\n  Pages: %d, tables: %d, regions: %d\n", report.Pages, report.Tables, 3*report.Pages)
	}

	currency := ""
	if prof, ok := p.Registry().Lookup(rec.Issuer); ok {
		currency = prof.Currency
	}

	for _, line := range writer.Summary(rec, currency) {
		fmt.Fprintf(os.Stderr, "  %s: %s\n", line.Label, line.Value)
	}
	if len(rec.Transactions) == 0 {
		fmt.Fprintln(os.Stderr, "  Warning: No transactions found. The PDF layout may not match the issuer's patterns.")
	}

	w, err := writer.New(opts.format, writer.Options{IncludeHeader: opts.header, Currency: currency})
	if err != nil {
		return err
	}

	if opts.output == "-" {
		return w.Write(os.Stdout, rec)
	}

	// Determine output path
	outPath := opts.output
	if outPath == "" {
		outPath = strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + opts.format.Extension()
	}
	if err := writer.WriteToFile(outPath, w, rec); err != nil {
		return fmt.Errorf("%s write failed: %w", opts.format, err)
	}

	fmt.Fprintf(os.Stderr, "  Output: %s\n  Done.\n", outPath)
	return nil
}

func serve(cfg *config.Config, registry *issuer.Registry, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var metrics *pipeline.Metrics
	var gatherer prometheus.Gatherer
	if cfg.Server.MetricsEnabled {
		metrics = pipeline.NewMetrics(reg)
		gatherer = reg
	}

	app := api.NewHandler(newPipeline(cfg, registry, logger, metrics), cfg.Server, gatherer, logger).App()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", cfg.Server.Addr,
			"region", cfg.Pipeline.Region,
			"ocr", cfg.OCR.Enabled,
			"version", version,
		)
		errc <- app.Listen(cfg.Server.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
