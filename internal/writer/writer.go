// Package writer exports statement records as JSON, CSV or XLSX.
package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Format is an output format name.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	case "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want json, csv or xlsx)", s)
	}
}

// Extension returns the file extension for f, with the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Writer encodes one statement record.
type Writer interface {
	Write(out io.Writer, rec models.StatementRecord) error
}

// Options configure the writers built by New.
type Options struct {
	IncludeHeader bool   // summary rows before the transactions (CSV)
	Currency      string // ISO 4217 code for money display; empty prints plain numbers
}

// New returns the writer for format.
func New(format Format, opts Options) (Writer, error) {
	switch format {
	case FormatJSON:
		return JSONWriter{}, nil
	case FormatCSV:
		return &CSVWriter{IncludeHeader: opts.IncludeHeader, Currency: opts.Currency}, nil
	case FormatXLSX:
		return &XLSXWriter{Currency: opts.Currency}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// WriteToFile writes rec to the file at path with w.
func WriteToFile(path string, w Writer, rec models.StatementRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	if err := w.Write(f, rec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// JSONWriter writes the record in the API response shape.
type JSONWriter struct{}

func (JSONWriter) Write(out io.Writer, rec models.StatementRecord) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// SummaryLine is one labelled statement field.
type SummaryLine struct {
	Label string
	Value string
}

// Summary renders the scalar fields of rec for people, with money in
// currency.
func Summary(rec models.StatementRecord, currency string) []SummaryLine {
	minimum := models.NotAvailable
	if rec.MinimumPayment != nil {
		minimum = FormatMoney(*rec.MinimumPayment, currency)
	}
	return []SummaryLine{
		{"Issuer", rec.Issuer},
		{"Card Last Four", rec.AccountLastFour},
		{"Billing Cycle", rec.BillingCycle},
		{"Payment Due Date", rec.PaymentDueDate},
		{"Total Balance", FormatMoney(rec.TotalBalance, currency)},
		{"Minimum Payment", minimum},
		{"Transactions", strconv.Itoa(len(rec.Transactions))},
	}
}

// FormatMoney displays amount in currency, e.g. "$1,234.50". An unknown or
// empty currency prints the plain two-decimal number.
func FormatMoney(amount float64, currency string) string {
	c := money.GetCurrency(strings.ToUpper(currency))
	if c == nil {
		return formatAmount(amount)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, c.Code).Display()
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
