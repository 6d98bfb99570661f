package writer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

const (
	summarySheet      = "Summary"
	transactionsSheet = "Transactions"
)

// XLSXWriter writes a workbook with a summary sheet and a transactions sheet.
type XLSXWriter struct {
	Currency string
}

// Write writes rec as an XLSX workbook to out.
func (w *XLSXWriter) Write(out io.Writer, rec models.StatementRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	for i, line := range Summary(rec, w.Currency) {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &[]any{line.Label, line.Value}); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 20)
	_ = f.SetColWidth(summarySheet, "B", "B", 28)

	if _, err := f.NewSheet(transactionsSheet); err != nil {
		return fmt.Errorf("failed to add transactions sheet: %w", err)
	}
	if err := f.SetSheetRow(transactionsSheet, "A1", &[]any{"Date", "Description", "Amount", "Category"}); err != nil {
		return fmt.Errorf("failed to write transactions header: %w", err)
	}
	for i, t := range rec.Transactions {
		category := ""
		if t.Category != nil {
			category = *t.Category
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(transactionsSheet, cell, &[]any{t.Date, t.Description, t.Amount, category}); err != nil {
			return fmt.Errorf("failed to write transaction row: %w", err)
		}
	}
	_ = f.SetColWidth(transactionsSheet, "A", "A", 14)
	_ = f.SetColWidth(transactionsSheet, "B", "B", 40)

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
