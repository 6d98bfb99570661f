package writer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// transactionRow is the CSV shape of a transaction.
type transactionRow struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Category    string `csv:"Category"`
}

func toRows(txns []models.Transaction) []*transactionRow {
	rows := make([]*transactionRow, 0, len(txns))
	for _, t := range txns {
		row := &transactionRow{
			Date:        t.Date,
			Description: t.Description,
			Amount:      formatAmount(t.Amount),
		}
		if t.Category != nil {
			row.Category = *t.Category
		}
		rows = append(rows, row)
	}
	return rows
}

// CSVWriter writes transactions to CSV, optionally preceded by "# Label,value"
// summary rows.
type CSVWriter struct {
	IncludeHeader bool
	Currency      string
}

// Write writes rec in CSV format to out.
func (w *CSVWriter) Write(out io.Writer, rec models.StatementRecord) error {
	if w.IncludeHeader {
		meta := csv.NewWriter(out)
		for _, line := range Summary(rec, w.Currency) {
			if err := meta.Write([]string{"# " + line.Label, line.Value}); err != nil {
				return fmt.Errorf("failed to write CSV summary: %w", err)
			}
		}
		meta.Flush()
		if err := meta.Error(); err != nil {
			return fmt.Errorf("failed to write CSV summary: %w", err)
		}
	}

	if err := gocsv.Marshal(toRows(rec.Transactions), out); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
