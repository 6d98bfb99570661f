package transactions

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/fields"
	"github.com/insightdelivered/statement-extractor/internal/issuer"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// WindowSize is the number of transactions kept on a statement record.
const WindowSize = 5

// DefaultMaxTransactions bounds the text fallback scan when no limit is set.
const DefaultMaxTransactions = 10

// Extract builds the transaction window for p from res. The resolved table
// is used when there is one and p's columns can be found in its header;
// otherwise the document text is scanned line by line, stopping after max
// accepted lines.
func Extract(res models.ExtractionResult, p *issuer.Profile, max int) []models.Transaction {
	var txns []models.Transaction
	if t, ok := Resolve(res.Tables, p); ok && mapColumns(t.HeaderRow, p).usable() {
		txns = FromTable(t, p)
	} else {
		text := res.LayoutText
		if strings.TrimSpace(text) == "" {
			text = res.RawText
		}
		txns = FromText(text, p, max)
	}
	return Window(txns, p.Window)
}

// columnMap holds resolved column indexes; -1 means absent.
type columnMap struct {
	date, description, amount, debit, credit int
}

// mapColumns resolves logical columns from the header row. Each logical
// column takes the first header containing one of its keywords, skipping
// headers already taken so that "cr" cannot claim "Description".
func mapColumns(header []string, p *issuer.Profile) columnMap {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}
	taken := make(map[int]bool)
	find := func(col issuer.Column) int {
		keywords := p.Columns[col]
		for i, h := range lower {
			if taken[i] {
				continue
			}
			for _, kw := range keywords {
				if strings.Contains(h, kw) {
					taken[i] = true
					return i
				}
			}
		}
		return -1
	}
	m := columnMap{}
	m.date = find(issuer.ColumnDate)
	m.description = find(issuer.ColumnDescription)
	m.amount = find(issuer.ColumnAmount)
	m.debit = find(issuer.ColumnDebit)
	m.credit = find(issuer.ColumnCredit)
	return m
}

// usable reports whether rows can be read with m. A table needs a date and
// a description column plus an amount column or a debit/credit pair member.
func (m columnMap) usable() bool {
	if m.date < 0 || m.description < 0 {
		return false
	}
	return m.amount >= 0 || m.debit >= 0 || m.credit >= 0
}

// FromTable normalizes the rows of a resolved table in row order. A table
// whose columns cannot be identified yields nothing.
func FromTable(t models.TableBlock, p *issuer.Profile) []models.Transaction {
	cols := mapColumns(t.HeaderRow, p)
	if !cols.usable() {
		return nil
	}

	var out []models.Transaction
	for _, row := range t.Rows {
		date := strings.TrimSpace(cell(row, cols.date))
		if len(date) < 5 || strings.Contains(strings.ToLower(date), "date") {
			continue
		}

		var amount float64
		if cols.amount >= 0 {
			amount = fields.ParseAmount(cell(row, cols.amount))
		} else {
			// Debits first, credits when the row has no debit.
			if cols.debit >= 0 {
				amount = fields.ParseAmount(cell(row, cols.debit))
			}
			if amount == 0 && cols.credit >= 0 {
				amount = fields.ParseAmount(cell(row, cols.credit))
			}
		}

		if txn, ok := newTransaction(date, cell(row, cols.description), amount, p); ok {
			out = append(out, txn)
		}
	}
	return out
}

// newTransaction applies the validation every candidate goes through before
// it becomes a record.
func newTransaction(date, description string, amount float64, p *issuer.Profile) (models.Transaction, bool) {
	description = CleanDescription(description)
	if len(description) < 3 || amount <= 0 || p.Excludes(description) {
		return models.Transaction{}, false
	}
	return models.Transaction{Date: date, Description: description, Amount: amount}, true
}

// CleanDescription collapses internal whitespace and strips trailing "*"
// and "-" markers.
func CleanDescription(s string) string {
	return strings.TrimRight(strings.Join(strings.Fields(s), " "), "*- ")
}

// Window keeps the first or last WindowSize transactions.
func Window(txns []models.Transaction, w issuer.Window) []models.Transaction {
	if len(txns) <= WindowSize {
		return nonNil(txns)
	}
	if w == issuer.WindowLast {
		return txns[len(txns)-WindowSize:]
	}
	return txns[:WindowSize]
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func nonNil(txns []models.Transaction) []models.Transaction {
	if txns == nil {
		return []models.Transaction{}
	}
	return txns
}
