package transactions

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/fields"
	"github.com/insightdelivered/statement-extractor/internal/issuer"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// genericLines run after a profile's own line patterns. Each has date,
// description and amount groups.
var genericLines = []*regexp.Regexp{
	// DD/MM/YYYY
	regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})\s+([A-Za-z][A-Za-z0-9\s\-\.\*&,]{3,60}?)\s+([\d,]+\.\d{2})`),
	// DD Mon YYYY
	regexp.MustCompile(`(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\s+([A-Za-z][A-Za-z0-9\s\-\.\*&,]{3,60}?)\s+([\d,]+\.\d{2})`),
	// DD-Mon-YYYY
	regexp.MustCompile(`(\d{1,2}-[A-Za-z]{3}-\d{4})\s+([A-Za-z][A-Za-z0-9\s\-\.\*&,]{3,60}?)\s+([\d,]+\.\d{2})`),
}

// FromText scans text line by line for transaction lines. On each line the
// first pattern that matches, profile patterns before generic ones, supplies
// every transaction on that line. Scanning stops once max transactions have
// been accepted; max <= 0 means DefaultMaxTransactions.
func FromText(text string, p *issuer.Profile, max int) []models.Transaction {
	if max <= 0 {
		max = DefaultMaxTransactions
	}
	patterns := append(append([]*regexp.Regexp{}, p.Lines...), genericLines...)

	var out []models.Transaction
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || isHeaderLine(line) {
			continue
		}
		for _, re := range patterns {
			matches := re.FindAllStringSubmatch(line, -1)
			if matches == nil {
				continue
			}
			for _, m := range matches {
				if len(m) < 4 {
					continue
				}
				if txn, ok := newTransaction(strings.TrimSpace(m[1]), m[2], fields.ParseAmount(m[3]), p); ok {
					out = append(out, txn)
					if len(out) >= max {
						return out
					}
				}
			}
			break
		}
	}
	return out
}

// isHeaderLine reports whether line is a column header row such as
// "Date Description Amount".
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "date") &&
		(strings.Contains(lower, "description") || strings.Contains(lower, "transaction") ||
			strings.Contains(lower, "details") || strings.Contains(lower, "narration")) &&
		(strings.Contains(lower, "amount") || strings.Contains(lower, "paid") ||
			strings.Contains(lower, "balance") || strings.Contains(lower, "debit"))
}
