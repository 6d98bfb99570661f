// Package transactions locates a statement's transaction table and turns its
// rows, or matching text lines, into transaction records.
package transactions

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/issuer"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Header keyword families used for scoring. Profile column keywords are
// added to these per family, except abbreviations such as "rs" or "dr" that
// turn up inside unrelated headers.
var (
	dateHeaders        = []string{"date"}
	descriptionHeaders = []string{"description", "transaction", "particular", "narration", "details"}
	amountHeaders      = []string{"amount", "debit", "credit", "withdrawal", "deposit", "paid"}
)

// minRows is the data row count below which a table is never a candidate.
const minRows = 3

// Resolve returns the table most likely to hold p's transactions. It reports
// false when no table scores above zero and the text fallback should run.
// Ties keep the earlier table.
func Resolve(tables []models.TableBlock, p *issuer.Profile) (models.TableBlock, bool) {
	best, bestScore := -1, 0
	for i, t := range tables {
		if len(t.Rows) < minRows {
			continue
		}
		if s := Score(t, p); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return models.TableBlock{}, false
	}
	return tables[best], true
}

// Score rates t as a transaction table for p.
func Score(t models.TableBlock, p *issuer.Profile) int {
	headers := make([]string, len(t.HeaderRow))
	for i, h := range t.HeaderRow {
		headers[i] = strings.ToLower(h)
	}

	score := 0
	if anyHeader(headers, dateHeaders, p.Columns[issuer.ColumnDate]) {
		score += 2
	}
	if anyHeader(headers, descriptionHeaders, p.Columns[issuer.ColumnDescription]) {
		score += 2
	}
	if anyHeader(headers, amountHeaders, p.Columns[issuer.ColumnAmount], p.Columns[issuer.ColumnDebit], p.Columns[issuer.ColumnCredit]) {
		score += 2
	}
	if len(t.Rows) > 5 {
		score++
	}
	if t.Columns() >= p.ColumnWidth() {
		score++
	}
	return score
}

func anyHeader(headers []string, keywordSets ...[]string) bool {
	for _, h := range headers {
		for _, set := range keywordSets {
			for _, kw := range set {
				if len(kw) > 2 && strings.Contains(h, kw) {
					return true
				}
			}
		}
	}
	return false
}
