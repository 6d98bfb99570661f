package fields

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/issuer"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Engine runs field cascades over one extraction result. Header regions are
// searched before the whole document.
type Engine struct {
	tables []models.TableBlock
	scopes []string
}

// New prepares an engine for res.
func New(res models.ExtractionResult) *Engine {
	e := &Engine{tables: res.Tables}
	for _, r := range res.RegionsIn(models.BandTop) {
		if strings.TrimSpace(r.Text) != "" {
			e.scopes = append(e.scopes, r.Text)
		}
	}
	if strings.TrimSpace(res.RawText) != "" {
		e.scopes = append(e.scopes, res.RawText)
	}
	if strings.TrimSpace(res.LayoutText) != "" && res.LayoutText != res.RawText {
		e.scopes = append(e.scopes, res.LayoutText)
	}
	return e
}

// Record extracts every scalar field for p. Transactions are left empty.
func (e *Engine) Record(p *issuer.Profile) models.StatementRecord {
	rec := models.NewStatementRecord(p.Name)
	rec.AccountLastFour = e.Identifier(p)
	rec.BillingCycle = e.BillingCycle(p)
	if !p.NoDueDate {
		rec.PaymentDueDate = e.Text(p, issuer.FieldDueDate)
	}
	rec.TotalBalance = e.Money(p, issuer.FieldTotalBalance)
	if !p.NoMinimum {
		v := e.Money(p, issuer.FieldMinimumPayment)
		rec.MinimumPayment = &v
	}
	return rec
}

// Text returns the last capture group of the first matching pattern for a
// text field, or "N/A".
func (e *Engine) Text(p *issuer.Profile, field issuer.Field) string {
	if groups := e.match(p, field); groups != nil {
		return groups[len(groups)-1]
	}
	return models.NotAvailable
}

// Identifier returns the card or account identifier for p.
func (e *Engine) Identifier(p *issuer.Profile) string {
	v := e.Text(p, issuer.FieldIdentifier)
	if v == models.NotAvailable || !p.DigitsOnlyID {
		return v
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, v)
	if len(digits) < 4 {
		return models.NotAvailable
	}
	return digits[len(digits)-4:]
}

// BillingCycle formats the billing-cycle match with the profile's rules.
func (e *Engine) BillingCycle(p *issuer.Profile) string {
	if groups := e.match(p, issuer.FieldBillingCycle); groups != nil {
		return p.FormatCycle(groups)
	}
	return models.NotAvailable
}

// Money returns a positive amount for a money field from the tables or the
// text cascade, or 0.
func (e *Engine) Money(p *issuer.Profile, field issuer.Field) float64 {
	if v := e.tableAmount(p.Labels[field]); v > 0 {
		return v
	}

	lastMatch := field == issuer.FieldTotalBalance && p.LastMatchBalance
	for _, scope := range e.scopes {
		for _, re := range p.Patterns[field] {
			var candidates [][]string
			if lastMatch {
				all := re.FindAllStringSubmatch(scope, -1)
				for i := len(all) - 1; i >= 0; i-- {
					candidates = append(candidates, all[i])
				}
			} else if m := re.FindStringSubmatch(scope); m != nil {
				candidates = append(candidates, m)
			}
			for _, m := range candidates {
				if groups := nonEmpty(m[1:]); groups != nil {
					if v := ParseAmount(groups[len(groups)-1]); v > 0 {
						return v
					}
				}
			}
		}
	}
	return 0
}

// tableAmount scans table rows, header included, for a cell holding one of
// labels and reads the amount beside it. A label cell may carry its own
// amount after the label.
func (e *Engine) tableAmount(labels []string) float64 {
	if len(labels) == 0 {
		return 0
	}
	for _, t := range e.tables {
		rows := append([][]string{t.HeaderRow}, t.Rows...)
		for _, row := range rows {
			for j, cell := range row {
				lower := strings.ToLower(cell)
				for _, label := range labels {
					idx := strings.Index(lower, label)
					if idx < 0 {
						continue
					}
					if v := ParseAmount(lower[idx+len(label):]); v > 0 {
						return v
					}
					if j+1 < len(row) {
						if v := ParseAmount(row[j+1]); v > 0 {
							return v
						}
					}
					if j > 0 {
						if v := ParseAmount(row[j-1]); v > 0 {
							return v
						}
					}
				}
			}
		}
	}
	return 0
}

// firstMatch runs patterns over every scope, header regions first, and
// returns the non-empty capture groups of the first hit.
func (e *Engine) firstMatch(patterns []*regexp.Regexp) []string {
	for _, scope := range e.scopes {
		for _, re := range patterns {
			if m := re.FindStringSubmatch(scope); m != nil {
				if groups := nonEmpty(m[1:]); groups != nil {
					return groups
				}
			}
		}
	}
	return nil
}

// match runs the profile's cascade for field, then the generic one.
func (e *Engine) match(p *issuer.Profile, field issuer.Field) []string {
	if groups := e.firstMatch(p.Patterns[field]); groups != nil {
		return groups
	}
	switch field {
	case issuer.FieldIdentifier:
		return e.firstMatch(issuer.GenericIdentifierPatterns)
	case issuer.FieldBillingCycle:
		return e.firstMatch(issuer.GenericCyclePatterns)
	case issuer.FieldDueDate:
		return e.firstMatch(issuer.GenericDueDatePatterns)
	}
	return nil
}

func nonEmpty(groups []string) []string {
	var out []string
	for _, g := range groups {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
