// Package confidence ranks candidate statement texts so the pipeline can
// choose between the text layer and OCR output.
package confidence

import (
	"regexp"
	"strings"
)

const (
	keywordWeight = 0.1
	dateWeight    = 0.1
	amountWeight  = 0.2
	cardWeight    = 0.2
)

var keywords = []string{
	"statement", "balance", "payment", "account", "credit", "card",
	"transaction", "due", "date", "amount", "total",
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`),
	regexp.MustCompile(`\d{1,2}-\d{1,2}-\d{2,4}`),
	regexp.MustCompile(`[A-Za-z]+ \d{1,2}, \d{4}`),
}

var (
	amountPattern = regexp.MustCompile(`(?:\$|₹|Rs\.?\s?)[\d,]+\.?\d*`)
	maskedCard    = regexp.MustCompile(`[Xx*]{4}[\s-]?[Xx*]{4}[\s-]?[Xx*]{4}[\s-]?\d{4}`)
)

// Score rates how much text looks like a financial statement, in [0, 1].
// It is only meaningful for comparing candidates of the same document.
func Score(text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	lower := strings.ToLower(text)

	score := 0.0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			score += keywordWeight
		}
	}
	for _, re := range datePatterns {
		if re.MatchString(text) {
			score += dateWeight
		}
	}
	if amountPattern.MatchString(text) {
		score += amountWeight
	}
	if maskedCard.MatchString(text) {
		score += cardWeight
	}
	return min(score, 1.0)
}

// Prefer reports whether the OCR candidate should replace the text layer.
// Ties keep the text layer.
func Prefer(textScore, ocrScore float64) bool {
	return ocrScore > textScore
}
