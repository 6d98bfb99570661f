package ocr

import (
	"regexp"
	"strings"
)

var (
	semicolonDecimal = regexp.MustCompile(`(\d);(\s*)(\d)`)
	colonDecimal     = regexp.MustCompile(`(\d):(\d)`)
	trailingColon    = regexp.MustCompile(`(\d):(\s|$)`)
	trailingNA       = regexp.MustCompile(`\s+NA\b`)
)

// SanitizeAmounts fixes common tesseract misreads in amounts, line by line.
// Periods read as semicolons or colons are restored ("19,720; 15" becomes
// "19,720.15"), trailing colons after digits and a stray "NA" after amounts
// are dropped. Colon-separated times are rewritten as well.
func SanitizeAmounts(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = semicolonDecimal.ReplaceAllString(line, "$1.$3")
		line = colonDecimal.ReplaceAllString(line, "$1.$2")
		line = trailingColon.ReplaceAllString(line, "$1$2")
		lines[i] = trailingNA.ReplaceAllString(line, "")
	}
	return strings.Join(lines, "\n")
}
