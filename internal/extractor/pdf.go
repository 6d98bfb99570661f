package extractor

import (
	"strings"
	"unicode"

	"github.com/gen2brain/go-fitz"
)

// MinTextLength is the amount of trimmed text below which a document is
// treated as textless and considered for OCR.
const MinTextLength = 50

// ExtractText returns the document's text, pages joined by newlines.
//
// Positioned glyphs are tried first, then the library's plain-text stream,
// then a raw content-stream scan and finally MuPDF. The first result that
// passes the readability gate wins; if none does, the glyph text is returned
// as is so the caller can score it against OCR.
func ExtractText(doc *Document) string {
	candidates := []func() string{
		func() string { return doc.joinPages(func(i int) string { return renderText(doc.page(i).lines) }) },
		func() string { return doc.joinPages(doc.plainText) },
		func() string {
			text, _ := rawText(doc.path)
			return text
		},
		func() string {
			text, _ := fitzText(doc.path)
			return text
		},
	}

	first := ""
	for i, extract := range candidates {
		text := extract()
		if IsReadable(text) {
			return text
		}
		if i == 0 {
			first = text
		}
	}
	return first
}

// ExtractLayoutText returns the document's text with horizontal positions
// preserved, so columns stay visually aligned.
func ExtractLayoutText(doc *Document) string {
	return doc.joinPages(func(i int) string { return renderLayout(doc.page(i).lines) })
}

func (d *Document) joinPages(pageText func(i int) string) string {
	parts := make([]string, 0, d.NumPages())
	for i := 0; i < d.NumPages(); i++ {
		if t := pageText(i); strings.TrimSpace(t) != "" {
			parts = append(parts, strings.TrimRight(t, " \n"))
		}
	}
	return strings.Join(parts, "\n")
}

// fitzText extracts text with MuPDF, which copes with some encodings the
// pure Go reader does not.
func fitzText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	doc, err := fitz.New(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var parts []string
	for n := 0; n < doc.NumPage(); n++ {
		t, err := doc.Text(n)
		if err != nil {
			continue
		}
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// IsTextless reports whether text is too short to be a usable extraction.
func IsTextless(text string) bool {
	return len(strings.TrimSpace(text)) < MinTextLength
}

// IsReadable is the readability gate: enough text, mostly plain characters,
// and at least one word every statement carries. Identity-encoded fonts
// without a ToUnicode map tend to fail the second test.
func IsReadable(text string) bool {
	if IsTextless(text) {
		return false
	}
	if textQuality(text) <= 0.6 {
		return false
	}
	return containsCommonWords(text)
}

// textQuality returns the share of runes that are ASCII letters, digits,
// whitespace or common statement punctuation and currency signs.
// unicode.IsLetter is deliberately not used: undecoded glyph codes often
// land on accented letters.
func textQuality(text string) float64 {
	total, readable := 0, 0
	for _, r := range text {
		total++
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			unicode.IsSpace(r) || strings.ContainsRune(".,-/:;()'\"£$€₹%&@#!?+=*`", r) {
			readable++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "card",
	"due", "paid", "opening", "closing", "transfer", "number",
	"page", "period", "minimum",
}

func containsCommonWords(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range commonWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
