package extractor

import (
	"testing"

	"github.com/insightdelivered/statement-extractor/internal/extractor/pdftest"
)

type (
	pdfText = pdftest.Text
	pdfPage = pdftest.Page
)

func writePDF(t *testing.T, pages ...pdfPage) string {
	t.Helper()
	return pdftest.Write(t, pages...)
}

func openPDF(t *testing.T, pages ...pdfPage) *Document {
	t.Helper()
	doc, err := Open(writePDF(t, pages...))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}
