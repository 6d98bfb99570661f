// Package pdftest writes small single-font PDFs for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Text is a string drawn at (X, Y) in PDF user space (origin bottom-left).
type Text struct {
	X, Y float64
	S    string
}

// Rect is a filled rectangle; thin ones act as ruling lines.
type Rect struct {
	X, Y, W, H float64
}

// Page is the content of one page.
type Page struct {
	Texts []Text
	Rects []Rect
}

// Write builds a letter-size PDF in Courier and writes it to a temp file.
// Every glyph is 6pt wide at the 10pt size used.
func Write(t testing.TB, pages ...Page) string {
	t.Helper()

	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>",
		strings.Join(kids, " "), len(pages)))

	widths := strings.TrimSpace(strings.Repeat("600 ", 95))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding "+
		"/FirstChar 32 /LastChar 126 /Widths ["+widths+"] >>")

	for i, p := range pages {
		var content strings.Builder
		for _, r := range p.Rects {
			fmt.Fprintf(&content, "%.2f %.2f %.2f %.2f re f\n", r.X, r.Y, r.W, r.H)
		}
		for _, tx := range p.Texts {
			fmt.Fprintf(&content, "BT /F1 10 Tf %.2f %.2f Td (%s) Tj ET\n", tx.X, tx.Y, escape(tx.S))
		}
		stream := content.String()
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "statement.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return path
}

// Grid draws a ruled grid: horizontal rules at each y, vertical rules at
// each x.
func Grid(xs, ys []float64) []Rect {
	var rects []Rect
	for _, y := range ys {
		rects = append(rects, Rect{X: xs[0], Y: y, W: xs[len(xs)-1] - xs[0], H: 0.5})
	}
	for _, x := range xs {
		rects = append(rects, Rect{X: x, Y: ys[len(ys)-1], W: 0.5, H: ys[0] - ys[len(ys)-1]})
	}
	return rects
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`)
	return r.Replace(s)
}
