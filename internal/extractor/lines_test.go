package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func glyphs(x, y float64, s string) []glyph {
	var out []glyph
	for i, r := range s {
		out = append(out, glyph{x: x + float64(i)*6, y: y, w: 6, size: 10, s: string(r)})
	}
	return out
}

func TestBuildLines(t *testing.T) {
	var gs []glyph
	gs = append(gs, glyphs(300, 101, "1,299.00")...)
	gs = append(gs, glyphs(50, 100, "AMAZON RETAIL")...)
	gs = append(gs, glyphs(50, 80, "Date")...)

	lines := buildLines(gs)
	require.Len(t, lines, 2)
	assert.Equal(t, "Date", lines[0].text())
	assert.Equal(t, "AMAZON RETAIL  1,299.00", lines[1].text())
	require.Len(t, lines[1].words, 3)
	assert.Equal(t, 50.0, lines[1].words[0].X0)
	assert.Equal(t, 86.0, lines[1].words[0].X1)
}

func TestBuildLinesCollapsesOverprintedGlyphs(t *testing.T) {
	gs := glyphs(50, 100, "TOTAL")
	gs = append(gs, glyphs(50.2, 100, "TOTAL")...)

	lines := buildLines(gs)
	require.Len(t, lines, 1)
	assert.Equal(t, "TOTAL", lines[0].text())
}

func TestLinesFromWords(t *testing.T) {
	words := []Word{
		{X0: 900, X1: 1100, Top: 410, Bottom: 450, Text: "5,000.00"},
		{X0: 100, X1: 400, Top: 405, Bottom: 448, Text: "23/05/2019"},
		{X0: 100, X1: 300, Top: 100, Bottom: 140, Text: "Statement"},
	}

	lines := linesFromWords(words)
	require.Len(t, lines, 2)
	assert.Equal(t, "Statement", lines[0].text())
	assert.Equal(t, "23/05/2019  5,000.00", lines[1].text())
}

func TestLayoutPlacesWordsByPosition(t *testing.T) {
	l := line{words: []Word{
		{X0: 0, X1: 24, Text: "Date"},
		{X0: 29, X1: 60, Text: "Amount"},
	}}
	assert.Equal(t, "Date Amount", l.layout())

	l = line{words: []Word{{X0: 72.5, X1: 100, Text: "Due"}}}
	assert.Equal(t, "          Due", l.layout())
}
