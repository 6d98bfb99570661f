package extractor

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Layout rendering density, in points per character cell and per text row.
const (
	layoutXDensity = 7.25
	layoutYDensity = 13.0
	// Gap between words that the converter always treated as a column break.
	columnGap = 15.0
)

// glyph is a single positioned character from the PDF content stream.
type glyph struct {
	x, y, w, size float64
	s             string
}

func (g glyph) width() float64 {
	if g.w > 0 {
		return g.w
	}
	return 0.5 * g.fontSize() * float64(utf8.RuneCountInString(g.s))
}

func (g glyph) fontSize() float64 {
	if g.size > 0 {
		return g.size
	}
	return 10
}

// Word is a run of glyphs with no visible gap. OCR word boxes are converted
// into the same shape so both extraction paths share the layout code.
type Word struct {
	X0, X1 float64
	Top    float64
	Bottom float64
	Text   string
}

// line is a set of words sharing a baseline, ordered left to right.
type line struct {
	y     float64
	size  float64
	words []Word
}

func (l line) x0() float64 { return l.words[0].X0 }
func (l line) x1() float64 { return l.words[len(l.words)-1].X1 }

// text joins the words with single spaces, widening to two spaces where the
// gap looks like a column break.
func (l line) text() string {
	var b strings.Builder
	for i, w := range l.words {
		if i > 0 {
			if w.X0-l.words[i-1].X1 > columnGap {
				b.WriteString("  ")
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(w.Text)
	}
	return strings.TrimSpace(b.String())
}

// layout renders the line with words placed at their horizontal position.
func (l line) layout() string {
	var b strings.Builder
	col := 0
	for _, w := range l.words {
		target := int(math.Round(w.X0 / layoutXDensity))
		if col > 0 && target <= col {
			target = col + 1
		}
		for col < target {
			b.WriteByte(' ')
			col++
		}
		b.WriteString(w.Text)
		col += utf8.RuneCountInString(w.Text)
	}
	return strings.TrimRight(b.String(), " ")
}

// buildLines groups glyphs into lines (top to bottom) and words.
func buildLines(glyphs []glyph) []line {
	groups := groupByBaseline(glyphs,
		func(g glyph) (x, y, size float64) { return g.x, g.y, g.fontSize() })

	var lines []line
	for _, grp := range groups {
		if l, ok := wordsFromGlyphs(grp); ok {
			lines = append(lines, l)
		}
	}
	return lines
}

// groupByBaseline sorts items top to bottom and splits them into rows whose
// baselines lie within a font-relative tolerance. Rows are ordered left to
// right.
func groupByBaseline[T any](items []T, pos func(T) (x, y, size float64)) [][]T {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]T, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		xi, yi, _ := pos(sorted[i])
		xj, yj, _ := pos(sorted[j])
		if yi != yj {
			return yi < yj
		}
		return xi < xj
	})

	var groups [][]T
	var current []T
	var baseline float64
	for _, it := range sorted {
		_, y, size := pos(it)
		tol := math.Max(2, 0.4*size)
		if len(current) > 0 && math.Abs(y-baseline) > tol {
			groups = append(groups, current)
			current = nil
		}
		if len(current) == 0 {
			baseline = y
		}
		current = append(current, it)
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}

	for _, grp := range groups {
		sort.SliceStable(grp, func(i, j int) bool {
			xi, _, _ := pos(grp[i])
			xj, _, _ := pos(grp[j])
			return xi < xj
		})
	}
	return groups
}

// wordsFromGlyphs merges same-line glyphs into words. Duplicate glyphs drawn
// at the same spot (fake bold) are collapsed.
func wordsFromGlyphs(gs []glyph) (line, bool) {
	l := line{y: gs[0].y, size: gs[0].fontSize()}
	var cur strings.Builder
	var w Word
	var prev *glyph

	flush := func() {
		if cur.Len() > 0 {
			w.Text = cur.String()
			l.words = append(l.words, w)
		}
		cur.Reset()
	}

	for i := range gs {
		g := gs[i]
		if strings.TrimFunc(g.s, unicode.IsSpace) == "" {
			flush()
			prev = nil
			continue
		}
		if prev != nil && g.s == prev.s && math.Abs(g.x-prev.x) < 0.5 {
			continue
		}
		if prev != nil && g.x-(prev.x+prev.width()) > 0.25*g.fontSize() {
			flush()
		}
		if cur.Len() == 0 {
			w = Word{X0: g.x, Top: g.y - g.fontSize(), Bottom: g.y}
		}
		cur.WriteString(g.s)
		w.X1 = g.x + g.width()
		if g.size > l.size {
			l.size = g.size
		}
		prev = &gs[i]
	}
	flush()
	return l, len(l.words) > 0
}

// linesFromWords groups pre-positioned words (OCR output) into lines.
func linesFromWords(words []Word) []line {
	groups := groupByBaseline(words, func(w Word) (x, y, size float64) {
		size = w.Bottom - w.Top
		if size <= 0 {
			size = 10
		}
		return w.X0, w.Bottom, size
	})

	lines := make([]line, 0, len(groups))
	for _, grp := range groups {
		size := grp[0].Bottom - grp[0].Top
		if size <= 0 {
			size = 10
		}
		lines = append(lines, line{y: grp[0].Bottom, size: size, words: grp})
	}
	return lines
}

// renderText joins line texts with newlines.
func renderText(lines []line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := l.text(); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n")
}

// renderLayout renders lines with horizontal positions preserved and blank
// rows for large vertical gaps.
func renderLayout(lines []line) string {
	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
			gap := l.y - lines[i-1].y
			for n := int(gap/layoutYDensity) - 1; n > 0 && n <= 3; n-- {
				b.WriteByte('\n')
			}
		}
		b.WriteString(l.layout())
	}
	return b.String()
}
