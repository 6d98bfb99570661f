package extractor

import (
	"math"
	"sort"
	"strings"
)

// TableMode selects how table cells are located.
type TableMode int

const (
	// TableModeLattice uses ruling lines and cell borders drawn on the page.
	TableModeLattice TableMode = iota
	// TableModeStream infers columns from text alignment.
	TableModeStream
)

func (m TableMode) String() string {
	if m == TableModeStream {
		return "stream"
	}
	return "lattice"
}

const (
	// Rects thinner than this are treated as ruling lines.
	ruleThickness = 2.0
	// Edge positions closer than this snap to the same grid line.
	snapTolerance = 3.0
)

// rule is a filled or stroked rectangle in top-left page coordinates.
type rule struct {
	x0, y0, x1, y1 float64
}

func newRule(x0, y0, x1, y1 float64) rule {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return rule{x0: x0, y0: y0, x1: x1, y1: y1}
}

// RawTable is a table as found on the page, before header handling. Cells
// hold whitespace-collapsed text; a cell with no text is "".
type RawTable struct {
	Page  int
	Index int
	Cells [][]string
}

// ExtractTables finds tables on every page of doc using the given mode.
// Tables are numbered per page, top to bottom.
func ExtractTables(doc *Document, mode TableMode) []RawTable {
	var out []RawTable
	for i := 0; i < doc.NumPages(); i++ {
		pg := doc.page(i)
		var grids [][][]string
		switch mode {
		case TableModeStream:
			grids = streamTables(pg.lines)
		default:
			grids = latticeTables(pg)
		}
		for idx, cells := range grids {
			out = append(out, RawTable{Page: i, Index: idx, Cells: cells})
		}
	}
	return out
}

type hEdge struct{ y, x0, x1 float64 }
type vEdge struct{ x, y0, y1 float64 }

// edges splits rules into horizontal and vertical segments. A rectangle
// that is neither thin horizontally nor vertically contributes its four
// sides.
func edges(rules []rule) ([]hEdge, []vEdge) {
	var hs []hEdge
	var vs []vEdge
	for _, r := range rules {
		w, h := r.x1-r.x0, r.y1-r.y0
		switch {
		case w < ruleThickness && h < ruleThickness:
			continue
		case h <= ruleThickness:
			hs = append(hs, hEdge{y: (r.y0 + r.y1) / 2, x0: r.x0, x1: r.x1})
		case w <= ruleThickness:
			vs = append(vs, vEdge{x: (r.x0 + r.x1) / 2, y0: r.y0, y1: r.y1})
		default:
			hs = append(hs, hEdge{y: r.y0, x0: r.x0, x1: r.x1}, hEdge{y: r.y1, x0: r.x0, x1: r.x1})
			vs = append(vs, vEdge{x: r.x0, y0: r.y0, y1: r.y1}, vEdge{x: r.x1, y0: r.y0, y1: r.y1})
		}
	}
	return hs, vs
}

func intersects(h hEdge, v vEdge) bool {
	return v.x >= h.x0-snapTolerance && v.x <= h.x1+snapTolerance &&
		h.y >= v.y0-snapTolerance && h.y <= v.y1+snapTolerance
}

// disjointSet is a union-find over edge indices.
type disjointSet []int

func newDisjointSet(n int) disjointSet {
	d := make(disjointSet, n)
	for i := range d {
		d[i] = i
	}
	return d
}

func (d disjointSet) find(i int) int {
	for d[i] != i {
		d[i] = d[d[i]]
		i = d[i]
	}
	return i
}

func (d disjointSet) union(a, b int) {
	if ra, rb := d.find(a), d.find(b); ra != rb {
		d[rb] = ra
	}
}

// latticeTables builds a cell grid for every connected group of ruling
// lines and fills it with the words whose centre falls inside each cell.
func latticeTables(pg *page) [][][]string {
	hs, vs := edges(pg.rules)
	if len(hs) < 2 || len(vs) < 2 {
		return nil
	}

	// Horizontal edges take indices [0, len(hs)), vertical ones follow.
	set := newDisjointSet(len(hs) + len(vs))
	for i, h := range hs {
		for j, v := range vs {
			if intersects(h, v) {
				set.union(i, len(hs)+j)
			}
		}
	}

	groups := make(map[int][]int)
	var roots []int
	for i := range set {
		root := set.find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], i)
	}

	type grid struct {
		xs, ys []float64
	}
	var grids []grid
	for _, root := range roots {
		var xs, ys []float64
		for _, i := range groups[root] {
			if i < len(hs) {
				ys = append(ys, hs[i].y)
			} else {
				xs = append(xs, vs[i-len(hs)].x)
			}
		}
		xs, ys = snap(xs), snap(ys)
		if len(xs) < 3 || len(ys) < 2 {
			continue
		}
		grids = append(grids, grid{xs: xs, ys: ys})
	}
	sort.SliceStable(grids, func(i, j int) bool {
		if grids[i].ys[0] != grids[j].ys[0] {
			return grids[i].ys[0] < grids[j].ys[0]
		}
		return grids[i].xs[0] < grids[j].xs[0]
	})

	var tables [][][]string
	for _, g := range grids {
		tables = append(tables, fillGrid(g.xs, g.ys, pg.lines))
	}
	return tables
}

// snap sorts positions and merges those within snapTolerance of each other.
func snap(vals []float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	sort.Float64s(vals)
	out := []float64{vals[0]}
	for _, v := range vals[1:] {
		if v-out[len(out)-1] > snapTolerance {
			out = append(out, v)
		}
	}
	return out
}

func fillGrid(xs, ys []float64, lines []line) [][]string {
	rows, cols := len(ys)-1, len(xs)-1
	parts := make([][][]string, rows)
	for r := range parts {
		parts[r] = make([][]string, cols)
	}

	for _, l := range lines {
		for _, w := range l.words {
			cx, cy := (w.X0+w.X1)/2, (w.Top+w.Bottom)/2
			r, c := locate(ys, cy), locate(xs, cx)
			if r < 0 || c < 0 {
				continue
			}
			parts[r][c] = append(parts[r][c], w.Text)
		}
	}

	cells := make([][]string, rows)
	for r := range parts {
		cells[r] = make([]string, cols)
		for c := range parts[r] {
			cells[r][c] = strings.Join(parts[r][c], " ")
		}
	}
	return cells
}

// locate returns the interval of bounds containing v, or -1.
func locate(bounds []float64, v float64) int {
	for i := 0; i+1 < len(bounds); i++ {
		if v >= bounds[i] && v < bounds[i+1] {
			return i
		}
	}
	return -1
}

// segment is a run of words on one line separated from its neighbours by a
// gap wide enough to be a column boundary.
type segment struct {
	x0, x1 float64
	text   string
}

func segments(l line) []segment {
	gap := math.Max(5, 0.9*l.size)
	var out []segment
	for i, w := range l.words {
		if i > 0 && w.X0-l.words[i-1].X1 <= gap {
			s := &out[len(out)-1]
			s.text += " " + w.Text
			s.x1 = w.X1
			continue
		}
		out = append(out, segment{x0: w.X0, x1: w.X1, text: w.Text})
	}
	return out
}

// streamTables finds runs of consecutive multi-column lines and aligns them
// on the column intervals covered by their segments. The first line of a run
// becomes the first row. A header-like line always opens a new run, so a
// summary block set at the same spacing does not swallow the header.
func streamTables(lines []line) [][][]string {
	var tables [][][]string
	var run [][]segment
	var lastY, lastSize float64

	flush := func() {
		if len(run) >= 2 {
			if t := alignRun(run); t != nil {
				tables = append(tables, t)
			}
		}
		run = nil
	}

	for _, l := range lines {
		segs := segments(l)
		if len(segs) < 2 || (len(run) > 0 && l.y-lastY > 3*math.Max(lastSize, l.size)) {
			flush()
		} else if len(run) > 0 && headerLike(segs) {
			flush()
		}
		if len(segs) >= 2 {
			run = append(run, segs)
			lastY, lastSize = l.y, l.size
		}
	}
	flush()
	return tables
}

var (
	headerDescWords   = []string{"description", "transaction", "details", "narration", "particular", "merchant"}
	headerAmountWords = []string{"amount", "debit", "credit", "withdrawal", "deposit", "paid", "balance"}
)

// headerLike reports whether a line reads as a transaction column header: a
// date cell, plus description and amount words, none of them numeric.
func headerLike(segs []segment) bool {
	var date, desc, amount bool
	for _, s := range segs {
		t := strings.ToLower(s.text)
		if strings.ContainsAny(t, "0123456789") {
			return false
		}
		if strings.Contains(t, "date") {
			date = true
		}
		desc = desc || containsAny(t, headerDescWords)
		amount = amount || containsAny(t, headerAmountWords)
	}
	return date && desc && amount
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

type interval struct{ x0, x1 float64 }

func alignRun(run [][]segment) [][]string {
	var spans []interval
	for _, segs := range run {
		for _, s := range segs {
			spans = append(spans, interval{s.x0, s.x1})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].x0 < spans[j].x0 })

	cols := []interval{spans[0]}
	for _, s := range spans[1:] {
		last := &cols[len(cols)-1]
		if s.x0 <= last.x1+ruleThickness {
			last.x1 = math.Max(last.x1, s.x1)
			continue
		}
		cols = append(cols, s)
	}
	if len(cols) < 2 {
		return nil
	}

	rows := make([][]string, 0, len(run))
	for _, segs := range run {
		row := make([]string, len(cols))
		for _, s := range segs {
			c := nearestColumn(cols, (s.x0+s.x1)/2)
			if row[c] != "" {
				row[c] += " "
			}
			row[c] += s.text
		}
		rows = append(rows, row)
	}
	return rows
}

func nearestColumn(cols []interval, x float64) int {
	best, dist := 0, math.Inf(1)
	for i, c := range cols {
		if x >= c.x0 && x <= c.x1 {
			return i
		}
		d := math.Min(math.Abs(x-c.x0), math.Abs(x-c.x1))
		if d < dist {
			best, dist = i, d
		}
	}
	return best
}
