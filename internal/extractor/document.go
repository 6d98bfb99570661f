package extractor

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
)

// Default page size (US Letter, points) used when a page has no usable MediaBox.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Document is an opened PDF. Page content is decoded lazily and cached.
// A Document is owned by a single pipeline invocation.
type Document struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	pages  []*page
	once   []sync.Once
}

// page is the decoded geometry of one page. Coordinates are in points with
// the origin at the top-left corner and y growing downwards.
type page struct {
	index  int
	width  float64
	height float64
	glyphs []glyph
	rules  []rule
	lines  []line
}

// Library entry points, replaced in tests.
var (
	newReader = pdf.NewReader
	pageCount = (*pdf.Reader).NumPage
)

// Open opens a PDF for extraction. Structural failures are reported as
// *DocumentReadError. The file is closed on every failure path, including a
// panic inside the PDF library.
func Open(path string) (doc *Document, err error) {
	var f *os.File
	defer func() {
		if r := recover(); r != nil {
			if f != nil {
				f.Close()
			}
			doc = nil
			err = &DocumentReadError{Path: path, Err: fmt.Errorf("PDF library crashed: %v", r)}
		}
	}()

	f, err = os.Open(path)
	if err != nil {
		return nil, &DocumentReadError{Path: path, Err: err}
	}
	fail := func(cause error) (*Document, error) {
		f.Close()
		return nil, &DocumentReadError{Path: path, Err: cause}
	}

	fi, err := f.Stat()
	if err != nil {
		return fail(err)
	}
	r, err := newReader(f, fi.Size())
	if err != nil {
		return fail(err)
	}

	n := pageCount(r)
	if n == 0 {
		return fail(ErrNoPages)
	}

	return &Document{
		path:   path,
		file:   f,
		reader: r,
		pages:  make([]*page, n),
		once:   make([]sync.Once, n),
	}, nil
}

// Close releases the underlying file.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// Path returns the file the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return len(d.pages)
}

// page returns the decoded content of the zero-based page i. A page that the
// PDF library cannot decode comes back empty rather than failing.
func (d *Document) page(i int) *page {
	d.once[i].Do(func() {
		d.pages[i] = d.loadPage(i)
	})
	return d.pages[i]
}

func (d *Document) loadPage(i int) (pg *page) {
	pg = &page{index: i, width: defaultPageWidth, height: defaultPageHeight}
	defer func() {
		if r := recover(); r != nil {
			pg.glyphs = nil
			pg.rules = nil
			pg.lines = nil
		}
	}()

	p := d.reader.Page(i + 1)
	if p.V.IsNull() {
		return pg
	}

	x0, y0, w, h := mediaBox(p)
	pg.width, pg.height = w, h

	content := p.Content()
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		pg.glyphs = append(pg.glyphs, glyph{
			x:    t.X - x0,
			y:    h - (t.Y - y0),
			w:    t.W,
			size: t.FontSize,
			s:    t.S,
		})
	}
	for _, r := range content.Rect {
		pg.rules = append(pg.rules, newRule(
			r.Min.X-x0, h-(r.Max.Y-y0),
			r.Max.X-x0, h-(r.Min.Y-y0),
		))
	}
	pg.lines = buildLines(pg.glyphs)
	return pg
}

// mediaBox walks the page tree for the nearest MediaBox and returns its
// origin and size.
func mediaBox(p pdf.Page) (x0, y0, w, h float64) {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}
		x0, y0 = box.Index(0).Float64(), box.Index(1).Float64()
		w, h = box.Index(2).Float64()-x0, box.Index(3).Float64()-y0
		if w > 0 && h > 0 {
			return x0, y0, w, h
		}
	}
	return 0, 0, defaultPageWidth, defaultPageHeight
}

// plainText returns the library's own text stream for page i, used when the
// positioned glyphs are unusable.
func (d *Document) plainText(i int) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
		}
	}()

	p := d.reader.Page(i + 1)
	if p.V.IsNull() {
		return ""
	}
	fonts := make(map[string]*pdf.Font)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		fonts[name] = &f
	}
	text, err := p.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
