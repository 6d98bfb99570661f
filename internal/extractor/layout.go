package extractor

import (
	"strings"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

// Band boundaries as fractions of page height.
const (
	topBandEnd    = 0.30
	middleBandEnd = 0.70
)

// ExtractWithLayout builds the full extraction for a text-layer document:
// raw and layout text, normalized tables and per-page band regions.
// Lattice tables are tried first; the stream mode runs only when the whole
// document yields none.
func ExtractWithLayout(doc *Document) models.ExtractionResult {
	raw := ExtractTables(doc, TableModeLattice)
	if len(raw) == 0 {
		raw = ExtractTables(doc, TableModeStream)
	}

	res := models.ExtractionResult{
		RawText:    ExtractText(doc),
		LayoutText: ExtractLayoutText(doc),
		Tables:     NormalizeTables(raw),
		Pages:      doc.NumPages(),
	}
	for i := 0; i < doc.NumPages(); i++ {
		pg := doc.page(i)
		res.Regions = append(res.Regions, pageRegions(i, pg.height, pg.lines)...)
	}
	return res
}

// PageWords is one recognized page: its size in pixels and positioned words.
type PageWords struct {
	Width  float64
	Height float64
	Words  []Word
}

// FromWords builds an extraction from OCR output so image-only documents
// flow through the same region and table handling as text documents. A page
// with no words contributes empty regions.
func FromWords(pages []PageWords) models.ExtractionResult {
	res := models.ExtractionResult{Pages: len(pages)}
	var texts, layouts []string
	var raw []RawTable
	for i, p := range pages {
		lines := linesFromWords(p.Words)
		if t := renderText(lines); t != "" {
			texts = append(texts, t)
			layouts = append(layouts, renderLayout(lines))
		}
		for idx, cells := range streamTables(lines) {
			raw = append(raw, RawTable{Page: i, Index: idx, Cells: cells})
		}
		res.Regions = append(res.Regions, pageRegions(i, p.Height, lines)...)
	}
	res.RawText = strings.Join(texts, "\n")
	res.LayoutText = strings.Join(layouts, "\n")
	res.Tables = NormalizeTables(raw)
	return res
}

// pageRegions crops a page into its top, middle and bottom bands. A line
// belongs to the band containing its baseline.
func pageRegions(index int, height float64, lines []line) []models.Region {
	if height <= 0 {
		height = defaultPageHeight
	}
	byBand := make(map[models.Band][]line, len(models.Bands))
	for _, l := range lines {
		byBand[bandOf(l.y/height)] = append(byBand[bandOf(l.y/height)], l)
	}

	regions := make([]models.Region, 0, len(models.Bands))
	for _, band := range models.Bands {
		regions = append(regions, models.Region{
			ID:   models.RegionID(index, band),
			Page: index,
			Band: band,
			Text: renderLayout(byBand[band]),
		})
	}
	return regions
}

func bandOf(frac float64) models.Band {
	switch {
	case frac < topBandEnd:
		return models.BandTop
	case frac < middleBandEnd:
		return models.BandMiddle
	default:
		return models.BandBottom
	}
}

// NormalizeTables converts raw tables into TableBlocks. The first row is the
// header; rows with no text or a width different from the header are
// dropped. Tables without a non-empty header are skipped.
func NormalizeTables(raw []RawTable) []models.TableBlock {
	var out []models.TableBlock
	for _, t := range raw {
		if len(t.Cells) == 0 {
			continue
		}
		header := cleanRow(t.Cells[0])
		if isEmptyRow(header) {
			continue
		}
		block := models.TableBlock{Page: t.Page, Index: t.Index, HeaderRow: header}
		for _, row := range t.Cells[1:] {
			row = cleanRow(row)
			if len(row) != len(header) || isEmptyRow(row) {
				continue
			}
			block.Rows = append(block.Rows, row)
		}
		out = append(out, block)
	}
	return out
}

func cleanRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.Join(strings.Fields(c), " ")
	}
	return out
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
