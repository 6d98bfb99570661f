package models

import "fmt"

// Band is a fixed vertical slice of a page.
type Band string

const (
	BandTop    Band = "top"    // 0-30% of page height
	BandMiddle Band = "middle" // 30-70%
	BandBottom Band = "bottom" // 70-100%
)

// Bands lists page bands in reading order.
var Bands = []Band{BandTop, BandMiddle, BandBottom}

// RegionID builds the region key for a zero-based page index, e.g. "page_0_top".
func RegionID(page int, band Band) string {
	return fmt.Sprintf("page_%d_%s", page, band)
}

// Region is the text found inside one band of one page.
type Region struct {
	ID   string `json:"id"`
	Page int    `json:"page"`
	Band Band   `json:"band"`
	Text string `json:"text"`
}

// TableBlock is a detected table normalized to a header and equal-width rows.
type TableBlock struct {
	Page      int        `json:"page"`
	Index     int        `json:"index"`
	HeaderRow []string   `json:"headerRow"`
	Rows      [][]string `json:"rows"`
}

// Columns returns the header width.
func (t TableBlock) Columns() int {
	return len(t.HeaderRow)
}

// ExtractionResult holds everything pulled out of one document.
// Regions are kept in page order so lookups are deterministic.
type ExtractionResult struct {
	RawText    string       `json:"rawText"`
	LayoutText string       `json:"layoutText"`
	Tables     []TableBlock `json:"tables"`
	Regions    []Region     `json:"regions"`
	Pages      int          `json:"pages"`
}

// TextByRegion returns the region texts keyed by region id.
func (r ExtractionResult) TextByRegion() map[string]string {
	m := make(map[string]string, len(r.Regions))
	for _, reg := range r.Regions {
		m[reg.ID] = reg.Text
	}
	return m
}

// RegionsIn returns the regions of the given band in page order.
func (r ExtractionResult) RegionsIn(band Band) []Region {
	var out []Region
	for _, reg := range r.Regions {
		if reg.Band == band {
			out = append(out, reg)
		}
	}
	return out
}

// ExtractionMethod names the path that produced an ExtractionResult.
type ExtractionMethod string

const (
	MethodText ExtractionMethod = "text"
	MethodOCR  ExtractionMethod = "ocr"
)

// ExtractionReport describes how the pipeline chose its extraction.
type ExtractionReport struct {
	Method         ExtractionMethod `json:"method"`
	TextConfidence float64          `json:"textConfidence"`
	OCRConfidence  float64          `json:"ocrConfidence"`
	OCRAttempted   bool             `json:"ocrAttempted"`
	Pages          int              `json:"pages"`
	Tables         int              `json:"tables"`
}
