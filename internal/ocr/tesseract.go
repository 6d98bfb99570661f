package ocr

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// Region names used by RecognizeRegions.
const (
	RegionHeader       = "header"
	RegionAccountInfo  = "account_info"
	RegionBalanceInfo  = "balance_info"
	RegionTransactions = "transactions"
)

// WordBox is one recognized word with its pixel bounding box. Block, Par and
// Line identify the tesseract line the word belongs to.
type WordBox struct {
	Text   string
	Left   int
	Top    int
	Width  int
	Height int
	Conf   float64
	Block  int
	Par    int
	Line   int
}

// RecognizeText runs tesseract on an image and returns its text.
func (e *Engine) RecognizeText(ctx context.Context, img image.Image) (string, error) {
	path, cleanup, err := saveTemp(img)
	if err != nil {
		return "", err
	}
	defer cleanup()

	out, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path)...)
	if err != nil {
		return "", runError("tesseract", err, stderr)
	}
	return strings.TrimSpace(string(out)), nil
}

// WordBoxes runs tesseract in TSV mode and returns the recognized words.
func (e *Engine) WordBoxes(ctx context.Context, img image.Image) ([]WordBox, error) {
	path, cleanup, err := saveTemp(img)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return e.wordBoxesFromFile(ctx, path)
}

func (e *Engine) wordBoxesFromFile(ctx context.Context, path string) ([]WordBox, error) {
	out, stderr, err := e.runner.Run(ctx, e.cfg.Tesseract, append(e.args(path), "tsv")...)
	if err != nil {
		return nil, runError("tesseract TSV", err, stderr)
	}
	return ParseTSV(string(out)), nil
}

// RecognizeRegions splits a page image into the header strip (top quarter),
// account and balance panels (left and right halves of the second quarter)
// and the transaction area (bottom half), and recognizes each on its own.
// A region that fails to recognize maps to "".
func (e *Engine) RecognizeRegions(ctx context.Context, img image.Image) map[string]string {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	crops := map[string]image.Rectangle{
		RegionHeader:       image.Rect(0, 0, w, h/4),
		RegionAccountInfo:  image.Rect(0, h/4, w/2, h/2),
		RegionBalanceInfo:  image.Rect(w/2, h/4, w, h/2),
		RegionTransactions: image.Rect(0, h/2, w, h),
	}

	out := make(map[string]string, len(crops))
	for name, r := range crops {
		text, err := e.RecognizeText(ctx, imaging.Crop(img, r.Add(b.Min)))
		if err != nil {
			e.logger.Warn("region recognition failed", "region", name, "error", err)
		}
		out[name] = text
	}
	return out
}

func (e *Engine) args(imagePath string) []string {
	args := []string{imagePath, "stdout", "-l", e.cfg.Lang,
		"--oem", strconv.Itoa(e.cfg.OEM),
		"--psm", strconv.Itoa(e.cfg.PSM),
		"-c", "preserve_interword_spaces=1",
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}

// ParseTSV reads tesseract TSV output. Only word rows (level 5) with text
// are returned; a conf of -1 is kept as 0.
func ParseTSV(tsv string) []WordBox {
	var words []WordBox
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		}
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		n := make([]int, 10)
		for j := range n {
			n[j], _ = strconv.Atoi(cols[j])
		}
		conf, _ := strconv.ParseFloat(cols[10], 64)
		if conf < 0 {
			conf = 0
		}
		words = append(words, WordBox{
			Text:  text,
			Block: n[2], Par: n[3], Line: n[4],
			Left: n[6], Top: n[7], Width: n[8], Height: n[9],
			Conf: conf,
		})
	}
	return words
}

// TextFromWords rebuilds page text from word boxes, one output line per
// tesseract line, lines ordered top to bottom.
func TextFromWords(words []WordBox) string {
	type key struct{ block, par, line int }
	lines := make(map[key][]WordBox)
	var order []key
	for _, w := range words {
		k := key{w.Block, w.Par, w.Line}
		if _, ok := lines[k]; !ok {
			order = append(order, k)
		}
		lines[k] = append(lines[k], w)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return lines[order[i]][0].Top < lines[order[j]][0].Top
	})

	out := make([]string, 0, len(order))
	for _, k := range order {
		ws := lines[k]
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].Left < ws[j].Left })
		parts := make([]string, len(ws))
		for i, w := range ws {
			parts[i] = w.Text
		}
		out = append(out, strings.Join(parts, " "))
	}
	return strings.Join(out, "\n")
}

// MeanConfidence is the average word confidence in 0..1.
func MeanConfidence(words []WordBox) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Conf
	}
	return sum / float64(len(words)) / 100
}

func saveImage(dir, name string, img image.Image) (string, error) {
	path := filepath.Join(dir, name)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("save page image: %w", err)
	}
	return path, nil
}

func saveTemp(img image.Image) (string, func(), error) {
	dir, err := os.MkdirTemp("", "statement-ocr-*")
	if err != nil {
		return "", nil, fmt.Errorf("create ocr work dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }
	path, err := saveImage(dir, "image.png", img)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
