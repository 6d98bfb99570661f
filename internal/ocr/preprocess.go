package ocr

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

const (
	claheTiles     = 8
	claheClipLimit = 2.0
	denoiseSigma   = 0.7
	// Skew below this many degrees is left alone.
	minDeskewAngle = 0.5
)

// Preprocess prepares a page image for recognition: grayscale, denoise,
// local contrast equalization, Otsu binarization and deskew. The result is
// black text on a white background.
func Preprocess(img image.Image) *image.Gray {
	smooth := imaging.Blur(imaging.Grayscale(img), denoiseSigma)
	gray := toGray(smooth)
	equalized := clahe(gray, claheTiles, claheClipLimit)
	binary := threshold(equalized, otsu(equalized))

	if angle := skewAngle(binary); math.Abs(angle) > minDeskewAngle {
		rotated := toGray(imaging.Rotate(binary, angle, color.White))
		return threshold(rotated, 127)
	}
	return binary
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := img.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				out.Pix[y*out.Stride+x] = n.Pix[y*n.Stride+x*4]
			}
		}
		return out
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			out.SetGray(x, y, color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray))
		}
	}
	return out
}

// clahe applies contrast-limited adaptive histogram equalization with a
// tiles×tiles grid, interpolating bilinearly between tile mappings.
func clahe(src *image.Gray, tiles int, clip float64) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return src
	}
	tw := (w + tiles - 1) / tiles
	th := (h + tiles - 1) / tiles

	luts := make([][256]uint8, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			luts[ty*tiles+tx] = tileLUT(src, tx*tw, ty*th, min((tx+1)*tw, w), min((ty+1)*th, h), clip)
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		gy := float64(y)/float64(th) - 0.5
		y0 := clampInt(int(math.Floor(gy)), 0, tiles-1)
		y1 := clampInt(y0+1, 0, tiles-1)
		fy := clampFloat(gy-float64(y0), 0, 1)
		for x := 0; x < w; x++ {
			gx := float64(x)/float64(tw) - 0.5
			x0 := clampInt(int(math.Floor(gx)), 0, tiles-1)
			x1 := clampInt(x0+1, 0, tiles-1)
			fx := clampFloat(gx-float64(x0), 0, 1)

			v := src.Pix[y*src.Stride+x]
			top := (1-fx)*float64(luts[y0*tiles+x0][v]) + fx*float64(luts[y0*tiles+x1][v])
			bot := (1-fx)*float64(luts[y1*tiles+x0][v]) + fx*float64(luts[y1*tiles+x1][v])
			out.Pix[y*out.Stride+x] = uint8(math.Round((1-fy)*top + fy*bot))
		}
	}
	return out
}

// tileLUT builds the clipped equalization mapping for one tile.
func tileLUT(src *image.Gray, x0, y0, x1, y1 int, clip float64) [256]uint8 {
	var lut [256]uint8
	var hist [256]int
	n := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[src.Pix[y*src.Stride+x]]++
			n++
		}
	}
	if n == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	limit := int(math.Max(1, clip*float64(n)/256))
	excess := 0
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	bonus, rest := excess/256, excess%256
	for i := range hist {
		hist[i] += bonus
		if i < rest {
			hist[i]++
		}
	}

	cdf := 0
	for i := range hist {
		cdf += hist[i]
		lut[i] = uint8(math.Round(float64(cdf) * 255 / float64(n)))
	}
	return lut
}

// otsu returns the threshold that maximizes between-class variance.
func otsu(img *image.Gray) uint8 {
	var hist [256]int
	for _, p := range img.Pix {
		hist[p]++
	}
	total := len(img.Pix)
	if total == 0 {
		return 127
	}

	sum := 0.0
	for i, c := range hist {
		sum += float64(i * c)
	}

	var sumB, best float64
	wB := 0
	t := uint8(127)
	for i, c := range hist {
		wB += c
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(i * c)
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best, t = between, uint8(i)
		}
	}
	return t
}

func threshold(img *image.Gray, t uint8) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, p := range img.Pix {
		if p > t {
			out.Pix[i] = 255
		}
	}
	return out
}

type point struct{ x, y float64 }

// skewAngle estimates page rotation in degrees from the minimum-area
// rectangle around the ink (black) pixels. Positive means the content is
// turned clockwise and needs a counter-clockwise correction.
func skewAngle(img *image.Gray) float64 {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	// The convex hull of the ink only depends on each row's extremes.
	var pts []point
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		left, right := -1, -1
		for x, p := range row {
			if p == 0 {
				if left < 0 {
					left = x
				}
				right = x
			}
		}
		if left >= 0 {
			pts = append(pts, point{float64(left), float64(y)}, point{float64(right), float64(y)})
		}
	}
	if len(pts) < 6 {
		return 0
	}

	hull := convexHull(pts)
	if len(hull) < 3 {
		return 0
	}

	bestArea := math.Inf(1)
	bestAngle := 0.0
	for i := range hull {
		a, b := hull[i], hull[(i+1)%len(hull)]
		theta := math.Atan2(b.y-a.y, b.x-a.x)
		cos, sin := math.Cos(theta), math.Sin(theta)
		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			u := p.x*cos + p.y*sin
			v := -p.x*sin + p.y*cos
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}
		if area := (maxU - minU) * (maxV - minV); area < bestArea {
			bestArea, bestAngle = area, theta*180/math.Pi
		}
	}
	return normalizeAngle(bestAngle)
}

// normalizeAngle folds a rectangle edge direction into (-45, 45].
func normalizeAngle(a float64) float64 {
	for a > 45 {
		a -= 90
	}
	for a <= -45 {
		a += 90
	}
	return a
}

// convexHull is Andrew's monotone chain.
func convexHull(pts []point) []point {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].x != pts[j].x {
			return pts[i].x < pts[j].x
		}
		return pts[i].y < pts[j].y
	})
	cross := func(o, a, b point) float64 {
		return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
	}

	hull := make([]point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
