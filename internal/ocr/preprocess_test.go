package ocr

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rotatedBar draws a black length×thickness bar centred on a white canvas,
// turned by deg degrees (positive turns down-right in image coordinates).
func rotatedBar(w, h int, length, thickness, deg float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	cx, cy := float64(w)/2, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			u := dx*cos + dy*sin
			v := -dx*sin + dy*cos
			if math.Abs(u) < length/2 && math.Abs(v) < thickness/2 {
				continue
			}
			img.Pix[y*img.Stride+x] = 255
		}
	}
	return img
}

func TestSkewAngle(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
	}{
		{"level", 0},
		{"clockwise", 5},
		{"counter clockwise", -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := rotatedBar(400, 200, 300, 20, tt.deg)
			assert.InDelta(t, tt.deg, skewAngle(img), 0.5)
		})
	}
}

func TestSkewAngleBlankPage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	assert.Equal(t, 0.0, skewAngle(img))
}

func TestNormalizeAngle(t *testing.T) {
	tests := map[float64]float64{
		5:    5,
		95:   5,
		-50:  40,
		45:   45,
		90:   0,
		-180: 0,
	}
	for in, want := range tests {
		if got := normalizeAngle(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("normalizeAngle(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestConvexHull(t *testing.T) {
	pts := []point{{0, 0}, {10, 0}, {5, 5}, {10, 10}, {0, 10}, {3, 7}}
	hull := convexHull(pts)
	assert.Len(t, hull, 4)
	assert.NotContains(t, hull, point{5, 5})
	assert.NotContains(t, hull, point{3, 7})
}

func TestOtsu(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 50
		} else {
			img.Pix[i] = 200
		}
	}
	th := otsu(img)
	assert.GreaterOrEqual(t, th, uint8(50))
	assert.Less(t, th, uint8(200))

	bin := threshold(img, th)
	assert.Equal(t, uint8(0), bin.Pix[0])
	assert.Equal(t, uint8(255), bin.Pix[1])
}

func TestClaheKeepsUniformImageUniform(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	out := clahe(img, claheTiles, claheClipLimit)
	require.Equal(t, img.Bounds(), out.Bounds())
	for _, p := range out.Pix {
		require.Equal(t, out.Pix[0], p)
	}
}

func TestPreprocessBinarizes(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			c := color.RGBA{230, 225, 210, 255}
			if y >= 30 && y < 40 && x >= 10 && x < 110 {
				c = color.RGBA{40, 40, 60, 255}
			}
			src.SetRGBA(x, y, c)
		}
	}

	out := Preprocess(src)
	assert.Equal(t, 120, out.Bounds().Dx())
	assert.Equal(t, 80, out.Bounds().Dy())
	for _, p := range out.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("pixel value %d is not binary", p)
		}
	}
	assert.Equal(t, uint8(0), out.GrayAt(60, 35).Y)
	assert.Equal(t, uint8(255), out.GrayAt(60, 5).Y)
}

func TestPreprocessDeskewsToBinary(t *testing.T) {
	out := Preprocess(rotatedBar(400, 200, 300, 20, 4))
	for _, p := range out.Pix {
		if p != 0 && p != 255 {
			t.Fatalf("pixel value %d is not binary", p)
		}
	}
	assert.InDelta(t, 0, skewAngle(out), 1)
}

func TestSanitizeAmounts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"19,720; 15", "19,720.15"},
		{"8,249:00", "8,249.00"},
		{"Closing balance 1,200: ", "Closing balance 1,200 "},
		{"23/05/2019 ATM 100.00 NA", "23/05/2019 ATM 100.00"},
		{"PAYMENT TO NATIONAL GRID 45.00", "PAYMENT TO NATIONAL GRID 45.00"},
		{"10;50\nTotal Dues: 9:99", "10.50\nTotal Dues: 9.99"},
	}
	for _, tt := range tests {
		if got := SanitizeAmounts(tt.in); got != tt.want {
			t.Errorf("SanitizeAmounts(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
