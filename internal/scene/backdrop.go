package scene

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"slices"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// backdropAlphaMax is the highest alpha value still treated as backdrop.
// Sprites are composited fully opaque, but blur can leave semi-transparent
// halo pixels around their edges; those stay part of the sprite.
const backdropAlphaMax = 100

// paletteSamplesMax bounds the number of pixels fed to color clustering.
const paletteSamplesMax = 12000

var defaultPaletteHex = [...]string{"#FFBB00", "#7CBB00", "#00A1F1", "#F65314"}

// DefaultPalette returns the built-in backdrop palette as opaque colors.
func DefaultPalette() []color.NRGBA {
	out := make([]color.NRGBA, len(defaultPaletteHex))
	for i, hex := range defaultPaletteHex {
		c, err := colorful.Hex(hex)
		if err != nil {
			panic("scene: invalid palette constant " + hex)
		}
		r, g, b := c.RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// FillBackdrop paints one palette color, drawn uniformly from palette, over
// every canvas pixel whose alpha is at most 100, at full opacity. It must
// run after all sprites are placed so it cannot interfere with placement.
// palette must be non-empty.
func FillBackdrop(r *rand.Rand, canvas *image.NRGBA, palette []color.NRGBA) {
	c := palette[r.Intn(len(palette))]
	b := canvas.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			off := canvas.PixOffset(x, y)
			if canvas.Pix[off+3] <= backdropAlphaMax {
				canvas.Pix[off+0] = c.R
				canvas.Pix[off+1] = c.G
				canvas.Pix[off+2] = c.B
				canvas.Pix[off+3] = 0xff
			}
		}
	}
}

// PaletteFromImage derives a backdrop palette from a reference photo, for
// datasets that should blend into a particular environment instead of using
// the built-in colors.
//
// Opaque pixels are subsampled and clustered with k-means; when clustering
// cannot yield enough clusters (tiny or single-color images), dominant-color
// extraction serves as the fallback. The palette is returned darkest first.
func PaletteFromImage(img image.Image, size int) ([]color.NRGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("scene: palette size must be positive, got %d", size)
	}

	cols := kmeansPalette(img, size)
	if len(cols) < size {
		cols = dominantPalette(img, size)
	}
	if len(cols) < size {
		return nil, fmt.Errorf("scene: image yields %d of %d palette colors", len(cols), size)
	}

	slices.SortFunc(cols, func(a, b colorful.Color) int {
		la, lb := linearLuma(a), linearLuma(b)
		switch {
		case la < lb:
			return -1
		case la > lb:
			return 1
		}
		return 0
	})

	out := make([]color.NRGBA, size)
	for i, c := range cols[:size] {
		r, g, b := c.Clamped().RGB255()
		out[i] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return out, nil
}

func kmeansPalette(img image.Image, k int) []colorful.Color {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	// Subsample to keep clustering tractable on large photos.
	step := 1
	if w*h > paletteSamplesMax {
		step = int(math.Sqrt(float64(w*h)/float64(paletteSamplesMax))) + 1
	}

	samples := make(clusters.Observations, 0, paletteSamplesMax)
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			cr, cg, cb, ca := img.At(x, y).RGBA()
			if ca == 0 {
				continue
			}
			samples = append(samples, clusters.Coordinates{
				float64(cr) / 65535,
				float64(cg) / 65535,
				float64(cb) / 65535,
			})
		}
	}
	if len(samples) < k {
		return nil
	}

	km := kmeans.New()
	cc, err := km.Partition(samples, k)
	if err != nil {
		return nil
	}

	cols := make([]colorful.Color, 0, len(cc))
	for _, cluster := range cc {
		if len(cluster.Center) < 3 {
			continue
		}
		cols = append(cols, colorful.Color{
			R: cluster.Center[0],
			G: cluster.Center[1],
			B: cluster.Center[2],
		})
	}
	return cols
}

func dominantPalette(img image.Image, k int) []colorful.Color {
	cands := dominantcolor.FindWeight(img, k)
	cols := make([]colorful.Color, 0, len(cands))
	for _, c := range cands {
		col, ok := colorful.MakeColor(c.RGBA)
		if !ok {
			continue
		}
		cols = append(cols, col.Clamped())
	}
	return cols
}

func linearLuma(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
