package sprite

import (
	"image"

	"github.com/disintegration/imaging"
)

// backgroundLuminance is the grayscale intensity above which a pixel counts
// as backdrop. Instance photos are shot against white, so only near-white
// pixels exceed it.
const backgroundLuminance = 250.0

// RemoveBackground classifies near-white pixels of an instance photo as
// background and returns an NRGBA copy where those pixels carry alpha 0 and
// zeroed color channels. All remaining pixels keep their color and become
// fully opaque.
//
// Zeroing the color channels matters: later resampling and blurring mix
// neighboring pixel values, and a white background bleeding into sprite
// edges would leave bright halos on the composited scene. Mixed-with-black
// edges instead darken slightly and stay visually clean.
//
// Luminance uses the ITU-R BT.601 weights (0.299 R + 0.587 G + 0.114 B).
func RemoveBackground(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()

	for y := 0; y < h; y++ {
		row := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w; x++ {
			px := row[x*4 : x*4+4 : x*4+4]
			lum := 0.299*float64(px[0]) + 0.587*float64(px[1]) + 0.114*float64(px[2])
			if lum > backgroundLuminance {
				px[0], px[1], px[2], px[3] = 0, 0, 0, 0
			} else {
				px[3] = 0xff
			}
		}
	}
	return out
}
