package sprite

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// Augmentation parameter ranges. Scale factors and rotation angles are drawn
// uniformly from half-open intervals; flips are independent coin flips.
const (
	ScaleMin         = 0.8
	ScaleMax         = 1.2
	RotateMaxDegrees = 90.0
	FlipProbability  = 0.5

	// Motion blur kernel sizes, odd values in [BlurKernelMin, BlurKernelMax].
	BlurKernelMin = 3
	BlurKernelMax = 7
)

// Stage is a single augmentation transform. A stage draws whatever random
// parameters it needs from r and returns the transformed image, which may be
// the input unchanged (flips skip themselves half the time).
type Stage func(r *rand.Rand, img *image.NRGBA) *image.NRGBA

// Augmentor applies a list of stages in an order reshuffled on every call.
//
// The stage list is explicit so tests can pin the composition down: a nil or
// empty list is the identity, a single-stage list exercises that transform
// alone, and DefaultStages gives the full production pipeline.
type Augmentor struct {
	Stages []Stage
}

// NewAugmentor returns an Augmentor with the default stage list.
func NewAugmentor() *Augmentor {
	return &Augmentor{Stages: DefaultStages()}
}

// DefaultStages returns the production augmentation pipeline: an affine
// scale-and-rotate, a horizontal flip, a vertical flip and a motion blur.
func DefaultStages() []Stage {
	return []Stage{Affine, FlipHorizontal, FlipVertical, MotionBlur}
}

// Apply runs the augmentor's stages over img. The execution order is drawn
// from r before any stage runs, then each stage draws its own parameters in
// that order, so a fixed seed fixes the entire augmentation.
func (a *Augmentor) Apply(r *rand.Rand, img *image.NRGBA) *image.NRGBA {
	order := make([]int, len(a.Stages))
	for i := range order {
		order[i] = i
	}
	r.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	for _, idx := range order {
		img = a.Stages[idx](r, img)
	}
	return img
}

// Affine scales each axis independently by a factor from
// [ScaleMin, ScaleMax) and rotates by an angle from
// [-RotateMaxDegrees, RotateMaxDegrees). The output canvas is expanded to
// contain the rotated image completely; uncovered corners are filled with
// transparent black, so they read as background downstream.
func Affine(r *rand.Rand, img *image.NRGBA) *image.NRGBA {
	sx := uniform(r, ScaleMin, ScaleMax)
	sy := uniform(r, ScaleMin, ScaleMax)
	angle := uniform(r, -RotateMaxDegrees, RotateMaxDegrees)

	w := int(math.Round(float64(img.Bounds().Dx()) * sx))
	h := int(math.Round(float64(img.Bounds().Dy()) * sy))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	return imaging.Rotate(scaled, angle, color.NRGBA{})
}

// FlipHorizontal mirrors the image left to right with probability
// FlipProbability.
func FlipHorizontal(r *rand.Rand, img *image.NRGBA) *image.NRGBA {
	if r.Float64() < FlipProbability {
		return imaging.FlipH(img)
	}
	return img
}

// FlipVertical mirrors the image top to bottom with probability
// FlipProbability.
func FlipVertical(r *rand.Rand, img *image.NRGBA) *image.NRGBA {
	if r.Float64() < FlipProbability {
		return imaging.FlipV(img)
	}
	return img
}

// MotionBlur convolves the image with a line kernel of random odd size and
// random orientation. The alpha channel is blurred along with the color
// channels, so sprite edges pick up semi-transparent pixels. That is fine:
// mask extraction treats any nonzero alpha as foreground.
func MotionBlur(r *rand.Rand, img *image.NRGBA) *image.NRGBA {
	size := blurKernelSize(r)
	angle := uniform(r, 0, 360)

	blurred := convolution.Convolve(img, motionKernel(size, angle).Normalized(), &convolution.Options{
		Bias:      0,
		Wrap:      false,
		KeepAlpha: false,
	})
	return imaging.Clone(blurred)
}

func blurKernelSize(r *rand.Rand) int {
	return BlurKernelMin + 2*r.Intn((BlurKernelMax-BlurKernelMin)/2+1)
}

// motionKernel rasterizes a line segment through the kernel center at the
// given angle. Sampling runs at twice the kernel resolution so no cell along
// the segment is skipped by rounding.
func motionKernel(size int, angleDegrees float64) *convolution.Kernel {
	k := convolution.NewKernel(size, size)
	theta := angleDegrees * math.Pi / 180
	dx, dy := math.Cos(theta), math.Sin(theta)
	center := float64(size-1) / 2

	steps := 2 * size
	for i := 0; i <= steps; i++ {
		t := (float64(i)/float64(steps) - 0.5) * float64(size-1)
		x := int(math.Round(center + t*dx))
		y := int(math.Round(center + t*dy))
		if x >= 0 && x < size && y >= 0 && y < size {
			k.Matrix[y*size+x] = 1
		}
	}
	return k
}

func uniform(r *rand.Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
