package sprite

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"testing"
)

func TestApply_NoStagesIsIdentity(t *testing.T) {
	img := fillNRGBA(8, 6, color.NRGBA{30, 60, 90, 255})
	aug := &Augmentor{}

	out := aug.Apply(rand.New(rand.NewSource(1)), img)

	if out != img {
		t.Error("empty augmentor should return the input image unchanged")
	}
}

func TestApply_DeterministicForSeed(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 12, 10))
	paintRect(t, img, image.Rect(2, 2, 9, 7), color.NRGBA{200, 30, 30, 255})
	paintRect(t, img, image.Rect(4, 4, 6, 6), color.NRGBA{30, 200, 30, 255})
	aug := NewAugmentor()

	first := aug.Apply(rand.New(rand.NewSource(7)), img)
	second := aug.Apply(rand.New(rand.NewSource(7)), img)

	if first.Bounds() != second.Bounds() {
		t.Fatalf("bounds differ: %v vs %v", first.Bounds(), second.Bounds())
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("same seed produced different pixels")
	}
}

func TestApply_ShufflesStageOrder(t *testing.T) {
	var order []int
	recorder := func(i int) Stage {
		return func(r *rand.Rand, img *image.NRGBA) *image.NRGBA {
			order = append(order, i)
			return img
		}
	}
	aug := &Augmentor{Stages: []Stage{recorder(0), recorder(1), recorder(2), recorder(3)}}
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))

	seen := make(map[string]bool)
	for seed := int64(0); seed < 10; seed++ {
		order = nil
		aug.Apply(rand.New(rand.NewSource(seed)), img)

		if len(order) != 4 {
			t.Fatalf("seed %d: ran %d stages, want 4", seed, len(order))
		}
		var hit [4]bool
		for _, i := range order {
			hit[i] = true
		}
		for i, ok := range hit {
			if !ok {
				t.Fatalf("seed %d: stage %d never ran", seed, i)
			}
		}
		seen[fmt.Sprint(order)] = true
	}

	if len(seen) < 2 {
		t.Error("stage order never varied across seeds")
	}
}

func TestAffine_BoundsWithinScaleAndRotationLimits(t *testing.T) {
	const w, h = 40, 30
	img := fillNRGBA(w, h, color.NRGBA{90, 90, 200, 255})

	// A rotated axis-aligned box can grow to at most the sum of the scaled
	// sides, and no thinner than the smaller scaled side.
	maxDim := int(ScaleMax*float64(w)+ScaleMax*float64(h)) + 2
	minDim := int(ScaleMin*float64(h)) - 2

	for seed := int64(0); seed < 10; seed++ {
		out := Affine(rand.New(rand.NewSource(seed)), img)
		ow, oh := out.Bounds().Dx(), out.Bounds().Dy()

		if ow < minDim || ow > maxDim || oh < minDim || oh > maxDim {
			t.Errorf("seed %d: output %dx%d outside [%d,%d]", seed, ow, oh, minDim, maxDim)
		}
	}
}

func TestFlipHorizontal_MirrorsWhenTriggered(t *testing.T) {
	left := color.NRGBA{255, 0, 0, 255}
	right := color.NRGBA{0, 0, 255, 255}
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, left)
	img.SetNRGBA(1, 0, right)

	flipped, kept := 0, 0
	for seed := int64(0); seed < 20; seed++ {
		out := FlipHorizontal(rand.New(rand.NewSource(seed)), img)

		switch got := out.NRGBAAt(0, 0); got {
		case right:
			flipped++
			if out.NRGBAAt(1, 0) != left {
				t.Fatalf("seed %d: left pixel not mirrored to the right", seed)
			}
		case left:
			kept++
			if out.NRGBAAt(1, 0) != right {
				t.Fatalf("seed %d: image changed without flipping", seed)
			}
		default:
			t.Fatalf("seed %d: unexpected pixel %+v", seed, got)
		}
	}

	if flipped == 0 || kept == 0 {
		t.Errorf("flip never varied: %d flipped, %d kept", flipped, kept)
	}
}

func TestFlipVertical_MirrorsWhenTriggered(t *testing.T) {
	top := color.NRGBA{255, 0, 0, 255}
	bottom := color.NRGBA{0, 0, 255, 255}
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, top)
	img.SetNRGBA(0, 1, bottom)

	flipped, kept := 0, 0
	for seed := int64(0); seed < 20; seed++ {
		out := FlipVertical(rand.New(rand.NewSource(seed)), img)

		switch out.NRGBAAt(0, 0) {
		case bottom:
			flipped++
		case top:
			kept++
		}
	}

	if flipped == 0 || kept == 0 {
		t.Errorf("flip never varied: %d flipped, %d kept", flipped, kept)
	}
}

func TestMotionBlur_PreservesSizeAndSpreadsAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 21, 21))
	paintRect(t, img, image.Rect(8, 8, 13, 13), color.NRGBA{220, 40, 40, 255})

	out := MotionBlur(rand.New(rand.NewSource(3)), img)

	if out.Bounds().Dx() != 21 || out.Bounds().Dy() != 21 {
		t.Fatalf("size changed: got %v", out.Bounds())
	}
	opaque := 0
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			if out.NRGBAAt(x, y).A > 0 {
				opaque++
			}
		}
	}
	if opaque <= 25 {
		t.Errorf("foreground not smeared: %d pixels with alpha, want more than the original 25", opaque)
	}
	if out.NRGBAAt(10, 10).A == 0 {
		t.Error("center of the block lost its alpha")
	}
}

func TestBlurKernelSize_OddWithinRange(t *testing.T) {
	seen := make(map[int]bool)
	for seed := int64(0); seed < 30; seed++ {
		size := blurKernelSize(rand.New(rand.NewSource(seed)))
		if size < BlurKernelMin || size > BlurKernelMax || size%2 == 0 {
			t.Fatalf("seed %d: kernel size %d", seed, size)
		}
		seen[size] = true
	}
	if len(seen) < 2 {
		t.Error("kernel size never varied across seeds")
	}
}

func TestMotionKernel_AxisAligned(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		set   func(x, y, mid int) bool
	}{
		{"horizontal", 0, func(x, y, mid int) bool { return y == mid }},
		{"vertical", 90, func(x, y, mid int) bool { return x == mid }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const size = 5
			k := motionKernel(size, tt.angle)

			for y := 0; y < size; y++ {
				for x := 0; x < size; x++ {
					want := 0.0
					if tt.set(x, y, size/2) {
						want = 1.0
					}
					if got := k.Matrix[y*size+x]; got != want {
						t.Errorf("cell (%d,%d): got %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestMotionKernel_CoversCenterLine(t *testing.T) {
	for _, size := range []int{3, 5, 7} {
		for _, angle := range []float64{0, 30, 45, 60, 90, 135, 222.5} {
			k := motionKernel(size, angle)

			set := 0
			for _, v := range k.Matrix {
				if v == 1 {
					set++
				} else if v != 0 {
					t.Fatalf("size %d angle %v: cell value %v, want 0 or 1", size, angle, v)
				}
			}
			mid := size / 2
			if k.Matrix[mid*size+mid] != 1 {
				t.Errorf("size %d angle %v: center cell not set", size, angle)
			}
			if set < 2 {
				t.Errorf("size %d angle %v: only %d cells set", size, angle, set)
			}
		}
	}
}
