package scene

import (
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"fruitgen/internal/sprite"
)

// solidSprite builds a fully masked sprite of one color.
func solidSprite(t *testing.T, w, h int, c color.NRGBA) *sprite.Sprite {
	t.Helper()
	px := image.NewNRGBA(image.Rect(0, 0, w, h))
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px.SetNRGBA(x, y, c)
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return &sprite.Sprite{Pixels: px, Mask: mask, Rect: image.Rect(0, 0, w, h)}
}

func TestBBoxValid(t *testing.T) {
	tests := []struct {
		name string
		box  BBox
		want bool
	}{
		{"typical", BBox{0.1, 0.2, 0.3, 0.4}, true},
		{"zero origin", BBox{0, 0, 0.5, 0.5}, true},
		{"fills unit square", BBox{0, 0, 0.999, 0.999}, true},
		{"negative x", BBox{-0.1, 0, 0.5, 0.5}, false},
		{"x at one", BBox{1, 0, 0.1, 0.1}, false},
		{"overflows right", BBox{0.8, 0, 0.3, 0.1}, false},
		{"overflows bottom", BBox{0, 0.9, 0.1, 0.2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Valid(); got != tt.want {
				t.Errorf("Valid(%v) = %v, want %v", tt.box, got, tt.want)
			}
		})
	}
}

func TestAnnotationJSON(t *testing.T) {
	a := Annotation{ID: 2, Box: BBox{0.25, 0.5, 0.125, 0.25}}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"id":2,"bbox":[0.25,0.5,0.125,0.25]}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}
}

func TestPlace_WritesMaskedPixels(t *testing.T) {
	// Canvas is one pixel larger than the sprite in each dimension, so the
	// only valid placement is (0, 0).
	c := Compositor{Width: 6, Height: 5}
	canvas := c.NewCanvas()
	red := color.NRGBA{200, 0, 0, 255}

	boxes, err := c.Place(rand.New(rand.NewSource(1)), canvas, []*sprite.Sprite{
		solidSprite(t, 5, 4, red),
	})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}

	want := BBox{0, 0, 5.0 / 6, 4.0 / 5}
	if len(boxes) != 1 || boxes[0] != want {
		t.Errorf("boxes: got %v, want [%v]", boxes, want)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			if got := canvas.NRGBAAt(x, y); got != red {
				t.Fatalf("canvas (%d,%d): got %+v, want sprite color", x, y, got)
			}
		}
	}
	if got := canvas.NRGBAAt(5, 4); got.A != 0 {
		t.Errorf("pixel outside placement written: %+v", got)
	}
}

func TestPlace_LaterSpriteOccludesWhereMasked(t *testing.T) {
	c := Compositor{Width: 4, Height: 4}
	canvas := c.NewCanvas()
	red := color.NRGBA{200, 0, 0, 255}
	blue := color.NRGBA{0, 0, 200, 255}

	bottom := solidSprite(t, 3, 3, red)
	top := solidSprite(t, 3, 3, blue)
	// Only the top-left pixel of the later sprite is masked.
	for i := range top.Mask.Pix {
		top.Mask.Pix[i] = 0
	}
	top.Mask.SetGray(0, 0, color.Gray{Y: 255})

	boxes, err := c.Place(rand.New(rand.NewSource(1)), canvas, []*sprite.Sprite{bottom, top})
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if len(boxes) != 2 {
		t.Fatalf("got %d boxes, want 2", len(boxes))
	}

	if got := canvas.NRGBAAt(0, 0); got != blue {
		t.Errorf("occluded pixel: got %+v, want top sprite color", got)
	}
	if got := canvas.NRGBAAt(1, 1); got != red {
		t.Errorf("unmasked overlap pixel: got %+v, want bottom sprite color", got)
	}
}

func TestPlace_OversizedSprite(t *testing.T) {
	c := Compositor{Width: 10, Height: 10}

	tests := []struct {
		name string
		w, h int
	}{
		{"width equals canvas", 10, 5},
		{"height equals canvas", 5, 10},
		{"both exceed canvas", 12, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := solidSprite(t, tt.w, tt.h, color.NRGBA{1, 2, 3, 255})

			_, err := c.Place(rand.New(rand.NewSource(1)), c.NewCanvas(), []*sprite.Sprite{sp})
			if !errors.Is(err, ErrOversizedSprite) {
				t.Fatalf("got %v, want ErrOversizedSprite", err)
			}
		})
	}
}

func TestPlace_BoxesNormalized(t *testing.T) {
	c := Compositor{Width: 100, Height: 80}
	sprites := []*sprite.Sprite{
		solidSprite(t, 30, 20, color.NRGBA{10, 10, 10, 255}),
		solidSprite(t, 7, 50, color.NRGBA{20, 20, 20, 255}),
		solidSprite(t, 99, 79, color.NRGBA{30, 30, 30, 255}),
	}

	for seed := int64(0); seed < 5; seed++ {
		boxes, err := c.Place(rand.New(rand.NewSource(seed)), c.NewCanvas(), sprites)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		for i, box := range boxes {
			if !box.Valid() {
				t.Errorf("seed %d: box %d invalid: %v", seed, i, box)
			}
			wantW := float64(sprites[i].Width()) / 100
			wantH := float64(sprites[i].Height()) / 80
			if box[2] != wantW || box[3] != wantH {
				t.Errorf("seed %d: box %d size (%v,%v), want (%v,%v)",
					seed, i, box[2], box[3], wantW, wantH)
			}
		}
	}
}
