package scene

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"fruitgen/internal/sprite"
)

// ErrOversizedSprite is returned by Place when a sprite is at least as wide
// or tall as the canvas, leaving no valid placement range. Like an empty
// foreground, this aborts the scene so the caller can resample it.
var ErrOversizedSprite = errors.New("oversized foreground sprite")

// BBox is a bounding box normalized to canvas dimensions, in the order
// x, y, width, height. It marshals to the four-element JSON array the
// annotation format requires.
type BBox [4]float64

// Valid reports whether all components lie in [0, 1) and the box stays
// inside the unit square.
func (b BBox) Valid() bool {
	for _, v := range b {
		if v < 0 || v >= 1 {
			return false
		}
	}
	return b[0]+b[2] <= 1 && b[1]+b[3] <= 1
}

// Annotation labels one placed sprite with its class id and normalized
// bounding box.
type Annotation struct {
	ID  int  `json:"id"`
	Box BBox `json:"bbox"`
}

// Compositor places sprites onto fixed-size canvases.
type Compositor struct {
	Width  int
	Height int
}

// NewCanvas returns a fully transparent canvas of the compositor's size.
func (c Compositor) NewCanvas() *image.NRGBA {
	return image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
}

// Place composites sprites onto canvas in order, bottom-most first, and
// returns their normalized bounding boxes in the same order.
//
// Each sprite's top-left corner is drawn uniformly from the positions that
// keep the sprite fully on the canvas. Only the pixels covered by the
// sprite's mask are written; unmasked pixels inside the placement rectangle
// keep whatever an earlier sprite put there. The canvas must come from
// NewCanvas.
//
// Place fails with ErrOversizedSprite if any sprite is as large as the
// canvas in either dimension. The canvas may have been partially written at
// that point and should be discarded.
func (c Compositor) Place(r *rand.Rand, canvas *image.NRGBA, sprites []*sprite.Sprite) ([]BBox, error) {
	boxes := make([]BBox, 0, len(sprites))

	for _, sp := range sprites {
		w, h := sp.Width(), sp.Height()
		if w >= c.Width || h >= c.Height {
			return nil, fmt.Errorf("scene: sprite %dx%d on %dx%d canvas: %w",
				w, h, c.Width, c.Height, ErrOversizedSprite)
		}

		x := r.Intn(c.Width - w)
		y := r.Intn(c.Height - h)

		for sy := 0; sy < h; sy++ {
			for sx := 0; sx < w; sx++ {
				if sp.Mask.Pix[sy*sp.Mask.Stride+sx] == 0 {
					continue
				}
				src := sp.Pixels.PixOffset(sx, sy)
				dst := canvas.PixOffset(x+sx, y+sy)
				copy(canvas.Pix[dst:dst+4], sp.Pixels.Pix[src:src+4])
			}
		}

		boxes = append(boxes, BBox{
			float64(x) / float64(c.Width),
			float64(y) / float64(c.Height),
			float64(w) / float64(c.Width),
			float64(h) / float64(c.Height),
		})
	}

	return boxes, nil
}
