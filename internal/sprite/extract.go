package sprite

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrEmptyForeground is returned by Extract when not a single foreground
// pixel survives augmentation. The scene being built from the sprite cannot
// be completed and should be resampled from scratch.
var ErrEmptyForeground = errors.New("sprite: empty foreground mask")

// Sprite is a cropped, background-free foreground cutout with its binary
// mask. A sprite owns its buffers exclusively; it is produced once per
// sampled instance and consumed once by the compositor.
type Sprite struct {
	// Pixels holds the cropped RGBA data.
	Pixels *image.NRGBA

	// Mask marks foreground pixels inside the crop with 255 and background
	// with 0. It shares dimensions with Pixels.
	Mask *image.Gray

	// Rect is the tight bounding rectangle in the coordinates of the image
	// the sprite was extracted from.
	Rect image.Rectangle
}

// Width returns the sprite width in pixels.
func (s *Sprite) Width() int { return s.Rect.Dx() }

// Height returns the sprite height in pixels.
func (s *Sprite) Height() int { return s.Rect.Dy() }

// Extract crops an augmented image to the tight bounding rectangle of its
// largest connected foreground region.
//
// Foreground membership is alpha > 0; background pixels were zeroed during
// background removal and transform fill, so this is equivalent to a nonzero
// grayscale test. Selecting the largest 8-connected region guards against
// stray interpolation artifacts becoming the crop target. The mask is then
// recomputed inside the crop, so foreground pixels of smaller regions that
// happen to fall within the rectangle remain part of the sprite.
//
// Returns ErrEmptyForeground when the image contains no foreground at all.
func Extract(img *image.NRGBA) (*Sprite, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	fg := make([]bool, w*h)
	found := false
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)+3] > 0 {
				fg[y*w+x] = true
				found = true
			}
		}
	}
	if !found {
		return nil, ErrEmptyForeground
	}

	reg := largestRegion(fg, w, h)
	rect := image.Rect(
		b.Min.X+reg.minX,
		b.Min.Y+reg.minY,
		b.Min.X+reg.maxX+1,
		b.Min.Y+reg.maxY+1,
	)

	cropped := imaging.Crop(img, rect)
	cw, ch := cropped.Bounds().Dx(), cropped.Bounds().Dy()

	mask := image.NewGray(image.Rect(0, 0, cw, ch))
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if cropped.Pix[y*cropped.Stride+x*4+3] > 0 {
				mask.Pix[y*mask.Stride+x] = 0xff
			}
		}
	}

	return &Sprite{Pixels: cropped, Mask: mask, Rect: rect}, nil
}

// region accumulates the extent of one connected foreground region.
type region struct {
	area                   int
	minX, minY, maxX, maxY int
}

// largestRegion groups foreground pixels into 8-connected regions with an
// iterative, stack-based flood fill and returns the one covering the most
// pixels. fg must contain at least one set pixel.
func largestRegion(fg []bool, w, h int) region {
	visited := make([]bool, len(fg))
	stack := make([]image.Point, 0, 64)

	var best region
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg[y*w+x] || visited[y*w+x] {
				continue
			}

			reg := region{minX: x, minY: y, maxX: x, maxY: y}
			visited[y*w+x] = true
			stack = append(stack[:0], image.Pt(x, y))

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				reg.area++
				if p.X < reg.minX {
					reg.minX = p.X
				}
				if p.X > reg.maxX {
					reg.maxX = p.X
				}
				if p.Y < reg.minY {
					reg.minY = p.Y
				}
				if p.Y > reg.maxY {
					reg.maxY = p.Y
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || nx >= w || ny < 0 || ny >= h {
							continue
						}
						idx := ny*w + nx
						if fg[idx] && !visited[idx] {
							visited[idx] = true
							stack = append(stack, image.Pt(nx, ny))
						}
					}
				}
			}

			if reg.area > best.area {
				best = reg
			}
		}
	}
	return best
}
