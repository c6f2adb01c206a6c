package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math/rand"

	"fruitgen/internal/catalog"
	"fruitgen/internal/sprite"
)

// Sprite counts per scene. The count is drawn uniformly from
// [MinSpriteCount, MaxSpriteCount].
const (
	MinSpriteCount = 1
	MaxSpriteCount = 3
)

// Source supplies the label set and decoded instance images for sampling.
// *catalog.Dir implements it; tests substitute in-memory fakes.
type Source interface {
	Labels() []catalog.Label
	Instance(labelID, index int) (image.Image, error)
}

// Scene is one finished training image with its annotations in occlusion
// order: the first annotation describes the bottom-most sprite.
type Scene struct {
	Canvas      *image.NRGBA
	Annotations []Annotation
}

// Generator runs the full per-scene pipeline: sample instances, prepare
// sprites, composite, fill the backdrop.
type Generator struct {
	// Source provides labels and instance images.
	Source Source

	// Compositor fixes the canvas dimensions.
	Compositor Compositor

	// Augmentor transforms each background-removed instance. nil applies
	// no augmentation, which makes scenes depend only on placement draws.
	Augmentor *sprite.Augmentor

	// Palette supplies the backdrop colors. nil or empty falls back to
	// DefaultPalette.
	Palette []color.NRGBA
}

// NewGenerator returns a Generator over src with the default augmentation
// stages and backdrop palette.
func NewGenerator(src Source, width, height int) *Generator {
	return &Generator{
		Source:     src,
		Compositor: Compositor{Width: width, Height: height},
		Augmentor:  sprite.NewAugmentor(),
		Palette:    DefaultPalette(),
	}
}

// Scene generates one scene from r.
//
// It draws a sprite count from [MinSpriteCount, MaxSpriteCount], samples
// that many (label, instance) pairs uniformly with replacement, prepares
// and extracts a sprite from each instance in sampling order, composites
// the sprites in the same order and fills the backdrop.
//
// Scene fails with sprite.ErrEmptyForeground or ErrOversizedSprite when a
// drawn sprite cannot be used; both mean the whole scene should be
// resampled with fresh draws from the same r. Any other error is not
// recoverable by resampling.
func (g *Generator) Scene(r *rand.Rand) (*Scene, error) {
	labels := g.Source.Labels()
	if len(labels) == 0 {
		return nil, errors.New("scene: source has no labels")
	}

	count := MinSpriteCount + r.Intn(MaxSpriteCount-MinSpriteCount+1)

	ids := make([]int, 0, count)
	sprites := make([]*sprite.Sprite, 0, count)
	for i := 0; i < count; i++ {
		label := labels[r.Intn(len(labels))]
		if label.InstanceCount == 0 {
			return nil, fmt.Errorf("scene: label %q has no instances", label.Name)
		}
		index := r.Intn(label.InstanceCount)

		img, err := g.Source.Instance(label.ID, index)
		if err != nil {
			return nil, err
		}

		prepared := sprite.RemoveBackground(img)
		if g.Augmentor != nil {
			prepared = g.Augmentor.Apply(r, prepared)
		}
		sp, err := sprite.Extract(prepared)
		if err != nil {
			return nil, err
		}

		ids = append(ids, label.ID)
		sprites = append(sprites, sp)
	}

	canvas := g.Compositor.NewCanvas()
	boxes, err := g.Compositor.Place(r, canvas, sprites)
	if err != nil {
		return nil, err
	}

	palette := g.Palette
	if len(palette) == 0 {
		palette = DefaultPalette()
	}
	FillBackdrop(r, canvas, palette)

	annotations := make([]Annotation, len(boxes))
	for i, box := range boxes {
		annotations[i] = Annotation{ID: ids[i], Box: box}
	}
	return &Scene{Canvas: canvas, Annotations: annotations}, nil
}
