// Package scene assembles synthetic training scenes from foreground sprites.
//
// A scene starts as a fully transparent canvas of fixed dimensions. Sprites
// are placed one after another at uniformly random positions; each sprite
// overwrites only the canvas pixels covered by its own mask, so a sprite
// placed later occludes earlier ones exactly where it is opaque while the
// earlier sprites stay visible everywhere else. After all placements, every
// pixel that is still mostly transparent is painted with a single backdrop
// color drawn from a palette.
//
// # Annotations
//
// Each placement produces one bounding box normalized to canvas size:
// (x/W, y/H, w/W, h/H), all values in [0, 1). Annotation order equals
// placement order, which equals sampling order, so the first annotation
// always describes the bottom-most object.
//
// # Randomness
//
// Nothing in this package seeds or stores random state. Every operation
// that draws random numbers takes an explicit *rand.Rand, making a scene a
// pure function of (source content, random state). Callers that need
// reproducible datasets hand each scene its own deterministically seeded
// generator.
package scene
