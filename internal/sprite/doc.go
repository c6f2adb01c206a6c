// Package sprite turns raw object instance photos into composable foreground
// cutouts.
//
// The pipeline has three steps, applied in order:
//
//  1. RemoveBackground classifies near-white pixels as background, giving the
//     image a meaningful alpha channel and zeroed background color channels.
//  2. An Augmentor applies randomized geometric and photometric transforms
//     (independent per-axis scaling, rotation with an expanded output canvas,
//     coin-flip mirroring, motion blur) in an order reshuffled on every call.
//  3. Extract locates the largest connected foreground region, crops the
//     pixels to its tight bounding rectangle and recomputes the binary mask
//     inside the crop.
//
// Every randomized decision draws from an explicit *rand.Rand supplied by the
// caller. Two calls with equally seeded sources produce identical output,
// which keeps whole-scene generation reproducible and lets scenes be built
// concurrently as long as each worker owns its source.
//
// Alpha is the single source of truth for foreground membership: background
// pixels hold alpha 0 with zeroed color channels, and any transform that
// introduces semi-transparent edge pixels (resampling, rotation fill, blur)
// simply widens the foreground slightly, since masking treats every nonzero
// alpha as foreground.
package sprite
