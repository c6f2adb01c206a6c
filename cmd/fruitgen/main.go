// Command fruitgen renders synthetic object-detection training datasets.
//
// For every configured split it scans an instance catalog, composites
// randomly augmented instance cutouts into scenes and writes the scene
// images together with their bounding-box annotations.
//
// Usage: fruitgen [options]
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"fruitgen/internal/catalog"
	"fruitgen/internal/config"
	"fruitgen/internal/dataset"
	"fruitgen/internal/scene"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	flagConfig      = flag.String("config", "", "YAML config file")
	flagData        = flag.String("data", "./data", "dataset root with one subdirectory per split")
	flagOut         = flag.String("out", "./generated", "output root")
	flagSplits      = flag.String("splits", "training,test", "comma-separated split names")
	flagExt         = flag.String("ext", ".jpg", "instance image file extension")
	flagWidth       = flag.Int("width", 800, "scene width in pixels")
	flagHeight      = flag.Int("height", 600, "scene height in pixels")
	flagScenes      = flag.Int("scenes", 1000, "scenes per split")
	flagSeed        = flag.Int64("seed", 0, "base random seed (0 derives one from the clock)")
	flagWorkers     = flag.Int("workers", 0, "parallel scene workers (0 uses one per CPU)")
	flagAttempts    = flag.Int("attempts", 100, "resample attempts per scene")
	flagPaletteFrom = flag.String("palette-from", "", "derive the backdrop palette from this image")
	flagLogJSON     = flag.Bool("log-json", false, "emit JSON logs")
	flagVersion     = flag.Bool("version", false, "print version information")
)

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("fruitgen %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	}

	log, err := buildLogger(*flagLogJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fruitgen: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("generation failed", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return err
	}
	applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	seed := cfg.Generate.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	palette := scene.DefaultPalette()
	if cfg.Generate.PaletteFrom != "" {
		palette, err = paletteFromFile(cfg.Generate.PaletteFrom, len(palette))
		if err != nil {
			return err
		}
	}

	log.Info("generating dataset",
		zap.String("data", cfg.Data.Root),
		zap.String("out", cfg.Data.OutDir),
		zap.Strings("splits", cfg.Data.Splits),
		zap.Int("scenes", cfg.Generate.Scenes),
		zap.Int64("seed", seed),
		zap.String("version", Version))

	for i, split := range cfg.Data.Splits {
		cat, err := catalog.Scan(filepath.Join(cfg.Data.Root, split))
		if err != nil {
			return err
		}
		log.Info("catalog scanned",
			zap.String("split", split),
			zap.Int("labels", cat.Len()))

		gen := scene.NewGenerator(
			catalog.NewDir(cat, cfg.Data.InstanceExt),
			cfg.Canvas.Width, cfg.Canvas.Height)
		gen.Palette = palette

		// Each split consumes its own block of per-scene seeds so splits
		// sharing a base seed never render identical scenes.
		writer := &dataset.Writer{
			OutDir:      cfg.Data.OutDir,
			Scenes:      cfg.Generate.Scenes,
			Seed:        seed + int64(i)*int64(cfg.Generate.Scenes),
			Workers:     cfg.Generate.Workers,
			MaxAttempts: cfg.Generate.MaxAttempts,
			Log:         log,
		}
		if err := writer.WriteSplit(gen, split); err != nil {
			return err
		}
	}
	return nil
}

// applyOverrides copies explicitly set flags over the loaded config, so a
// config file and command line flags compose.
func applyOverrides(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data.Root = *flagData
		case "out":
			cfg.Data.OutDir = *flagOut
		case "splits":
			cfg.Data.Splits = splitList(*flagSplits)
		case "ext":
			cfg.Data.InstanceExt = *flagExt
		case "width":
			cfg.Canvas.Width = *flagWidth
		case "height":
			cfg.Canvas.Height = *flagHeight
		case "scenes":
			cfg.Generate.Scenes = *flagScenes
		case "seed":
			cfg.Generate.Seed = *flagSeed
		case "workers":
			cfg.Generate.Workers = *flagWorkers
		case "attempts":
			cfg.Generate.MaxAttempts = *flagAttempts
		case "palette-from":
			cfg.Generate.PaletteFrom = *flagPaletteFrom
		}
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func buildLogger(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func paletteFromFile(path string, size int) ([]color.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("palette image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("palette image %q: %w", path, err)
	}
	return scene.PaletteFromImage(img, size)
}
