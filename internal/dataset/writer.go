// Package dataset renders generated scenes to disk as training splits.
//
// A split is one output directory holding the scene images plus a combined
// annotation file, with a label-index file shared at the output root:
//
//	out/<split>/0000.png
//	out/<split>/anno.json    scene index -> ordered annotation list
//	out/id.json              label id -> label name
//
// Scene generation is deterministic for a given seed: scene i always draws
// from its own source seeded with seed+i, so the rendered bytes do not
// depend on how many workers happen to run.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"fruitgen/internal/catalog"
	"fruitgen/internal/scene"
	"fruitgen/internal/sprite"
)

// Output file names inside a split directory and at the output root.
const (
	AnnoFileName = "anno.json"
	IDFileName   = "id.json"
)

// DefaultMaxAttempts bounds how often one scene is resampled before the
// split is abandoned.
const DefaultMaxAttempts = 100

// Writer renders the scenes of dataset splits and writes them to disk.
type Writer struct {
	// OutDir is the output root. Every split becomes a subdirectory.
	OutDir string

	// Scenes is the number of scenes rendered per split.
	Scenes int

	// Seed is the base random seed. Scene i draws from seed+i.
	Seed int64

	// Workers bounds parallel scene rendering. Zero or negative uses one
	// worker per CPU.
	Workers int

	// MaxAttempts caps per-scene resampling. Zero uses DefaultMaxAttempts.
	MaxAttempts int

	// Log receives progress and summary events. nil disables logging.
	Log *zap.Logger
}

// WriteSplit renders all scenes of one split from gen and writes the split
// directory, its annotation file and the label-index file at the output
// root.
//
// The label-index file is rewritten for every split, so when splits are
// generated from different catalogs the last one written wins.
//
// A scene that fails with an empty foreground or an oversized sprite is
// resampled with fresh draws from its own random source until it succeeds
// or MaxAttempts is reached. Any other generation error aborts the split.
func (w *Writer) WriteSplit(gen *scene.Generator, split string) error {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}

	splitDir := filepath.Join(w.OutDir, split)
	if err := os.MkdirAll(splitDir, 0o755); err != nil {
		return fmt.Errorf("dataset: creating split directory: %w", err)
	}

	annos := make([][]scene.Annotation, w.Scenes)
	errs := make([]error, w.Scenes)

	workers := w.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > w.Scenes {
		workers = w.Scenes
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for k := 0; k < workers; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				annos[i], errs[i] = w.writeScene(gen, log, splitDir, i)
			}
		}()
	}
	for i := 0; i < w.Scenes; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	annoMap := make(map[string][]scene.Annotation, w.Scenes)
	for i, list := range annos {
		annoMap[sceneName(i)] = list
	}
	if err := writeJSON(filepath.Join(splitDir, AnnoFileName), annoMap); err != nil {
		return err
	}

	labels := gen.Source.Labels()
	ids := make(map[string]string, len(labels))
	for _, l := range labels {
		ids[strconv.Itoa(l.ID)] = l.Name
	}
	if err := writeJSON(filepath.Join(w.OutDir, IDFileName), ids); err != nil {
		return err
	}

	logSummary(log, split, annos, labels)
	return nil
}

func (w *Writer) writeScene(gen *scene.Generator, log *zap.Logger, dir string, i int) ([]scene.Annotation, error) {
	r := rand.New(rand.NewSource(w.Seed + int64(i)))

	maxAttempts := w.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	var sc *scene.Scene
	for attempt := 1; ; attempt++ {
		var err error
		sc, err = gen.Scene(r)
		if err == nil {
			break
		}
		if !resampleable(err) {
			return nil, fmt.Errorf("dataset: scene %s: %w", sceneName(i), err)
		}
		if attempt >= maxAttempts {
			return nil, fmt.Errorf("dataset: scene %s: no usable scene after %d attempts: %w",
				sceneName(i), attempt, err)
		}
		log.Debug("resampling scene",
			zap.Int("scene", i),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}

	path := filepath.Join(dir, sceneName(i)+".png")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: creating scene image: %w", err)
	}
	if err := png.Encode(f, sc.Canvas); err != nil {
		f.Close()
		return nil, fmt.Errorf("dataset: encoding %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("dataset: closing %q: %w", path, err)
	}

	return sc.Annotations, nil
}

// resampleable reports whether a generation error means the scene draw was
// unlucky rather than the inputs being broken.
func resampleable(err error) bool {
	return errors.Is(err, sprite.ErrEmptyForeground) || errors.Is(err, scene.ErrOversizedSprite)
}

func sceneName(i int) string {
	return fmt.Sprintf("%04d", i)
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("dataset: encoding %q: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("dataset: writing %q: %w", path, err)
	}
	return nil
}

// logSummary reports split-level statistics: scene and object counts, the
// mean and spread of normalized box areas, and objects per label.
func logSummary(log *zap.Logger, split string, annos [][]scene.Annotation, labels []catalog.Label) {
	names := make(map[int]string, len(labels))
	for _, l := range labels {
		names[l.ID] = l.Name
	}

	var areas []float64
	perLabel := make(map[string]int, len(labels))
	for _, list := range annos {
		for _, a := range list {
			areas = append(areas, a.Box[2]*a.Box[3])
			perLabel[names[a.ID]]++
		}
	}

	fields := []zap.Field{
		zap.String("split", split),
		zap.Int("scenes", len(annos)),
		zap.Int("objects", len(areas)),
		zap.Any("objects_per_label", perLabel),
	}
	if len(areas) > 0 {
		fields = append(fields,
			zap.Float64("mean_box_area", stat.Mean(areas, nil)),
			zap.Float64("stddev_box_area", stat.StdDev(areas, nil)),
		)
	}
	log.Info("split written", fields...)
}
