// Package vott converts VoTT-exported YOLO text annotations into the
// combined JSON annotation format generated datasets use.
//
// Each input file holds one object per line, `class_id x y w h`, with the
// box already normalized. The converter only reshapes the data; it never
// validates boxes and never touches image files.
package vott

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fruitgen/internal/scene"
)

// Convert walks dir recursively and parses every .txt annotation file it
// finds. The result maps each file's base name without extension to its
// annotations in line order. Files without records map to an empty list.
func Convert(dir string) (map[string][]scene.Annotation, error) {
	out := make(map[string][]scene.Annotation)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".txt") {
			return nil
		}
		annos, err := parseFile(path)
		if err != nil {
			return err
		}
		out[strings.TrimSuffix(d.Name(), ".txt")] = annos
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vott: %w", err)
	}
	return out, nil
}

// WriteAnno writes the combined annotation map as JSON to path.
func WriteAnno(path string, annos map[string][]scene.Annotation) error {
	data, err := json.Marshal(annos)
	if err != nil {
		return fmt.Errorf("vott: encoding annotations: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("vott: writing %q: %w", path, err)
	}
	return nil
}

func parseFile(path string) ([]scene.Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	annos := []scene.Annotation{}
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		a, err := parseLine(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		annos = append(annos, a)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return annos, nil
}

// parseLine parses one `class_id x y w h` record.
func parseLine(text string) (scene.Annotation, error) {
	fields := strings.Fields(text)
	if len(fields) != 5 {
		return scene.Annotation{}, fmt.Errorf("want 5 fields, got %d", len(fields))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return scene.Annotation{}, fmt.Errorf("class id %q: %w", fields[0], err)
	}

	var box scene.BBox
	for i, field := range fields[1:] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return scene.Annotation{}, fmt.Errorf("bbox value %q: %w", field, err)
		}
		box[i] = v
	}

	return scene.Annotation{ID: id, Box: box}, nil
}
