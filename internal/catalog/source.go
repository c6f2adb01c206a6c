package catalog

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"

	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultInstanceExt is the file extension instance images carry unless a
// source is configured otherwise.
const DefaultInstanceExt = ".jpg"

// Dir serves instance images straight from the catalog's directory tree.
//
// Instance reads are intentionally uncached: scene generation samples with
// replacement across a whole split, and holding decoded instances would
// trade unbounded memory for reads the OS page cache already absorbs. Every
// Instance call opens and decodes the file fresh.
type Dir struct {
	cat *Catalog
	ext string
}

// NewDir returns a Dir source for cat. ext is the instance file extension
// including the leading dot; if empty, DefaultInstanceExt is used.
func NewDir(cat *Catalog, ext string) *Dir {
	if ext == "" {
		ext = DefaultInstanceExt
	}
	return &Dir{cat: cat, ext: ext}
}

// Labels returns the underlying catalog's labels in id order.
func (d *Dir) Labels() []Label { return d.cat.Labels() }

// Instance loads the raw image for one sampled instance reference.
// The index must be in [0, InstanceCount) for the label.
func (d *Dir) Instance(labelID, index int) (image.Image, error) {
	label, ok := d.cat.Label(labelID)
	if !ok {
		return nil, fmt.Errorf("catalog: no label with id %d", labelID)
	}
	if index < 0 || index >= label.InstanceCount {
		return nil, fmt.Errorf("catalog: label %q: instance index %d out of range [0, %d)",
			label.Name, index, label.InstanceCount)
	}

	path := d.InstancePath(label, index)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: opening instance: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("catalog: decoding %q: %w", path, err)
	}
	return img, nil
}

// InstancePath returns the on-disk path for an instance of label. Instance
// files are numbered with a zero-padded four digit index.
func (d *Dir) InstancePath(label Label, index int) string {
	return filepath.Join(joinLabelDir(d.cat.root, label.Name), fmt.Sprintf("%04d%s", index, d.ext))
}

func joinLabelDir(root, name string) string {
	return filepath.Join(root, name)
}
