// Package catalog enumerates the object classes of a dataset split and
// resolves sampled instance references to image files on disk.
//
// A dataset split is a directory tree of the form
//
//	root/<label_name>/<NNNN>.<ext>
//
// with one subdirectory per object class and instance files numbered from
// 0000 upward. The catalog itself is built once per split and is read-only
// afterwards; label IDs are assigned by walk order and stay stable for the
// lifetime of the catalog.
package catalog

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoLabels is returned by Scan when the dataset root exists but contains
// no label subdirectories.
var ErrNoLabels = errors.New("no label directories found")

// Label describes one object class of a dataset split.
type Label struct {
	// ID is the label's position in walk order. It doubles as the class id
	// written to annotation files.
	ID int `json:"id"`

	// Name is the label directory's base name.
	Name string `json:"name"`

	// InstanceCount is the number of instance files found for this label.
	// Instance indices are sampled from [0, InstanceCount).
	InstanceCount int `json:"instance_count"`
}

// Catalog is the ordered set of labels found under a dataset root.
type Catalog struct {
	root   string
	labels []Label
}

// Scan builds a Catalog from the immediate subdirectories of root.
//
// Each subdirectory becomes one Label, in lexical directory order, with
// InstanceCount set to the number of regular files it contains. Scan fails
// if root cannot be read or if it contains no subdirectories at all.
func Scan(root string) (*Catalog, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading dataset root: %w", err)
	}

	var labels []Label
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		count, err := countInstances(root, entry.Name())
		if err != nil {
			return nil, err
		}
		labels = append(labels, Label{
			ID:            len(labels),
			Name:          entry.Name(),
			InstanceCount: count,
		})
	}

	if len(labels) == 0 {
		return nil, fmt.Errorf("catalog: %q: %w", root, ErrNoLabels)
	}

	return &Catalog{root: root, labels: labels}, nil
}

func countInstances(root, name string) (int, error) {
	entries, err := os.ReadDir(joinLabelDir(root, name))
	if err != nil {
		return 0, fmt.Errorf("catalog: reading label %q: %w", name, err)
	}
	count := 0
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			count++
		}
	}
	return count, nil
}

// Root returns the dataset root the catalog was scanned from.
func (c *Catalog) Root() string { return c.root }

// Len returns the number of labels.
func (c *Catalog) Len() int { return len(c.labels) }

// Labels returns the labels in id order. The returned slice is shared;
// callers must not modify it.
func (c *Catalog) Labels() []Label { return c.labels }

// Label returns the label with the given id.
func (c *Catalog) Label(id int) (Label, bool) {
	if id < 0 || id >= len(c.labels) {
		return Label{}, false
	}
	return c.labels[id], true
}
