package banner

import (
	"fmt"
	"path/filepath"
	"strings"

	"parallax-banner/internal/utils"
)

// Catalog is the ordered set of descriptor files a selector can step
// through.
type Catalog struct {
	paths   []string
	current int
}

func OpenCatalog(path string) (*Catalog, error) {
	paths, err := utils.ListDescriptors(path)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no banner descriptors in %s", path)
	}
	return &Catalog{paths: paths}, nil
}

func (c *Catalog) Len() int { return len(c.paths) }

func (c *Catalog) Index() int { return c.current }

func (c *Catalog) Path() string { return c.paths[c.current] }

// Name is the current entry's file name without extension.
func (c *Catalog) Name() string {
	base := filepath.Base(c.Path())
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Seek moves to index i, wrapping in both directions.
func (c *Catalog) Seek(i int) {
	n := len(c.paths)
	c.current = ((i % n) + n) % n
}

func (c *Catalog) Next() { c.Seek(c.current + 1) }

func (c *Catalog) Prev() { c.Seek(c.current - 1) }

// Load decodes the current entry.
func (c *Catalog) Load() (Descriptor, error) {
	return LoadFile(c.Path())
}

// Find moves to the entry named name and reports whether it exists.
func (c *Catalog) Find(name string) bool {
	for i, p := range c.paths {
		base := filepath.Base(p)
		if strings.TrimSuffix(base, filepath.Ext(base)) == name {
			c.current = i
			return true
		}
	}
	return false
}
