// Package crawler discovers notebook files under a directory tree.
package crawler

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Crawler scans a directory for notebook files.
type Crawler struct {
	ignored []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler() *Crawler {
	return &Crawler{
		ignored: []string{".git", ".ipynb_checkpoints", "node_modules", "vendor"},
	}
}

// ScanNotebooks walks the root directory and streams every .ipynb path to
// the callback in lexical order.
func (c *Crawler) ScanNotebooks(root string, onNotebook func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored and hidden directories (but never the root itself,
		// which may legitimately be "." or a dot-directory).
		if d.IsDir() {
			if path == root {
				return nil
			}
			if c.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), ".ipynb") {
			return nil
		}

		onNotebook(path)
		return nil
	})
}

// Collect gathers every notebook path under root into a slice.
func (c *Crawler) Collect(root string) ([]string, error) {
	var paths []string
	err := c.ScanNotebooks(root, func(path string) {
		paths = append(paths, path)
	})
	return paths, err
}

func (c *Crawler) skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}
