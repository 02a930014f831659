// Package notebook models Jupyter notebook files as an ordered cell list and
// handles their JSON (de)serialization. Everything the processing pipeline
// does not understand is carried through unchanged.
package notebook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMalformed reports notebook content that does not have the expected
// ipynb shape.
var ErrMalformed = errors.New("malformed notebook")

// Notebook is a parsed ipynb file. Notebook-level metadata and format
// numbers are opaque passthrough.
type Notebook struct {
	Cells         []Cell          `json:"cells"`
	Metadata      json.RawMessage `json:"metadata"`
	NBFormat      int             `json:"nbformat"`
	NBFormatMinor int             `json:"nbformat_minor"`
}

// Read loads a notebook from disk.
func Read(path string) (*Notebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	nb, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nb, nil
}

// Parse decodes ipynb JSON and validates the cell list shape.
func Parse(data []byte) (*Notebook, error) {
	var nb Notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		if errors.Is(err, ErrMalformed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if nb.Cells == nil {
		return nil, fmt.Errorf("%w: no cells list (nbformat 3 notebooks are not supported)", ErrMalformed)
	}
	for i := range nb.Cells {
		c := &nb.Cells[i]
		switch c.Type {
		case Markdown, Code, Raw:
		default:
			return nil, fmt.Errorf("%w: cell %d has unknown cell_type %q", ErrMalformed, i, c.Type)
		}
		if c.Metadata == nil {
			c.Metadata = json.RawMessage("{}")
		}
	}
	if nb.Metadata == nil {
		nb.Metadata = json.RawMessage("{}")
	}
	return &nb, nil
}

// Bytes serializes the notebook the way Jupyter writes it: one-space indent,
// no HTML escaping, trailing POSIX newline.
func (nb *Notebook) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(nb); err != nil {
		return nil, fmt.Errorf("encode notebook: %w", err)
	}
	return buf.Bytes(), nil
}

// Write persists the notebook to path, overwriting an existing file via a
// temp file and rename in the same directory. The write is skipped when the
// serialized content equals what is already on disk; the returned bool
// reports whether the file was rewritten.
func (nb *Notebook) Write(path string) (bool, error) {
	data, err := nb.Bytes()
	if err != nil {
		return false, err
	}

	if current, err := os.ReadFile(path); err == nil && bytes.Equal(current, data) {
		return false, nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".jnp-*.tmp")
	if err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// HasCellIDs reports whether any cell carries an nbformat 4.5 id, which
// decides whether newly inserted cells should get one too.
func (nb *Notebook) HasCellIDs() bool {
	for i := range nb.Cells {
		if nb.Cells[i].ID != "" {
			return true
		}
	}
	return false
}
