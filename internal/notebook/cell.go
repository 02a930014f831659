package notebook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Cell type tags as stored in the ipynb cell_type field.
const (
	Markdown = "markdown"
	Code     = "code"
	Raw      = "raw"
)

// Cell is one notebook cell. Fields beyond the type tag and source are opaque
// passthrough: they are preserved byte-for-byte across a load/save round trip.
type Cell struct {
	Type           string          `json:"cell_type"`
	ID             string          `json:"id,omitempty"`
	Metadata       json.RawMessage `json:"metadata"`
	Source         SourceLines     `json:"source"`
	Attachments    json.RawMessage `json:"attachments,omitempty"`
	Outputs        json.RawMessage `json:"outputs,omitempty"`
	ExecutionCount json.RawMessage `json:"execution_count,omitempty"`
}

// NewMarkdownCell builds a markdown cell from source lines. When withID is set
// the cell gets a fresh nbformat 4.5 style id.
func NewMarkdownCell(lines []string, withID bool) Cell {
	c := Cell{
		Type:     Markdown,
		Metadata: json.RawMessage("{}"),
		Source:   SourceLines(lines),
	}
	if withID {
		c.ID = uuid.NewString()[:8]
	}
	return c
}

// SourceLines is a cell's source. The ipynb format allows either a single
// string or a list of strings here; both decode to a line list and always
// re-encode as a list.
type SourceLines []string

func (s *SourceLines) UnmarshalJSON(data []byte) error {
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*s = lines
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: cell source is neither a string nor a list of strings", ErrMalformed)
	}
	if text == "" {
		*s = SourceLines{}
		return nil
	}

	lines = strings.SplitAfter(text, "\n")
	// SplitAfter leaves an empty tail when the text ends with a newline.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	*s = lines
	return nil
}

func (s SourceLines) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// SplitEOL separates a source line from its trailing newline, so line
// rewrites can preserve the original line ending.
func SplitEOL(line string) (text, eol string) {
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}
