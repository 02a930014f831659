// Package heading numbers ATX headings across a notebook's markdown cells.
package heading

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gtmaskall/jnp/internal/notebook"
)

// ErrNegativeStart rejects a negative start number before any cell is touched.
var ErrNegativeStart = errors.New("start number must be >= 0")

// MaxLevel is the deepest ATX heading level.
const MaxLevel = 6

var (
	// 1-6 hashes at the start of the line followed by whitespace. Seven or
	// more hashes, indented hashes, or a missing space ("#NoSpace") do not
	// make a heading.
	atxRe = regexp.MustCompile(`^(#{1,6})[ \t]+(.*)$`)

	// A previously assigned number at the front of heading text, e.g. "1.2 ".
	// Any single punctuation separator is recognized so renumbering with a
	// different separator still strips the old prefix.
	numberRe = regexp.MustCompile(`^\d+([^0-9A-Za-z\s]\d+)*[ \t]+`)
)

// Level returns the ATX heading level of a source line, or 0 when the line
// is not a heading.
func Level(line string) int {
	text, _ := notebook.SplitEOL(line)
	m := atxRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return len(m[1])
}

// StripNumber removes a leading hierarchical number from heading text, so
// renumbering never stacks numbers.
func StripNumber(text string) string {
	return numberRe.ReplaceAllString(text, "")
}

// Counters holds the running heading count per level. It is threaded through
// the numbering walk explicitly; there is no ambient state.
type Counters [MaxLevel]int

// Bump increments the counter for level (1-based) and zeroes every deeper
// level, so a fresh "2" discards any stale "2.x" progress.
func (c *Counters) Bump(level int) {
	c[level-1]++
	for i := level; i < MaxLevel; i++ {
		c[i] = 0
	}
}

// Number composes the dot-joined number down to level. Slots that were never
// incremented clamp at 0, so a subheading before any level-1 heading reads
// "0.0.1" rather than going negative.
func (c Counters) Number(level int, sep string) string {
	parts := make([]string, level)
	for i := 0; i < level; i++ {
		v := c[i]
		if v < 0 {
			v = 0
		}
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}

// Top returns the raw level-1 counter, which a caller chaining several
// notebooks feeds (plus one) into the next notebook's start number.
func (c Counters) Top() int {
	return c[0]
}

// Numberer rewrites heading lines with hierarchical numbers.
type Numberer struct {
	sep string
}

// NewNumberer creates a numberer joining number parts with sep ("." when
// empty).
func NewNumberer(sep string) *Numberer {
	if sep == "" {
		sep = "."
	}
	return &Numberer{sep: sep}
}

// NumberAll numbers every heading in document order, seeding the level-1
// counter so the first level-1 heading is numbered startAt. The input cells
// are not mutated; the returned counters carry the final state for series
// chaining. Running the result through NumberAll again with the same startAt
// is a no-op.
func (n *Numberer) NumberAll(cells []notebook.Cell, startAt int) ([]notebook.Cell, Counters, error) {
	if startAt < 0 {
		return nil, Counters{}, fmt.Errorf("%w: got %d", ErrNegativeStart, startAt)
	}

	var counters Counters
	counters[0] = startAt - 1

	out := make([]notebook.Cell, len(cells))
	copy(out, cells)
	for i := range out {
		if out[i].Type != notebook.Markdown {
			continue
		}
		lines := make(notebook.SourceLines, len(out[i].Source))
		for j, line := range out[i].Source {
			lines[j] = n.numberLine(line, &counters)
		}
		out[i].Source = lines
	}
	return out, counters, nil
}

func (n *Numberer) numberLine(line string, c *Counters) string {
	text, eol := notebook.SplitEOL(line)
	m := atxRe.FindStringSubmatch(text)
	if m == nil {
		return line
	}
	level := len(m[1])
	c.Bump(level)
	title := StripNumber(strings.TrimSpace(m[2]))
	return m[1] + " " + c.Number(level, n.sep) + " " + title + eol
}
