// Package toc builds and maintains a generated table-of-contents cell.
package toc

import (
	"strings"

	"github.com/yuin/goldmark"

	"github.com/gtmaskall/jnp/internal/heading"
	"github.com/gtmaskall/jnp/internal/notebook"
)

// Marker is the sentinel embedded as the first line of the managed TOC cell.
// An HTML comment renders invisibly and will not collide with authored text.
const Marker = "<!-- jnp:contents -->"

// Builder derives a heading outline and inserts or refreshes the TOC cell.
type Builder struct {
	parser goldmark.Markdown
}

func NewBuilder() *Builder {
	return &Builder{parser: goldmark.New()}
}

// IsTOCCell reports whether a cell is the machine-managed contents cell.
func IsTOCCell(c notebook.Cell) bool {
	if c.Type != notebook.Markdown || len(c.Source) == 0 {
		return false
	}
	first, _ := notebook.SplitEOL(c.Source[0])
	return strings.TrimSpace(first) == Marker
}

// isTitleCell reports whether a cell is a designated title: markdown with
// exactly one level-1 heading and nothing else.
func isTitleCell(c notebook.Cell) bool {
	if c.Type != notebook.Markdown {
		return false
	}
	content := 0
	for _, line := range c.Source {
		text, _ := notebook.SplitEOL(line)
		if strings.TrimSpace(text) == "" {
			continue
		}
		content++
		if content > 1 || heading.Level(line) != 1 {
			return false
		}
	}
	return content == 1
}

// InsertContents rebuilds the outline from the current headings and places it
// in the single sentinel-marked cell. An existing TOC cell is replaced in
// place; extra sentinel cells (from manual edits) are dropped, keeping the
// first. With no TOC cell present, one is inserted at the top, below a
// leading title cell when there is one. The input slice is not mutated.
func (b *Builder) InsertContents(cells []notebook.Cell) []notebook.Cell {
	// Repair: at most one sentinel cell survives.
	tocIdx := -1
	repaired := make([]notebook.Cell, 0, len(cells)+1)
	for _, c := range cells {
		if IsTOCCell(c) {
			if tocIdx >= 0 {
				continue
			}
			tocIdx = len(repaired)
		}
		repaired = append(repaired, c)
	}
	cells = repaired

	titled := len(cells) > 0 && isTitleCell(cells[0])

	entries := b.outline(cells)
	// A contents entry pointing at the title cell directly above the TOC is
	// noise; skip it when the TOC sits (or will sit) below the title.
	if titled && tocIdx != 0 {
		filtered := entries[:0]
		for _, e := range entries {
			if e.cell != 0 {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	assignAnchors(entries)

	source := renderSource(entries)

	if tocIdx >= 0 {
		out := make([]notebook.Cell, len(cells))
		copy(out, cells)
		out[tocIdx].Source = source
		return out
	}

	insertAt := 0
	if titled {
		insertAt = 1
	}
	cell := notebook.NewMarkdownCell(source, hasCellIDs(cells))
	out := make([]notebook.Cell, 0, len(cells)+1)
	out = append(out, cells[:insertAt]...)
	out = append(out, cell)
	out = append(out, cells[insertAt:]...)
	return out
}

// renderSource renders the marker plus one nested list line per entry,
// indented by two spaces per level below the shallowest heading present.
func renderSource(entries []Entry) notebook.SourceLines {
	if len(entries) == 0 {
		return notebook.SourceLines{Marker}
	}
	minLevel := heading.MaxLevel
	for _, e := range entries {
		if e.Level < minLevel {
			minLevel = e.Level
		}
	}
	source := make(notebook.SourceLines, 0, len(entries)+1)
	source = append(source, Marker+"\n")
	for i, e := range entries {
		// The label carries the assigned number; the anchor never does.
		label := e.Text
		if e.Number != "" {
			label = e.Number + " " + e.Text
		}
		line := strings.Repeat("  ", e.Level-minLevel) + "- [" + label + "](#" + e.Anchor + ")"
		if i < len(entries)-1 {
			line += "\n"
		}
		source = append(source, line)
	}
	return source
}

func hasCellIDs(cells []notebook.Cell) bool {
	for i := range cells {
		if cells[i].ID != "" {
			return true
		}
	}
	return false
}
