package toc

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/gtmaskall/jnp/internal/heading"
	"github.com/gtmaskall/jnp/internal/notebook"
)

// Entry is one heading in the generated outline. Recomputed on every run,
// never persisted.
type Entry struct {
	Level  int
	Number string // assigned hierarchical number, "" when the heading has none
	Text   string // display text with the number stripped
	Anchor string
	cell   int // index of the owning cell
}

// outline scans every markdown cell (except the TOC cell itself) for ATX
// headings in document order.
func (b *Builder) outline(cells []notebook.Cell) []Entry {
	var entries []Entry
	for i := range cells {
		cell := cells[i]
		if cell.Type != notebook.Markdown || IsTOCCell(cell) {
			continue
		}
		src := []byte(strings.Join(cell.Source, ""))
		doc := b.parser.Parser().Parse(text.NewReader(src))
		_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if !entering {
				return ast.WalkContinue, nil
			}
			h, ok := n.(*ast.Heading)
			if !ok || !isATXHeading(src, h) {
				return ast.WalkContinue, nil
			}
			raw := nodeText(h, src)
			if raw == "" {
				return ast.WalkContinue, nil
			}
			stripped := heading.StripNumber(raw)
			entries = append(entries, Entry{
				Level:  h.Level,
				Number: strings.TrimSpace(raw[:len(raw)-len(stripped)]),
				Text:   stripped,
				cell:   i,
			})
			return ast.WalkContinue, nil
		})
	}
	return entries
}

// isATXHeading filters out setext headings (underlined with = or -), which
// goldmark also parses: the numberer only handles '#' markers, so the outline
// must match. The heading's text segment is traced back to its line start,
// which for an ATX heading begins with an unindented '#'.
func isATXHeading(src []byte, h *ast.Heading) bool {
	lines := h.Lines()
	if lines.Len() == 0 {
		return false
	}
	start := lines.At(0).Start
	i := start
	for i > 0 && src[i-1] != '\n' {
		i--
	}
	return i < len(src) && src[i] == '#'
}

// nodeText flattens a heading's inline children to plain text, so emphasis
// or code spans in a heading do not leak markup into labels and anchors.
func nodeText(n ast.Node, src []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(src))
		case *ast.String:
			sb.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// Slug normalizes heading text into a URL-safe anchor: lower-cased,
// whitespace to hyphens, everything else non-alphanumeric dropped.
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte('-')
		}
	}
	return b.String()
}

// assignAnchors gives every entry a pairwise distinct anchor, suffixing
// repeats with -1, -2, ... in order of appearance. A suffixed candidate can
// itself collide with another heading's natural slug ("X 1" slugs to "x-1"),
// so the suffix keeps incrementing until the anchor is genuinely unused.
func assignAnchors(entries []Entry) {
	counts := make(map[string]int, len(entries))
	used := make(map[string]bool, len(entries))
	for i := range entries {
		base := Slug(entries[i].Text)
		if base == "" {
			base = "section"
		}
		anchor := base
		n := counts[base]
		if n > 0 {
			anchor = base + "-" + strconv.Itoa(n)
		}
		for used[anchor] {
			n++
			anchor = base + "-" + strconv.Itoa(n)
		}
		counts[base] = n + 1
		used[anchor] = true
		entries[i].Anchor = anchor
	}
}
