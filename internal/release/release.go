// Package release derives student and teacher variants of a worked notebook.
// The authored notebook keeps answers in code cells marked "#Code answer N#"
// and tasks in raw cells marked "#Code task N#"; markdown answers start with
// a "**A: N**" line.
package release

import (
	"encoding/json"
	"regexp"

	"github.com/gtmaskall/jnp/internal/notebook"
)

var (
	answerPromptRe = regexp.MustCompile(`^\*\*A:[ \t]*\d*\*\*`)
	codeAnswerRe   = regexp.MustCompile(`^#Code answer[ \t]*\d*#`)
	codeTaskRe     = regexp.MustCompile(`^#Code task[ \t]*\d*#`)
)

// Student builds the hand-out variant: markdown answers are blanked to a
// prompt, raw task cells become runnable code cells, and answer code cells
// are dropped. The input cells are not mutated.
func Student(cells []notebook.Cell) []notebook.Cell {
	out := make([]notebook.Cell, 0, len(cells))
	for _, cell := range cells {
		if cell.Type == notebook.Markdown {
			if m := firstLineMatch(cell, answerPromptRe); m != "" {
				cell.Source = notebook.SourceLines{m, " Your answer here"}
			}
			out = append(out, cell)
			continue
		}
		cell = promoteRaw(cell)
		if firstLineMatch(cell, codeAnswerRe) != "" {
			continue
		}
		out = append(out, cell)
	}
	return out
}

// Teacher builds the solutions variant: raw cells become code cells and the
// task placeholders are dropped, leaving only the answers.
func Teacher(cells []notebook.Cell) []notebook.Cell {
	out := make([]notebook.Cell, 0, len(cells))
	for _, cell := range cells {
		if cell.Type == notebook.Markdown {
			out = append(out, cell)
			continue
		}
		cell = promoteRaw(cell)
		if firstLineMatch(cell, codeTaskRe) != "" {
			continue
		}
		out = append(out, cell)
	}
	return out
}

// promoteRaw turns a raw cell into a never-executed code cell.
func promoteRaw(cell notebook.Cell) notebook.Cell {
	if cell.Type != notebook.Raw {
		return cell
	}
	cell.Type = notebook.Code
	cell.Outputs = json.RawMessage("[]")
	cell.ExecutionCount = json.RawMessage("null")
	return cell
}

// firstLineMatch returns the matched marker at the start of the cell's first
// line, or "" when the cell is empty or does not match.
func firstLineMatch(cell notebook.Cell, re *regexp.Regexp) string {
	if len(cell.Source) == 0 {
		return ""
	}
	text, _ := notebook.SplitEOL(cell.Source[0])
	return re.FindString(text)
}
