// Package tasks numbers task and answer markers in notebook cells, e.g.
// "#Code task<n>#" lines at the top of code or raw cells.
package tasks

import (
	"regexp"
	"strconv"

	"github.com/gtmaskall/jnp/internal/notebook"
)

// Default marker patterns. <n> marks where the running count goes.
const (
	DefaultTask     = "#Code task<n>#"
	DefaultAnswer   = "#Code answer<n>#"
	DefaultQuestion = "**Q:<n>**"
	DefaultQA       = "**A:<n>**"
)

var placeholderRe = regexp.MustCompile(`^(.*)<n>(.*)$`)

// Pattern is a marker expression with an optional <n> placeholder. Markers
// without a placeholder are counted but left untouched.
type Pattern struct {
	prefix      string
	suffix      string
	takesNumber bool
	matchRe     *regexp.Regexp
}

// NewPattern compiles a marker expression. Lines already carrying a number
// in the placeholder position still match, so renumbering is idempotent.
func NewPattern(expr string) Pattern {
	p := Pattern{prefix: expr}
	if m := placeholderRe.FindStringSubmatch(expr); m != nil {
		p.prefix = m[1]
		p.suffix = m[2]
		p.takesNumber = true
	}
	p.matchRe = regexp.MustCompile(`^` + regexp.QuoteMeta(p.prefix) + `[ \t]*\d*` + regexp.QuoteMeta(p.suffix))
	return p
}

// Matches reports whether the line starts with this marker, numbered or not.
func (p Pattern) Matches(line string) bool {
	return p.matchRe.MatchString(line)
}

// Renumber rewrites the marker at the start of line with the given count.
func (p Pattern) Renumber(line string, n int) string {
	if !p.takesNumber {
		return line
	}
	return p.matchRe.ReplaceAllString(line, p.prefix+" "+strconv.Itoa(n)+p.suffix)
}

// Counts carries the running totals across cells, and across notebooks when
// the caller threads it through several runs.
type Counts struct {
	Tasks     int
	Questions int
}

// Kind selects which counter a numberer bumps.
type Kind int

const (
	Code Kind = iota
	Question
)

// Numberer numbers one task/answer marker pair over a set of cell types.
type Numberer struct {
	Task      Pattern
	Answer    Pattern
	Kind      Kind
	CellTypes []string
}

// NewCodeNumberer numbers code task/answer markers in code and raw cells.
func NewCodeNumberer(task, answer string) *Numberer {
	return &Numberer{
		Task:      NewPattern(task),
		Answer:    NewPattern(answer),
		Kind:      Code,
		CellTypes: []string{notebook.Raw, notebook.Code},
	}
}

// NewQuestionNumberer numbers question/answer markers in markdown cells.
func NewQuestionNumberer(question, answer string) *Numberer {
	return &Numberer{
		Task:      NewPattern(question),
		Answer:    NewPattern(answer),
		Kind:      Question,
		CellTypes: []string{notebook.Markdown},
	}
}

func (n *Numberer) appliesTo(cell notebook.Cell) bool {
	for _, t := range n.CellTypes {
		if cell.Type == t {
			return true
		}
	}
	return false
}

func (n *Numberer) bump(c *Counts) int {
	switch n.Kind {
	case Question:
		c.Questions++
		return c.Questions
	default:
		c.Tasks++
		return c.Tasks
	}
}

func (n *Numberer) current(c Counts) int {
	if n.Kind == Question {
		return c.Questions
	}
	return c.Tasks
}

// NumberAll walks the cells in order, bumping the counter on each task marker
// and stamping answer markers with the current task's number. The input is
// not mutated.
func (n *Numberer) NumberAll(cells []notebook.Cell, counts Counts) ([]notebook.Cell, Counts) {
	out := make([]notebook.Cell, len(cells))
	copy(out, cells)
	for i := range out {
		if !n.appliesTo(out[i]) {
			continue
		}
		lines := make(notebook.SourceLines, len(out[i].Source))
		for j, line := range out[i].Source {
			lines[j] = n.numberLine(line, &counts)
		}
		out[i].Source = lines
	}
	return out, counts
}

func (n *Numberer) numberLine(line string, counts *Counts) string {
	text, eol := notebook.SplitEOL(line)
	switch {
	case n.Task.Matches(text):
		num := n.bump(counts)
		return n.Task.Renumber(text, num) + eol
	case n.Answer.Matches(text):
		// An answer takes the number of the task it follows.
		return n.Answer.Renumber(text, n.current(*counts)) + eol
	}
	return line
}
