package toc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtmaskall/jnp/internal/heading"
	"github.com/gtmaskall/jnp/internal/notebook"
)

func md(lines ...string) notebook.Cell {
	return notebook.Cell{Type: notebook.Markdown, Source: lines}
}

func sources(cells []notebook.Cell) [][]string {
	out := make([][]string, len(cells))
	for i, c := range cells {
		out[i] = c.Source
	}
	return out
}

func countTOCCells(cells []notebook.Cell) int {
	n := 0
	for _, c := range cells {
		if IsTOCCell(c) {
			n++
		}
	}
	return n
}

func TestInsertContents_AfterTitleCell(t *testing.T) {
	cells := []notebook.Cell{
		md("# 1 Title"),
		md("## 1.1 Intro"),
		md("## 1.2 Setup"),
	}

	out := NewBuilder().InsertContents(cells)

	require.Len(t, out, 4)
	assert.True(t, IsTOCCell(out[1]), "TOC should sit below the title cell")
	assert.Equal(t, []string{
		Marker + "\n",
		"- [1.1 Intro](#intro)\n",
		"- [1.2 Setup](#setup)",
	}, []string(out[1].Source))
	// Surrounding cells untouched.
	assert.Equal(t, []string{"# 1 Title"}, []string(out[0].Source))
	assert.Equal(t, []string{"## 1.1 Intro"}, []string(out[2].Source))
	assert.Equal(t, []string{"## 1.2 Setup"}, []string(out[3].Source))
}

func TestInsertContents_AtTopWithoutTitleCell(t *testing.T) {
	cells := []notebook.Cell{
		md("# 1 A\n", "## 1.1 X\n", "# 2 B\n", "## 2.1 X"),
	}

	out := NewBuilder().InsertContents(cells)

	require.Len(t, out, 2)
	assert.True(t, IsTOCCell(out[0]))
	assert.Equal(t, []string{
		Marker + "\n",
		"- [1 A](#a)\n",
		"  - [1.1 X](#x)\n",
		"- [2 B](#b)\n",
		"  - [2.1 X](#x-1)",
	}, []string(out[0].Source))
}

func TestInsertContents_Idempotent(t *testing.T) {
	cells := []notebook.Cell{
		md("# 1 Title"),
		md("## 1.1 Intro"),
		md("## 1.2 Setup"),
	}
	b := NewBuilder()

	once := b.InsertContents(cells)
	twice := b.InsertContents(once)

	assert.Equal(t, sources(once), sources(twice))
	assert.Equal(t, 1, countTOCCells(twice))
}

func TestInsertContents_ReplacesInPlace(t *testing.T) {
	cells := []notebook.Cell{
		md("intro text, no heading"),
		md(Marker+"\n", "- [Stale](#stale)"),
		md("## 1.1 Fresh"),
	}

	out := NewBuilder().InsertContents(cells)

	require.Len(t, out, 3)
	assert.True(t, IsTOCCell(out[1]), "existing TOC keeps its position")
	assert.Equal(t, []string{Marker + "\n", "- [1.1 Fresh](#fresh)"}, []string(out[1].Source))
}

func TestInsertContents_RepairsDuplicateTOCCells(t *testing.T) {
	cells := []notebook.Cell{
		md(Marker),
		md("# 1 A"),
		md(Marker+"\n", "- [old](#old)"),
		md(Marker),
	}

	out := NewBuilder().InsertContents(cells)

	assert.Equal(t, 1, countTOCCells(out))
	require.Len(t, out, 2)
	assert.True(t, IsTOCCell(out[0]), "first occurrence wins")
	assert.Equal(t, []string{Marker + "\n", "- [1 A](#a)"}, []string(out[0].Source))
}

func TestInsertContents_AnchorsStripNumbersAndMarkup(t *testing.T) {
	cells := []notebook.Cell{
		md("# 1 Getting Started\n", "## 1.1 **Bold** & `code`!"),
	}

	out := NewBuilder().InsertContents(cells)

	assert.Equal(t, []string{
		Marker + "\n",
		"- [1 Getting Started](#getting-started)\n",
		"  - [1.1 Bold & code!](#bold--code)",
	}, []string(out[0].Source))
}

func TestInsertContents_SuffixedAnchorSkipsNaturalSlugs(t *testing.T) {
	// "X 1" slugs to "x-1", the same candidate the first duplicate of "X"
	// would get; the suffix must keep climbing past taken anchors.
	cells := []notebook.Cell{
		md("# X 1\n", "# X\n", "# X"),
	}

	out := NewBuilder().InsertContents(cells)

	require.True(t, IsTOCCell(out[0]))
	assert.Equal(t, []string{
		Marker + "\n",
		"- [X 1](#x-1)\n",
		"- [X](#x)\n",
		"- [X](#x-2)",
	}, []string(out[0].Source))
}

func TestInsertContents_IgnoresSetextHeadings(t *testing.T) {
	cells := []notebook.Cell{
		md("Underlined\n", "==========\n", "\n", "# 1 Real"),
	}

	out := NewBuilder().InsertContents(cells)

	assert.Equal(t, []string{Marker + "\n", "- [1 Real](#real)"}, []string(out[0].Source))
}

func TestInsertContents_NoHeadings(t *testing.T) {
	cells := []notebook.Cell{
		{Type: notebook.Code, Source: notebook.SourceLines{"print('hi')"}},
	}

	out := NewBuilder().InsertContents(cells)

	require.Len(t, out, 2)
	assert.Equal(t, []string{Marker}, []string(out[0].Source))
}

func TestInsertContents_NewCellGetsIDWhenOthersHaveOne(t *testing.T) {
	withID := md("# 1 A")
	withID.ID = "ab12cd34"

	out := NewBuilder().InsertContents([]notebook.Cell{withID, md("text")})
	assert.NotEmpty(t, out[1].ID, "TOC cell should carry an id on nbformat >= 4.5 notebooks")

	out = NewBuilder().InsertContents([]notebook.Cell{md("# 1 A"), md("text")})
	assert.Empty(t, out[1].ID, "no ids elsewhere, none invented")
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "intro", Slug("Intro"))
	assert.Equal(t, "getting-started", Slug("Getting Started"))
	assert.Equal(t, "whats-new-in-20", Slug("What's new in 2.0?"))
	assert.Equal(t, "", Slug("!!!"))
}

func TestFullPipelineScenario(t *testing.T) {
	// Scenario: number, insert contents, then run both again and expect
	// byte-identical cells.
	cells := []notebook.Cell{
		md("# Title"),
		md("## Intro"),
		md("## Setup"),
	}
	n := heading.NewNumberer(".")
	b := NewBuilder()

	numbered, _, err := n.NumberAll(cells, 1)
	require.NoError(t, err)
	once := b.InsertContents(numbered)

	renumbered, _, err := n.NumberAll(once, 1)
	require.NoError(t, err)
	twice := b.InsertContents(renumbered)

	assert.Equal(t, sources(once), sources(twice))
	assert.Equal(t, 1, countTOCCells(twice))
}
