package release

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtmaskall/jnp/internal/notebook"
)

func worked() []notebook.Cell {
	return []notebook.Cell{
		{Type: notebook.Markdown, Source: notebook.SourceLines{"# 1 Lesson"}},
		{Type: notebook.Raw, Source: notebook.SourceLines{"#Code task 1#\n", "df = ___"}},
		{Type: notebook.Code, Source: notebook.SourceLines{"#Code answer 1#\n", "df = pd.read_csv('data.csv')"}},
		{Type: notebook.Markdown, Source: notebook.SourceLines{"**Q: 1** What do you see?"}},
		{Type: notebook.Markdown, Source: notebook.SourceLines{"**A: 1** Five rows\n", "with the column headers."}},
		{Type: notebook.Code, Source: notebook.SourceLines{"df.describe()"}},
	}
}

func TestStudent(t *testing.T) {
	cells := worked()
	out := Student(cells)

	require.Len(t, out, 5, "answer code cell dropped")

	// Task cell promoted from raw to a runnable, never-executed code cell.
	task := out[1]
	assert.Equal(t, notebook.Code, task.Type)
	assert.Equal(t, json.RawMessage("[]"), task.Outputs)
	assert.Equal(t, json.RawMessage("null"), task.ExecutionCount)
	assert.Equal(t, "#Code task 1#\n", task.Source[0])

	// Markdown answer blanked to a prompt.
	answer := out[3]
	assert.Equal(t, []string{"**A: 1**", " Your answer here"}, []string(answer.Source))

	// Untouched cells survive as-is.
	assert.Equal(t, "# 1 Lesson", out[0].Source[0])
	assert.Equal(t, "df.describe()", out[4].Source[0])

	// Input not mutated.
	assert.Equal(t, notebook.Raw, cells[1].Type)
	assert.Len(t, cells[4].Source, 2)
}

func TestTeacher(t *testing.T) {
	cells := worked()
	out := Teacher(cells)

	require.Len(t, out, 5, "task cell dropped")

	// The answer cell stays, markdown answers keep their content.
	assert.Equal(t, "#Code answer 1#\n", out[1].Source[0])
	assert.Equal(t, []string{"**A: 1** Five rows\n", "with the column headers."}, []string(out[3].Source))

	// Input not mutated.
	assert.Equal(t, notebook.Raw, cells[1].Type)
}

func TestStudent_UnnumberedAnswerMarker(t *testing.T) {
	cells := []notebook.Cell{
		{Type: notebook.Markdown, Source: notebook.SourceLines{"**A:** free-form answer"}},
	}
	out := Student(cells)
	assert.Equal(t, []string{"**A:**", " Your answer here"}, []string(out[0].Source))
}

func TestTeacher_PromotesPlainRawCells(t *testing.T) {
	cells := []notebook.Cell{
		{Type: notebook.Raw, Source: notebook.SourceLines{"notes, not a task"}},
	}
	out := Teacher(cells)
	require.Len(t, out, 1)
	assert.Equal(t, notebook.Code, out[0].Type)
	assert.Equal(t, json.RawMessage("null"), out[0].ExecutionCount)
}
