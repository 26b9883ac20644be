package tabletalk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return &Table{
		Properties:    []string{"method", "year"},
		Contributions: []string{"Paper A", "Paper B"},
		Cells: [][]Cell{
			{{"survey"}, {"benchmark", "case study"}},
			{{"2019-03-01"}, {}},
		},
	}
}

func TestTable_Shape(t *testing.T) {
	assert.Equal(t, Shape{Rows: 2, Cols: 2}, sampleTable().Shape())
}

func TestTable_Empty(t *testing.T) {
	assert.False(t, sampleTable().Empty())
	assert.True(t, (&Table{}).Empty())
	assert.True(t, (*Table)(nil).Empty())
	assert.True(t, (&Table{Properties: []string{"p"}}).Empty())
}

func TestTable_Transpose(t *testing.T) {
	tr := sampleTable().Transpose()

	assert.Equal(t, []string{"Paper A", "Paper B"}, tr.Properties)
	assert.Equal(t, []string{"method", "year"}, tr.Contributions)
	assert.Equal(t, Cell{"benchmark", "case study"}, tr.Cells[1][0])
	assert.Equal(t, Cell{"2019-03-01"}, tr.Cells[0][1])
}

func TestTable_Document(t *testing.T) {
	doc := sampleTable().Document(0)

	require.Contains(t, doc, "Paper B")
	assert.Equal(t, []string{"benchmark", "case study"}, doc["Paper B"]["method"])
	assert.Empty(t, doc["Paper B"]["year"])
}

func TestTable_DocumentTruncatesFields(t *testing.T) {
	table := &Table{
		Properties:    []string{"abstract"},
		Contributions: []string{"Paper A"},
		Cells:         [][]Cell{{{strings.Repeat("x", 100)}}},
	}

	doc := table.Document(10)
	require.Len(t, doc["Paper A"]["abstract"], 1)
	assert.Len(t, doc["Paper A"]["abstract"][0], 10)
}

func TestTable_Grid(t *testing.T) {
	grid := sampleTable().Grid()
	lines := strings.Split(strings.TrimSpace(grid), "\n")

	require.Len(t, lines, 3)
	assert.Equal(t, "property | Paper A | Paper B", lines[0])
	assert.Equal(t, "method | survey | benchmark; case study", lines[1])
	assert.Equal(t, "year | 2019-03-01 | -", lines[2])
}
