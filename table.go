package tabletalk

import "strings"

// Cell holds the values of one table cell. A cell may be empty, hold a
// single scalar, or hold multiple values (including dates kept as their
// source strings).
type Cell []string

// Table is a 2-D comparison grid: rows are properties, columns are the
// contributions (papers) being compared. A table is immutable for the
// lifetime of the query that fetched it.
type Table struct {
	// Properties are the row labels.
	Properties []string

	// Contributions are the column labels.
	Contributions []string

	// Cells is indexed [property][contribution].
	Cells [][]Cell
}

// Shape describes a table's dimensions, used for prompt sizing decisions.
type Shape struct {
	Rows int
	Cols int
}

// Shape returns the table's dimensions.
func (t *Table) Shape() Shape {
	return Shape{Rows: len(t.Properties), Cols: len(t.Contributions)}
}

// Empty returns true if the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t == nil || len(t.Properties) == 0 || len(t.Contributions) == 0
}

// Transpose returns a new table with rows and columns swapped.
func (t *Table) Transpose() *Table {
	out := &Table{
		Properties:    append([]string(nil), t.Contributions...),
		Contributions: append([]string(nil), t.Properties...),
		Cells:         make([][]Cell, len(t.Contributions)),
	}
	for i := range t.Contributions {
		out.Cells[i] = make([]Cell, len(t.Properties))
		for j := range t.Properties {
			out.Cells[i][j] = t.Cells[j][i]
		}
	}
	return out
}

// Document transposes the table and flattens it into a nested map keyed
// by contribution, then by property, with each value truncated to
// maxFieldLen runes.
// This is the representation the STRUCTURED variant reasons over.
func (t *Table) Document(maxFieldLen int) map[string]map[string][]string {
	tr := t.Transpose()
	doc := make(map[string]map[string][]string, len(tr.Properties))
	for i, contribution := range tr.Properties {
		fields := make(map[string][]string, len(tr.Contributions))
		for j, property := range tr.Contributions {
			values := make([]string, 0, len(tr.Cells[i][j]))
			for _, v := range tr.Cells[i][j] {
				values = append(values, truncate(v, maxFieldLen))
			}
			fields[property] = values
		}
		doc[contribution] = fields
	}
	return doc
}

// Grid renders the table as aligned text, one property per line, for
// verbatim embedding in a TABULAR prompt. Multi-valued cells are joined
// with "; " and empty cells render as "-".
func (t *Table) Grid() string {
	var b strings.Builder
	b.WriteString("property")
	for _, c := range t.Contributions {
		b.WriteString(" | ")
		b.WriteString(c)
	}
	b.WriteByte('\n')
	for i, p := range t.Properties {
		b.WriteString(p)
		for j := range t.Contributions {
			b.WriteString(" | ")
			b.WriteString(renderCell(t.Cells[i][j]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func renderCell(c Cell) string {
	if len(c) == 0 {
		return "-"
	}
	return strings.Join(c, "; ")
}

func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
