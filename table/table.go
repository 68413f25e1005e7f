package table

import (
	"fmt"
	"reflect"
)

// Table is an in-memory tabular value with ordered columns.
type Table struct {
	cols []string
	rows [][]any
}

// New creates an empty table with the given column names.
func New(cols ...string) *Table {
	t := &Table{cols: make([]string, len(cols))}
	copy(t.cols, cols)
	return t
}

// FromRows creates a table from column names and pre-built rows.
// Every row must have exactly one cell per column.
func FromRows(cols []string, rows [][]any) (*Table, error) {
	t := New(cols...)
	for i, row := range rows {
		if err := t.Append(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return t, nil
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.cols))
	copy(cols, t.cols)
	return cols
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.cols) }

// NumRows returns the number of rows.
func (t *Table) NumRows() int { return len(t.rows) }

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	return t.columnIndex(name) >= 0
}

func (t *Table) columnIndex(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Append adds a row. The row length must match the column count.
func (t *Table) Append(row []any) error {
	if len(row) != len(t.cols) {
		return fmt.Errorf("table: row has %d cells, want %d", len(row), len(t.cols))
	}
	cells := make([]any, len(row))
	copy(cells, row)
	t.rows = append(t.rows, cells)
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}

// Value returns the cell at row i in the named column.
func (t *Table) Value(i int, col string) (any, bool) {
	idx := t.columnIndex(col)
	if idx < 0 || i < 0 || i >= len(t.rows) {
		return nil, false
	}
	return t.rows[i][idx], true
}

// Column returns all values of the named column in row order.
func (t *Table) Column(name string) ([]any, bool) {
	idx := t.columnIndex(name)
	if idx < 0 {
		return nil, false
	}
	vals := make([]any, len(t.rows))
	for i, row := range t.rows {
		vals[i] = row[idx]
	}
	return vals, true
}

// WithColumn returns a new table with the named column set to value in
// every row. An existing column of that name is replaced in place;
// otherwise the column is appended.
func (t *Table) WithColumn(name string, value any) *Table {
	out := New(t.cols...)
	idx := out.columnIndex(name)
	if idx < 0 {
		out.cols = append(out.cols, name)
	}
	for _, row := range t.rows {
		cells := make([]any, len(out.cols))
		copy(cells, row)
		if idx >= 0 {
			cells[idx] = value
		} else {
			cells[len(out.cols)-1] = value
		}
		out.rows = append(out.rows, cells)
	}
	return out
}

// Select returns a new table projected to the named columns, in the
// requested order. Unknown columns are an error.
func (t *Table) Select(cols []string) (*Table, error) {
	idxs := make([]int, len(cols))
	for i, c := range cols {
		idx := t.columnIndex(c)
		if idx < 0 {
			return nil, fmt.Errorf("table: unknown column %q", c)
		}
		idxs[i] = idx
	}
	out := New(cols...)
	for _, row := range t.rows {
		cells := make([]any, len(idxs))
		for i, idx := range idxs {
			cells[i] = row[idx]
		}
		out.rows = append(out.rows, cells)
	}
	return out, nil
}

// Equal reports whether two tables have identical columns and cells.
func (t *Table) Equal(other *Table) bool {
	if other == nil {
		return false
	}
	return reflect.DeepEqual(t.cols, other.cols) && reflect.DeepEqual(t.rows, other.rows)
}

// String returns a short description for progress output.
func (t *Table) String() string {
	return fmt.Sprintf("Table(%d rows x %d columns)", len(t.rows), len(t.cols))
}
