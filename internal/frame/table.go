package frame

import (
	"fmt"

	"hmdacli/internal/errors"
)

// Table is an ordered sequence of named columns of equal length.
// Rows are indexed by position; there is no primary key.
type Table struct {
	cols  []*Column
	index map[string]int
}

// New creates a Table from the given columns. All columns must have
// the same length and distinct names.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	n := -1
	for _, c := range cols {
		if _, dup := t.index[c.name]; dup {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("duplicate column name %q", c.name), nil)
		}
		if n >= 0 && c.Len() != n {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("column %q has %d rows, want %d", c.name, c.Len(), n), nil)
		}
		n = c.Len()
		t.index[c.name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	return t, nil
}

// MustNew is New for tests and literals with known-good columns.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column. Referencing an absent column is a
// schema error.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("column %q not found", name), nil).WithContext("column", name)
	}
	return t.cols[i], nil
}

// Columns returns the columns in order. The slice is a copy; the
// columns themselves are shared and must not be mutated.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// requireColumns checks that every named column exists, so stages can
// report schema errors before any row is processed.
func (t *Table) requireColumns(names ...string) error {
	for _, name := range names {
		if _, ok := t.index[name]; !ok {
			return errors.NewSchemaError(
				fmt.Sprintf("column %q not found", name), nil).WithContext("column", name)
		}
	}
	return nil
}

// Row returns a read-only view of the row at position i.
func (t *Table) Row(i int) Row {
	return Row{t: t, i: i}
}

// take returns a new Table containing the rows at the given positions.
func (t *Table) take(indices []int) *Table {
	cols := make([]*Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.take(indices)
	}
	out, _ := New(cols...)
	return out
}

// withColumn returns a new Table with the column appended. Reusing an
// existing name is a schema error: stages never overwrite columns.
func (t *Table) withColumn(c *Column) (*Table, error) {
	if t.HasColumn(c.name) {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("column %q already exists", c.name), nil)
	}
	if len(t.cols) > 0 && c.Len() != t.NumRows() {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("column %q has %d rows, want %d", c.name, c.Len(), t.NumRows()), nil)
	}
	cols := append(t.Columns(), c)
	return New(cols...)
}

// Row is a positional view into a Table used by derived-column
// callbacks and predicates.
type Row struct {
	t *Table
	i int
}

// Value returns the cell in the named column.
func (r Row) Value(col string) (Value, error) {
	c, err := r.t.Column(col)
	if err != nil {
		return Value{}, err
	}
	return c.Value(r.i), nil
}

// mustValue is Value for callers that validated the schema up front.
func (r Row) mustValue(col string) Value {
	return r.t.cols[r.t.index[col]].Value(r.i)
}
