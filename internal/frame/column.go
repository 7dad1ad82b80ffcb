package frame

import (
	"fmt"

	"hmdacli/internal/errors"
)

// Column is a named, typed vector with a validity mask. Cells where
// the mask is false are missing.
type Column struct {
	name   string
	kind   Kind
	floats []float64
	ints   []int64
	strs   []string
	valid  []bool
}

// NewFloatColumn creates a float column. A nil valid mask marks every
// cell valid; otherwise the mask must match the value length.
func NewFloatColumn(name string, values []float64, valid []bool) *Column {
	return &Column{
		name:   name,
		kind:   Float,
		floats: values,
		valid:  normalizeMask(valid, len(values)),
	}
}

// NewIntColumn creates an int column.
func NewIntColumn(name string, values []int64, valid []bool) *Column {
	return &Column{
		name:  name,
		kind:  Int,
		ints:  values,
		valid: normalizeMask(valid, len(values)),
	}
}

// NewStringColumn creates a string column.
func NewStringColumn(name string, values []string, valid []bool) *Column {
	return &Column{
		name:  name,
		kind:  String,
		strs:  values,
		valid: normalizeMask(valid, len(values)),
	}
}

func normalizeMask(valid []bool, n int) []bool {
	if valid != nil {
		return valid
	}
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns the column kind.
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.valid) }

// IsNull reports whether the cell at position i is missing.
func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// Value returns the cell at position i.
func (c *Column) Value(i int) Value {
	if !c.valid[i] {
		return NullValue(c.kind)
	}
	switch c.kind {
	case Float:
		return FloatValue(c.floats[i])
	case Int:
		return IntValue(c.ints[i])
	default:
		return StringValue(c.strs[i])
	}
}

// take returns a new column containing the cells at the given
// positions, in order.
func (c *Column) take(indices []int) *Column {
	out := &Column{name: c.name, kind: c.kind, valid: make([]bool, len(indices))}
	switch c.kind {
	case Float:
		out.floats = make([]float64, len(indices))
		for j, i := range indices {
			out.floats[j] = c.floats[i]
			out.valid[j] = c.valid[i]
		}
	case Int:
		out.ints = make([]int64, len(indices))
		for j, i := range indices {
			out.ints[j] = c.ints[i]
			out.valid[j] = c.valid[i]
		}
	default:
		out.strs = make([]string, len(indices))
		for j, i := range indices {
			out.strs[j] = c.strs[i]
			out.valid[j] = c.valid[i]
		}
	}
	return out
}

// columnBuilder accumulates values of one kind; used by the stages to
// assemble output columns cell by cell.
type columnBuilder struct {
	name   string
	kind   Kind
	floats []float64
	ints   []int64
	strs   []string
	valid  []bool
}

func newColumnBuilder(name string, kind Kind) *columnBuilder {
	return &columnBuilder{name: name, kind: kind}
}

// append adds a value, which must be null or of the builder's kind.
func (b *columnBuilder) append(v Value) error {
	if !v.null && v.kind != b.kind {
		return errors.NewSchemaError(
			fmt.Sprintf("column %s: cannot append %s value to %s column", b.name, v.kind, b.kind), nil)
	}
	b.valid = append(b.valid, !v.null)
	switch b.kind {
	case Float:
		b.floats = append(b.floats, v.f)
	case Int:
		b.ints = append(b.ints, v.i)
	default:
		b.strs = append(b.strs, v.s)
	}
	return nil
}

func (b *columnBuilder) appendNull() {
	b.valid = append(b.valid, false)
	switch b.kind {
	case Float:
		b.floats = append(b.floats, 0)
	case Int:
		b.ints = append(b.ints, 0)
	default:
		b.strs = append(b.strs, "")
	}
}

func (b *columnBuilder) column() *Column {
	return &Column{
		name:   b.name,
		kind:   b.kind,
		floats: b.floats,
		ints:   b.ints,
		strs:   b.strs,
		valid:  b.valid,
	}
}
