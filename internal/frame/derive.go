package frame

import (
	"fmt"

	"hmdacli/internal/errors"
)

// Derive appends a new column computed row-wise from existing ones.
// fn must be side-effect free and return values of the declared kind
// (or nulls). Referenced columns are the caller's concern; use the
// specific helpers below when the computation names its inputs.
func Derive(t *Table, name string, kind Kind, fn func(Row) Value) (*Table, error) {
	b := newColumnBuilder(name, kind)
	for i := 0; i < t.NumRows(); i++ {
		if err := b.append(fn(t.Row(i))); err != nil {
			return nil, err
		}
	}
	return t.withColumn(b.column())
}

// SumOf appends a float column holding the row-wise sum of the named
// numeric columns. A missing operand makes the sum missing.
func SumOf(t *Table, name string, cols ...string) (*Table, error) {
	if err := t.requireColumns(cols...); err != nil {
		return nil, err
	}
	return Derive(t, name, Float, func(r Row) Value {
		var sum float64
		for _, col := range cols {
			f, ok := r.mustValue(col).AsFloat()
			if !ok {
				return NullValue(Float)
			}
			sum += f
		}
		return FloatValue(sum)
	})
}

// LabelWhen appends a string column that carries the value of
// labelCol on rows where the numeric column exceeds the cutoff, and
// is missing otherwise.
func LabelWhen(t *Table, name, col string, cutoff float64, labelCol string) (*Table, error) {
	if err := t.requireColumns(col, labelCol); err != nil {
		return nil, err
	}
	lc, _ := t.Column(labelCol)
	if lc.Kind() != String {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("label column %q is %s, want string", labelCol, lc.Kind()), nil)
	}
	return Derive(t, name, String, func(r Row) Value {
		f, ok := r.mustValue(col).AsFloat()
		if !ok || f <= cutoff {
			return NullValue(String)
		}
		return r.mustValue(labelCol)
	})
}

// EqFlag appends an int column holding 1 where the cell equals v and
// 0 where it holds any other value. Missing cells yield a missing
// flag, which Mean then excludes.
func EqFlag(t *Table, name, col string, v Value) (*Table, error) {
	if err := t.requireColumns(col); err != nil {
		return nil, err
	}
	return Derive(t, name, Int, func(r Row) Value {
		cell := r.mustValue(col)
		if cell.IsNull() {
			return NullValue(Int)
		}
		if cell.Equal(v) {
			return IntValue(1)
		}
		return IntValue(0)
	})
}

// RecodeWithDefault appends a string column mapping integer codes to
// labels via an explicit lookup table. Any code absent from the
// lookup, including a missing code, receives the default label. The
// silent default is a deliberate policy, mirroring how unlisted
// property-interest codes mean an ordinary site-built dwelling rather
// than bad data.
func RecodeWithDefault(t *Table, name, col string, mapping map[int64]string, defaultLabel string) (*Table, error) {
	if err := t.requireColumns(col); err != nil {
		return nil, err
	}
	c, _ := t.Column(col)
	if c.Kind() != Int {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("recode column %q is %s, want int", col, c.Kind()), nil)
	}
	return Derive(t, name, String, func(r Row) Value {
		cell := r.mustValue(col)
		if cell.IsNull() {
			return StringValue(defaultLabel)
		}
		if label, ok := mapping[cell.Int()]; ok {
			return StringValue(label)
		}
		return StringValue(defaultLabel)
	})
}
