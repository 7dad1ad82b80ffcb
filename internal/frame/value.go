package frame

import (
	"fmt"
	"strconv"
)

// Kind identifies the type of a column or value.
type Kind int

const (
	Float Kind = iota
	Int
	String
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a single typed cell: a float, int, or string, or the
// missing sentinel (null). The zero Value is a null float.
type Value struct {
	kind Kind
	f    float64
	i    int64
	s    string
	null bool
}

// FloatValue creates a non-null float value.
func FloatValue(v float64) Value {
	return Value{kind: Float, f: v}
}

// IntValue creates a non-null int value.
func IntValue(v int64) Value {
	return Value{kind: Int, i: v}
}

// StringValue creates a non-null string value.
func StringValue(v string) Value {
	return Value{kind: String, s: v}
}

// NullValue creates the missing sentinel of the given kind.
func NullValue(kind Kind) Value {
	return Value{kind: kind, null: true}
}

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is missing.
func (v Value) IsNull() bool { return v.null }

// Float returns the float payload. Only meaningful for Float values.
func (v Value) Float() float64 { return v.f }

// Int returns the int payload. Only meaningful for Int values.
func (v Value) Int() int64 { return v.i }

// Str returns the string payload. Only meaningful for String values.
func (v Value) Str() string { return v.s }

// AsFloat widens a numeric value to float64 for arithmetic and
// comparisons. ok is false for nulls and strings.
func (v Value) AsFloat() (f float64, ok bool) {
	if v.null {
		return 0, false
	}
	switch v.kind {
	case Float:
		return v.f, true
	case Int:
		return float64(v.i), true
	default:
		return 0, false
	}
}

// Equal compares two values. Nulls never equal anything, including
// other nulls. Ints and floats compare numerically across kinds.
func (v Value) Equal(other Value) bool {
	if v.null || other.null {
		return false
	}
	if v.kind == String || other.kind == String {
		return v.kind == other.kind && v.s == other.s
	}
	a, _ := v.AsFloat()
	b, _ := other.AsFloat()
	return a == b
}

// format renders the value for generated column names and key
// encoding. Nulls render as "NA".
func (v Value) format() string {
	if v.null {
		return "NA"
	}
	switch v.kind {
	case Float:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case Int:
		return strconv.FormatInt(v.i, 10)
	case String:
		return v.s
	default:
		return fmt.Sprintf("%v", v)
	}
}
