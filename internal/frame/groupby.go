package frame

import (
	"fmt"
	"strconv"
	"strings"

	"hmdacli/internal/errors"
)

// Reducer identifies an aggregation function.
type Reducer int

const (
	// Mean averages the non-missing values of a numeric group. The
	// mean of a group with zero non-missing values is missing, never
	// zero.
	Mean Reducer = iota
	// Count counts the non-missing values of a group, whatever the
	// column kind.
	Count
	// Sum adds the non-missing values of a numeric group. The sum of a
	// group with zero non-missing values is missing.
	Sum
)

// String returns the string representation of the reducer.
func (r Reducer) String() string {
	switch r {
	case Mean:
		return "mean"
	case Count:
		return "count"
	case Sum:
		return "sum"
	default:
		return "unknown"
	}
}

// Agg names one output column: reduce the source column Col with
// Reducer and call the result Name.
type Agg struct {
	Name    string
	Col     string
	Reducer Reducer
}

// GroupOptions tunes grouping behavior.
type GroupOptions struct {
	// KeepMissingKeys retains rows whose group key is missing as a
	// single missing-key bucket instead of dropping them.
	KeepMissingKeys bool
}

// group accumulates one partition.
type group struct {
	keys []Value    // key values, aligned with the key columns
	sums []float64  // running sum per agg
	ns   []int      // non-missing count per agg
}

// GroupBy partitions the table by the distinct value combinations of
// the key columns and reduces each partition to one output row. Rows
// with a missing key are dropped unless opts retain them. Output rows
// appear in first-seen key order, so the result is deterministic for
// a fixed input order.
func GroupBy(t *Table, keys []string, aggs []Agg, opts ...GroupOptions) (*Table, error) {
	var opt GroupOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	if len(keys) == 0 {
		return nil, errors.NewSchemaError("group by requires at least one key column", nil)
	}
	cols := make([]string, 0, len(keys)+len(aggs))
	cols = append(cols, keys...)
	seen := make(map[string]bool, len(aggs))
	for _, a := range aggs {
		cols = append(cols, a.Col)
		if seen[a.Name] {
			return nil, errors.NewCollisionError(
				fmt.Sprintf("duplicate aggregate output name %q", a.Name))
		}
		seen[a.Name] = true
	}
	if err := t.requireColumns(cols...); err != nil {
		return nil, err
	}

	keyCols := make([]*Column, len(keys))
	for i, k := range keys {
		keyCols[i], _ = t.Column(k)
	}
	aggCols := make([]*Column, len(aggs))
	for i, a := range aggs {
		aggCols[i], _ = t.Column(a.Col)
		if a.Reducer != Count && aggCols[i].Kind() == String {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("aggregate %q: cannot compute %s of string column %q",
					a.Name, a.Reducer, a.Col), nil)
		}
	}

	groups := make(map[string]*group)
	var order []string

	for row := 0; row < t.NumRows(); row++ {
		keyVals := make([]Value, len(keyCols))
		missing := false
		for i, kc := range keyCols {
			keyVals[i] = kc.Value(row)
			if keyVals[i].IsNull() {
				missing = true
			}
		}
		if missing && !opt.KeepMissingKeys {
			continue
		}

		enc := encodeKey(keyVals)
		g, ok := groups[enc]
		if !ok {
			g = &group{
				keys: keyVals,
				sums: make([]float64, len(aggs)),
				ns:   make([]int, len(aggs)),
			}
			groups[enc] = g
			order = append(order, enc)
		}

		for i, ac := range aggCols {
			v := ac.Value(row)
			if v.IsNull() {
				continue
			}
			g.ns[i]++
			if f, ok := v.AsFloat(); ok {
				g.sums[i] += f
			}
		}
	}

	// Assemble output: key columns first, then one column per agg.
	keyBuilders := make([]*columnBuilder, len(keys))
	for i, kc := range keyCols {
		keyBuilders[i] = newColumnBuilder(kc.Name(), kc.Kind())
	}
	aggBuilders := make([]*columnBuilder, len(aggs))
	for i, a := range aggs {
		kind := Float
		if a.Reducer == Count {
			kind = Int
		}
		aggBuilders[i] = newColumnBuilder(a.Name, kind)
	}

	for _, enc := range order {
		g := groups[enc]
		for i, kv := range g.keys {
			if err := keyBuilders[i].append(kv); err != nil {
				return nil, err
			}
		}
		for i, a := range aggs {
			switch a.Reducer {
			case Count:
				if err := aggBuilders[i].append(IntValue(int64(g.ns[i]))); err != nil {
					return nil, err
				}
			case Sum:
				if g.ns[i] == 0 {
					aggBuilders[i].appendNull()
				} else if err := aggBuilders[i].append(FloatValue(g.sums[i])); err != nil {
					return nil, err
				}
			default: // Mean
				if g.ns[i] == 0 {
					aggBuilders[i].appendNull()
				} else if err := aggBuilders[i].append(FloatValue(g.sums[i] / float64(g.ns[i]))); err != nil {
					return nil, err
				}
			}
		}
	}

	out := make([]*Column, 0, len(keyBuilders)+len(aggBuilders))
	for _, b := range keyBuilders {
		out = append(out, b.column())
	}
	for _, b := range aggBuilders {
		out = append(out, b.column())
	}
	return New(out...)
}

// encodeKey renders key values into a composite map key. Each
// component is tagged and length-prefixed, so the encoding is
// injective: no byte sequence inside a string value can masquerade as
// a component boundary, and a null never collides with any literal
// value, "NA" included.
func encodeKey(vals []Value) string {
	var sb strings.Builder
	for _, v := range vals {
		if v.IsNull() {
			sb.WriteString("n;")
			continue
		}
		s := v.format()
		sb.WriteByte('v')
		sb.WriteString(strconv.Itoa(len(s)))
		sb.WriteByte(';')
		sb.WriteString(s)
	}
	return sb.String()
}
