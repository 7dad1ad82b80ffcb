package frame

import (
	"fmt"
	"unicode/utf8"

	"hmdacli/internal/errors"
)

// JoinOptions configures join behavior.
type JoinOptions struct {
	// Suffix renames right-side columns whose names clash with a
	// left-side column. Defaults to "_right".
	Suffix string
}

// LeftJoin joins right onto left by the shared key column. Every left
// row is retained; right-side attributes are null-filled where no
// right row matches, so joining statistics onto a geometry table
// never loses a boundary. When several right rows share a key the
// first one wins, keeping the output deterministic.
func LeftJoin(left, right *Table, key string, opts ...JoinOptions) (*Table, error) {
	opt := JoinOptions{Suffix: "_right"}
	if len(opts) > 0 && opts[0].Suffix != "" {
		opt = opts[0]
	}

	if err := left.requireColumns(key); err != nil {
		return nil, err
	}
	if err := right.requireColumns(key); err != nil {
		return nil, err
	}
	lk, _ := left.Column(key)
	rk, _ := right.Column(key)
	if lk.Kind() != rk.Kind() {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("join key %q is %s on the left and %s on the right", key, lk.Kind(), rk.Kind()), nil)
	}

	// Index the right side: first occurrence of each key wins.
	match := make(map[string]int, right.NumRows())
	for i := 0; i < right.NumRows(); i++ {
		v := rk.Value(i)
		if v.IsNull() {
			continue
		}
		enc := encodeKey([]Value{v})
		if _, ok := match[enc]; !ok {
			match[enc] = i
		}
	}

	var rightCols []*Column
	for _, c := range right.Columns() {
		if c.Name() == key {
			continue
		}
		rightCols = append(rightCols, c)
	}

	out := left.Columns()
	used := make(map[string]bool, len(out))
	for _, c := range out {
		used[c.Name()] = true
	}

	for _, rc := range rightCols {
		name := rc.Name()
		if used[name] {
			name += opt.Suffix
		}
		if used[name] {
			return nil, errors.NewCollisionError(
				fmt.Sprintf("join generates duplicate column name %q", name))
		}
		used[name] = true

		b := newColumnBuilder(name, rc.Kind())
		for i := 0; i < left.NumRows(); i++ {
			lv := lk.Value(i)
			if lv.IsNull() {
				b.appendNull()
				continue
			}
			j, ok := match[encodeKey([]Value{lv})]
			if !ok {
				b.appendNull()
				continue
			}
			if err := b.append(rc.Value(j)); err != nil {
				return nil, err
			}
		}
		out = append(out, b.column())
	}

	return New(out...)
}

// DerivePrefix appends a string column holding the first width runes
// of the source column, the key-derivation step that turns an
// 11-digit census tract into its 5-digit county identifier. A
// non-missing value shorter than width is a schema error, never a
// silent truncation. Missing values propagate as missing.
func DerivePrefix(t *Table, name, col string, width int) (*Table, error) {
	if err := t.requireColumns(col); err != nil {
		return nil, err
	}
	c, _ := t.Column(col)
	if c.Kind() != String {
		return nil, errors.NewSchemaError(
			fmt.Sprintf("prefix column %q is %s, want string", col, c.Kind()), nil)
	}

	// Validate lengths before building anything, so the error arrives
	// before any derived row exists.
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		if utf8.RuneCountInString(c.Value(i).Str()) < width {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("column %q row %d: identifier %q shorter than prefix width %d",
					col, i, c.Value(i).Str(), width), nil)
		}
	}

	return Derive(t, name, String, func(r Row) Value {
		cell := r.mustValue(col)
		if cell.IsNull() {
			return NullValue(String)
		}
		runes := []rune(cell.Str())
		return StringValue(string(runes[:width]))
	})
}
