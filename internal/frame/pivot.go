package frame

import (
	"fmt"
	"strings"

	"hmdacli/internal/errors"
)

// PivotWider reshapes a long table into a wide one: one output row per
// distinct combination of the residual key columns (everything except
// namesFrom and valuesFrom), and one output column per value column
// per distinct value observed in namesFrom, named <value>_<keyvalue>.
// Combinations absent from the input become missing cells, never
// dropped rows. Two distinct key values generating the same column
// name is a collision error, reported rather than silently
// overwritten.
func PivotWider(t *Table, namesFrom string, valuesFrom ...string) (*Table, error) {
	if len(valuesFrom) == 0 {
		return nil, errors.NewSchemaError("pivot requires at least one value column", nil)
	}
	refs := append([]string{namesFrom}, valuesFrom...)
	if err := t.requireColumns(refs...); err != nil {
		return nil, err
	}

	pivoted := make(map[string]bool, len(refs))
	for _, name := range refs {
		pivoted[name] = true
	}
	var idCols []string
	for _, name := range t.Names() {
		if !pivoted[name] {
			idCols = append(idCols, name)
		}
	}

	nameCol, _ := t.Column(namesFrom)
	idColumns := make([]*Column, len(idCols))
	for i, name := range idCols {
		idColumns[i], _ = t.Column(name)
	}
	valColumns := make([]*Column, len(valuesFrom))
	for i, name := range valuesFrom {
		valColumns[i], _ = t.Column(name)
	}

	// First pass: distinct pivot-key values and residual-key rows, in
	// first-seen order.
	var keyOrder []string        // encoded pivot-key values
	keyLabel := make(map[string]string)
	var rowOrder []string        // encoded residual keys
	rowIndex := make(map[string]int)
	rowKeys := make(map[string][]Value)

	for row := 0; row < t.NumRows(); row++ {
		kv := nameCol.Value(row)
		enc := encodeKey([]Value{kv})
		if _, ok := keyLabel[enc]; !ok {
			keyLabel[enc] = kv.format()
			keyOrder = append(keyOrder, enc)
		}

		idVals := make([]Value, len(idColumns))
		for i, c := range idColumns {
			idVals[i] = c.Value(row)
		}
		idEnc := encodeKey(idVals)
		if _, ok := rowIndex[idEnc]; !ok {
			rowIndex[idEnc] = len(rowOrder)
			rowOrder = append(rowOrder, idEnc)
			rowKeys[idEnc] = idVals
		}
	}

	// Generated column names, with collision detection against both
	// each other and the residual key columns.
	type wideCol struct {
		name   string
		keyEnc string
		valIdx int
	}
	used := make(map[string]bool, len(idCols))
	for _, name := range idCols {
		used[name] = true
	}
	var wide []wideCol
	for vi, vname := range valuesFrom {
		for _, enc := range keyOrder {
			name := vname + "_" + keyLabel[enc]
			if used[name] {
				return nil, errors.NewCollisionError(
					fmt.Sprintf("pivot generates duplicate column name %q", name))
			}
			used[name] = true
			wide = append(wide, wideCol{name: name, keyEnc: enc, valIdx: vi})
		}
	}

	// Second pass: fill cells. Later occurrences of the same
	// (row, column) combination overwrite earlier ones.
	cells := make([][]Value, len(wide))
	for i, wc := range wide {
		cells[i] = make([]Value, len(rowOrder))
		for j := range cells[i] {
			cells[i][j] = NullValue(valColumns[wc.valIdx].Kind())
		}
	}
	colAt := make([]map[string]int, len(valuesFrom)) // valIdx -> keyEnc -> wide slot
	for i, wc := range wide {
		if colAt[wc.valIdx] == nil {
			colAt[wc.valIdx] = make(map[string]int)
		}
		colAt[wc.valIdx][wc.keyEnc] = i
	}

	for row := 0; row < t.NumRows(); row++ {
		kEnc := encodeKey([]Value{nameCol.Value(row)})
		idVals := make([]Value, len(idColumns))
		for i, c := range idColumns {
			idVals[i] = c.Value(row)
		}
		j := rowIndex[encodeKey(idVals)]
		for vi, vc := range valColumns {
			i := colAt[vi][kEnc]
			cells[i][j] = vc.Value(row)
		}
	}

	// Assemble: residual keys first, then the generated columns.
	out := make([]*Column, 0, len(idCols)+len(wide))
	for i, name := range idCols {
		b := newColumnBuilder(name, idColumns[i].Kind())
		for _, enc := range rowOrder {
			if err := b.append(rowKeys[enc][i]); err != nil {
				return nil, err
			}
		}
		out = append(out, b.column())
	}
	for i, wc := range wide {
		b := newColumnBuilder(wc.name, valColumns[wc.valIdx].Kind())
		for j := range rowOrder {
			if err := b.append(cells[i][j]); err != nil {
				return nil, err
			}
		}
		out = append(out, b.column())
	}
	return New(out...)
}

// PivotLonger is the inverse reshape: every column not named in
// idCols melts into (namesTo, valuesTo) pairs, one output row per
// input row per melted column. A "<valuesTo>_" prefix on a melted
// column name is stripped, undoing PivotWider's naming scheme so the
// original key values come back. Missing cells are skipped: they
// stand for combinations that were absent before the widening. All
// melted columns must share one kind.
func PivotLonger(t *Table, idCols []string, namesTo, valuesTo string) (*Table, error) {
	if err := t.requireColumns(idCols...); err != nil {
		return nil, err
	}

	id := make(map[string]bool, len(idCols))
	for _, name := range idCols {
		id[name] = true
	}
	var melted []*Column
	for _, c := range t.Columns() {
		if !id[c.Name()] {
			melted = append(melted, c)
		}
	}
	if len(melted) == 0 {
		return nil, errors.NewSchemaError("pivot longer: no columns to melt", nil)
	}
	kind := melted[0].Kind()
	for _, c := range melted[1:] {
		if c.Kind() != kind {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("pivot longer: column %q is %s, want %s", c.Name(), c.Kind(), kind), nil)
		}
	}

	idBuilders := make([]*columnBuilder, len(idCols))
	idColumns := make([]*Column, len(idCols))
	for i, name := range idCols {
		idColumns[i], _ = t.Column(name)
		idBuilders[i] = newColumnBuilder(name, idColumns[i].Kind())
	}
	nameB := newColumnBuilder(namesTo, String)
	valueB := newColumnBuilder(valuesTo, kind)

	for row := 0; row < t.NumRows(); row++ {
		for _, c := range melted {
			v := c.Value(row)
			if v.IsNull() {
				continue
			}
			for i, ic := range idColumns {
				if err := idBuilders[i].append(ic.Value(row)); err != nil {
					return nil, err
				}
			}
			if err := nameB.append(StringValue(strings.TrimPrefix(c.Name(), valuesTo+"_"))); err != nil {
				return nil, err
			}
			if err := valueB.append(v); err != nil {
				return nil, err
			}
		}
	}

	out := make([]*Column, 0, len(idBuilders)+2)
	for _, b := range idBuilders {
		out = append(out, b.column())
	}
	out = append(out, nameB.column(), valueB.column())
	return New(out...)
}
