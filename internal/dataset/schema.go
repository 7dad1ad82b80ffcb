package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"hmdacli/internal/errors"
	"hmdacli/internal/frame"
)

// Field declares one typed column the loader extracts from the CSV.
type Field struct {
	Name string
	Kind frame.Kind
}

// Schema is the explicit column typing for a dataset. Columns present
// in the file but absent from the schema are ignored; schema fields
// absent from the file header are a schema error.
type Schema struct {
	Fields []Field
}

// DefaultSchema returns the schema of the loan-level mortgage
// disclosure extract the analyses consume.
func DefaultSchema() Schema {
	return Schema{Fields: []Field{
		{Name: "state", Kind: frame.String},
		{Name: "census_tract", Kind: frame.String},
		{Name: "race", Kind: frame.Int},
		{Name: "ethnicity", Kind: frame.Int},
		{Name: "action_taken", Kind: frame.Int},
		{Name: "property_interest", Kind: frame.Int},
		{Name: "rate_spread", Kind: frame.Float},
	}}
}

// ParseCSV reads a header-first CSV stream into a Table typed by the
// schema. Empty cells and the "NA" marker become missing values; a
// cell that cannot be parsed as its declared kind is a parsing error
// carrying the offending row number.
func ParseCSV(r io.Reader, schema Schema) (*frame.Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewParsingError("failed to read CSV header", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}

	type fieldState struct {
		Field
		pos    int
		floats []float64
		ints   []int64
		strs   []string
		valid  []bool
	}
	fields := make([]*fieldState, len(schema.Fields))
	for i, f := range schema.Fields {
		pos, ok := colIdx[f.Name]
		if !ok {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("schema column %q not found in CSV header", f.Name), nil)
		}
		fields[i] = &fieldState{Field: f, pos: pos}
	}

	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParsingError(
				fmt.Sprintf("failed to read CSV row %d", rowNum+1), err)
		}
		rowNum++

		for _, f := range fields {
			cell := record[f.pos]
			if cell == "" || cell == "NA" {
				f.valid = append(f.valid, false)
				switch f.Kind {
				case frame.Float:
					f.floats = append(f.floats, 0)
				case frame.Int:
					f.ints = append(f.ints, 0)
				default:
					f.strs = append(f.strs, "")
				}
				continue
			}

			switch f.Kind {
			case frame.Float:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, errors.NewParsingError(
						fmt.Sprintf("row %d: column %q: %q is not a float", rowNum, f.Name, cell), err)
				}
				f.floats = append(f.floats, v)
			case frame.Int:
				v, err := strconv.ParseInt(cell, 10, 64)
				if err != nil {
					return nil, errors.NewParsingError(
						fmt.Sprintf("row %d: column %q: %q is not an int", rowNum, f.Name, cell), err)
				}
				f.ints = append(f.ints, v)
			default:
				f.strs = append(f.strs, cell)
			}
			f.valid = append(f.valid, true)
		}
	}

	cols := make([]*frame.Column, len(fields))
	for i, f := range fields {
		switch f.Kind {
		case frame.Float:
			cols[i] = frame.NewFloatColumn(f.Name, f.floats, f.valid)
		case frame.Int:
			cols[i] = frame.NewIntColumn(f.Name, f.ints, f.valid)
		default:
			cols[i] = frame.NewStringColumn(f.Name, f.strs, f.valid)
		}
	}
	return frame.New(cols...)
}
