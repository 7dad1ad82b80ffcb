// Package chart declares renderer-agnostic chart specifications and
// serializes them, together with their data, as self-contained
// Vega-Lite documents. A Spec names columns of the table it will be
// rendered against; validation catches a dangling column reference
// before anything is written to disk.
package chart

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"hmdacli/internal/errors"
	"hmdacli/internal/frame"
)

// Mark kinds the renderer understands.
const (
	MarkPoint    = "point"
	MarkBar      = "bar"
	MarkGeoshape = "geoshape"
)

// Encoding binds a visual channel to a table column.
type Encoding struct {
	Field string `validate:"omitempty"`
	Type  string `validate:"omitempty,oneof=quantitative nominal ordinal"`
	Title string
}

// Spec describes one chart declaratively.
type Spec struct {
	Name  string `validate:"required"`
	Title string
	Mark  string `validate:"required,oneof=point bar geoshape"`

	X    Encoding
	Y    Encoding
	Size Encoding
	Fill Encoding
	// Label names a string column rendered as a text overlay next to
	// each point. Rows where the column is missing get no label.
	Label string
	// Geometry names the column carrying raw GeoJSON for geoshape
	// marks. Ignored for other marks.
	Geometry string

	Tooltip []string
}

var validate = validator.New()

// Validate checks the spec's internal consistency and that every
// referenced column exists in the table it will be rendered against.
func (s Spec) Validate(tbl *frame.Table) error {
	if err := validate.Struct(s); err != nil {
		return errors.NewValidationError(
			fmt.Sprintf("invalid chart spec %q", s.Name), err)
	}

	refs := []string{s.X.Field, s.Y.Field, s.Size.Field, s.Fill.Field, s.Label}
	refs = append(refs, s.Tooltip...)
	if s.Mark == MarkGeoshape {
		if s.Geometry == "" {
			return errors.NewValidationError(
				fmt.Sprintf("chart %q: geoshape mark needs a geometry column", s.Name), nil)
		}
		refs = append(refs, s.Geometry)
	}
	for _, col := range refs {
		if col == "" {
			continue
		}
		if !tbl.HasColumn(col) {
			return errors.NewSchemaError(
				fmt.Sprintf("chart %q references column %q not present in its data", s.Name, col), nil).
				WithContext("column", col)
		}
	}
	return nil
}
