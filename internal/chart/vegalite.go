package chart

import (
	"encoding/json"
	"fmt"
	"io"

	"hmdacli/internal/errors"
	"hmdacli/internal/frame"
)

const vegaLiteSchema = "https://vega.github.io/schema/vega-lite/v5.json"

// WriteVegaLite serializes the spec and its data as a self-contained
// Vega-Lite v5 document. The data rides inline so the output file
// renders without access to the source tables.
func WriteVegaLite(w io.Writer, spec Spec, tbl *frame.Table) error {
	if err := spec.Validate(tbl); err != nil {
		return err
	}

	var (
		doc map[string]interface{}
		err error
	)
	if spec.Mark == MarkGeoshape {
		doc, err = geoshapeDoc(spec, tbl)
	} else {
		doc, err = plotDoc(spec, tbl)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write chart %s: %w", spec.Name, err)
	}
	return nil
}

// cellValue converts a table cell to its JSON representation. Missing
// cells become JSON null.
func cellValue(v frame.Value) interface{} {
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case frame.Float:
		return v.Float()
	case frame.Int:
		return v.Int()
	default:
		return v.Str()
	}
}

func dataValues(tbl *frame.Table) []map[string]interface{} {
	names := tbl.Names()
	values := make([]map[string]interface{}, tbl.NumRows())
	for i := 0; i < tbl.NumRows(); i++ {
		row := make(map[string]interface{}, len(names))
		for _, name := range names {
			v, _ := tbl.Row(i).Value(name)
			row[name] = cellValue(v)
		}
		values[i] = row
	}
	return values
}

func channel(e Encoding, defaultType string) map[string]interface{} {
	ch := map[string]interface{}{"field": e.Field}
	if e.Type != "" {
		ch["type"] = e.Type
	} else {
		ch["type"] = defaultType
	}
	if e.Title != "" {
		ch["title"] = e.Title
	}
	return ch
}

func plotDoc(spec Spec, tbl *frame.Table) (map[string]interface{}, error) {
	xType := "quantitative"
	if spec.Mark == MarkBar {
		xType = "nominal"
	}

	encoding := map[string]interface{}{
		"x": channel(spec.X, xType),
		"y": channel(spec.Y, "quantitative"),
	}
	if spec.Size.Field != "" {
		encoding["size"] = channel(spec.Size, "quantitative")
	}
	if spec.Fill.Field != "" {
		encoding["color"] = channel(spec.Fill, "nominal")
	}
	if len(spec.Tooltip) > 0 {
		tips := make([]map[string]interface{}, len(spec.Tooltip))
		for i, col := range spec.Tooltip {
			tips[i] = map[string]interface{}{"field": col}
		}
		encoding["tooltip"] = tips
	}

	doc := map[string]interface{}{
		"$schema": vegaLiteSchema,
		"title":   spec.Title,
		"data":    map[string]interface{}{"values": dataValues(tbl)},
	}

	if spec.Label == "" {
		doc["mark"] = spec.Mark
		doc["encoding"] = encoding
		return doc, nil
	}

	// Labeled scatter: a text layer rides next to the points, showing
	// the label column where it is non-missing.
	doc["layer"] = []map[string]interface{}{
		{
			"mark":     spec.Mark,
			"encoding": encoding,
		},
		{
			"mark": map[string]interface{}{"type": "text", "align": "left", "dx": 7},
			"encoding": map[string]interface{}{
				"x":    channel(spec.X, xType),
				"y":    channel(spec.Y, "quantitative"),
				"text": map[string]interface{}{"field": spec.Label},
			},
		},
	}
	return doc, nil
}

func geoshapeDoc(spec Spec, tbl *frame.Table) (map[string]interface{}, error) {
	geomCol, err := tbl.Column(spec.Geometry)
	if err != nil {
		return nil, err
	}

	names := tbl.Names()
	features := make([]map[string]interface{}, tbl.NumRows())
	for i := 0; i < tbl.NumRows(); i++ {
		props := make(map[string]interface{})
		for _, name := range names {
			if name == spec.Geometry {
				continue
			}
			v, _ := tbl.Row(i).Value(name)
			props[name] = cellValue(v)
		}

		var geometry interface{}
		if !geomCol.IsNull(i) {
			raw := json.RawMessage(geomCol.Value(i).Str())
			if !json.Valid(raw) {
				return nil, errors.NewParsingError(
					fmt.Sprintf("chart %q: row %d carries malformed geometry", spec.Name, i), nil)
			}
			geometry = raw
		}

		features[i] = map[string]interface{}{
			"type":       "Feature",
			"geometry":   geometry,
			"properties": props,
		}
	}

	encoding := map[string]interface{}{
		"color": map[string]interface{}{
			"field": "properties." + spec.Fill.Field,
			"type":  "quantitative",
			"title": spec.Fill.Title,
		},
	}
	if len(spec.Tooltip) > 0 {
		tips := make([]map[string]interface{}, len(spec.Tooltip))
		for i, col := range spec.Tooltip {
			tips[i] = map[string]interface{}{"field": "properties." + col}
		}
		encoding["tooltip"] = tips
	}

	return map[string]interface{}{
		"$schema":    vegaLiteSchema,
		"title":      spec.Title,
		"data":       map[string]interface{}{"values": features},
		"mark":       map[string]interface{}{"type": "geoshape", "stroke": "white", "strokeWidth": 0.5},
		"projection": map[string]interface{}{"type": "albersUsa"},
		"encoding":   encoding,
	}, nil
}
