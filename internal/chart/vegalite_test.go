package chart

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hmdacli/internal/errors"
	"hmdacli/internal/frame"
)

func scatterTable() *frame.Table {
	return frame.MustNew(
		frame.NewStringColumn("state", []string{"WV", "MD", "VA"}, nil),
		frame.NewFloatColumn("mean_spread_4", []float64{5.0, 2.5, 3.0}, []bool{true, true, false}),
		frame.NewFloatColumn("mean_spread_9", []float64{1.0, 2.0, 2.2}, nil),
		frame.NewStringColumn("label", []string{"WV", "", ""}, []bool{true, false, false}),
	)
}

func scatterSpec() Spec {
	return Spec{
		Name:  "rate_spread_by_state_race",
		Title: "Mean rate spread by state",
		Mark:  MarkPoint,
		X:     Encoding{Field: "mean_spread_9", Title: "White applicants"},
		Y:     Encoding{Field: "mean_spread_4", Title: "Black applicants"},
		Label: "label",
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	return doc
}

func TestWriteVegaLiteScatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteVegaLite(&buf, scatterSpec(), scatterTable()))

	doc := decode(t, &buf)
	assert.Equal(t, vegaLiteSchema, doc["$schema"])

	values := doc["data"].(map[string]interface{})["values"].([]interface{})
	require.Len(t, values, 3)

	// Missing cells serialize as JSON null.
	third := values[2].(map[string]interface{})
	assert.Nil(t, third["mean_spread_4"])
	assert.Nil(t, third["label"])
	assert.InDelta(t, 2.2, third["mean_spread_9"].(float64), 1e-9)

	// The label column adds a text layer.
	layers := doc["layer"].([]interface{})
	require.Len(t, layers, 2)
}

func TestWriteVegaLiteBar(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewStringColumn("dwelling_category", []string{"Site-built", "Manufactured home and land"}, nil),
		frame.NewFloatColumn("approval_rate", []float64{0.8, 0.55}, nil),
	)
	spec := Spec{
		Name: "approval_by_dwelling",
		Mark: MarkBar,
		X:    Encoding{Field: "dwelling_category"},
		Y:    Encoding{Field: "approval_rate", Title: "Share originated"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVegaLite(&buf, spec, tbl))

	doc := decode(t, &buf)
	enc := doc["encoding"].(map[string]interface{})
	assert.Equal(t, "nominal", enc["x"].(map[string]interface{})["type"])
	assert.Equal(t, "quantitative", enc["y"].(map[string]interface{})["type"])
}

func TestWriteVegaLiteGeoshape(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewStringColumn("county_fips", []string{"54001", "54003"}, nil),
		frame.NewFloatColumn("high_rate_share", []float64{0.4, 0}, []bool{true, false}),
		frame.NewStringColumn("geometry", []string{
			`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`,
			`{"type":"Polygon","coordinates":[[[1,1],[2,1],[2,2],[1,1]]]}`,
		}, nil),
	)
	spec := Spec{
		Name:     "county_high_rate_map",
		Mark:     MarkGeoshape,
		Fill:     Encoding{Field: "high_rate_share", Title: "High-rate share"},
		Geometry: "geometry",
		Tooltip:  []string{"county_fips"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVegaLite(&buf, spec, tbl))

	doc := decode(t, &buf)
	values := doc["data"].(map[string]interface{})["values"].([]interface{})
	require.Len(t, values, 2)

	first := values[0].(map[string]interface{})
	assert.Equal(t, "Feature", first["type"])
	geom := first["geometry"].(map[string]interface{})
	assert.Equal(t, "Polygon", geom["type"])

	// Counties without statistics keep their polygon with a null fill.
	second := values[1].(map[string]interface{})
	assert.Nil(t, second["properties"].(map[string]interface{})["high_rate_share"])

	enc := doc["encoding"].(map[string]interface{})
	color := enc["color"].(map[string]interface{})
	assert.Equal(t, "properties.high_rate_share", color["field"])
}

func TestSpecValidation(t *testing.T) {
	tbl := scatterTable()

	t.Run("unknown column", func(t *testing.T) {
		spec := scatterSpec()
		spec.Y.Field = "no_such_column"
		err := WriteVegaLite(&bytes.Buffer{}, spec, tbl)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
	})

	t.Run("unknown mark", func(t *testing.T) {
		spec := scatterSpec()
		spec.Mark = "donut"
		err := WriteVegaLite(&bytes.Buffer{}, spec, tbl)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})

	t.Run("geoshape without geometry", func(t *testing.T) {
		spec := Spec{Name: "map", Mark: MarkGeoshape, Fill: Encoding{Field: "mean_spread_4"}}
		err := WriteVegaLite(&bytes.Buffer{}, spec, tbl)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	})
}

func TestWriteVegaLiteMalformedGeometry(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewStringColumn("county_fips", []string{"54001"}, nil),
		frame.NewStringColumn("geometry", []string{"{broken"}, nil),
	)
	spec := Spec{Name: "map", Mark: MarkGeoshape, Fill: Encoding{Field: "county_fips"}, Geometry: "geometry"}

	err := WriteVegaLite(&bytes.Buffer{}, spec, tbl)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeParsing))
}
