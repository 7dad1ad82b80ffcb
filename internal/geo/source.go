// Package geo loads county boundary geometries into a Table keyed by
// county FIPS code, ready for the left join that annotates statistics
// with polygons. Geometries are carried opaquely as raw GeoJSON; no
// geometric computation happens here or anywhere downstream, since
// drawing is the renderer's job.
package geo

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"hmdacli/internal/errors"
	"hmdacli/internal/frame"
)

// KeyColumn is the join key column name produced by the source.
const KeyColumn = "county_fips"

// GeometryColumn is the raw-GeoJSON geometry column name.
const GeometryColumn = "geometry"

// feature is the subset of a GeoJSON Feature the source reads.
type feature struct {
	Properties map[string]interface{} `json:"properties"`
	Geometry   json.RawMessage        `json:"geometry"`
}

type featureCollection struct {
	Features []feature `json:"features"`
}

// Source loads county boundaries from a GeoJSON file.
type Source struct {
	logger *slog.Logger
}

// NewSource creates a geometry source.
func NewSource(logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{logger: logger}
}

// Load reads a GeoJSON FeatureCollection into a Table with columns
// county_fips, county_name, and geometry. stateFIPS, when non-empty,
// keeps only counties whose FIPS starts with that state prefix. A
// feature without a GEOID property is a schema error: a polygon that
// cannot be joined would silently vanish from every map.
func (s *Source) Load(path, stateFIPS string) (*frame.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewSourceUnavailableError(
			fmt.Sprintf("failed to read geometry file %s", path), err)
	}

	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, errors.NewParsingError(
			fmt.Sprintf("failed to parse GeoJSON in %s", path), err)
	}

	var (
		fips, names, geoms []string
		nameValid          []bool
	)
	for i, f := range fc.Features {
		geoid, ok := f.Properties["GEOID"].(string)
		if !ok || geoid == "" {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("feature %d has no GEOID property", i), nil)
		}
		if len(geoid) < 5 {
			return nil, errors.NewSchemaError(
				fmt.Sprintf("feature %d: GEOID %q shorter than a county FIPS code", i, geoid), nil)
		}
		county := geoid[:5]
		if stateFIPS != "" && county[:2] != stateFIPS {
			continue
		}

		fips = append(fips, county)
		geoms = append(geoms, string(f.Geometry))
		if name, ok := f.Properties["NAME"].(string); ok && name != "" {
			names = append(names, name)
			nameValid = append(nameValid, true)
		} else {
			names = append(names, "")
			nameValid = append(nameValid, false)
		}
	}

	s.logger.Info("geometry loaded",
		slog.String("path", path),
		slog.Int("counties", len(fips)))

	return frame.New(
		frame.NewStringColumn(KeyColumn, fips, nil),
		frame.NewStringColumn("county_name", names, nameValid),
		frame.NewStringColumn(GeometryColumn, geoms, nil),
	)
}
