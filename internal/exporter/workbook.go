package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"hmdacli/internal/analysis"
	"hmdacli/internal/frame"
)

// WriteWorkbook writes one Excel workbook with a sheet per analysis
// result and returns the full path. The geometry column is omitted
// from sheets; raw GeoJSON blobs are useless in a spreadsheet.
func (e *Exporter) WriteWorkbook(fileName string, results []*analysis.Result) (string, error) {
	fullPath := filepath.Join(e.outDir, fileName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for _, res := range results {
		if _, err := f.NewSheet(res.Name); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", res.Name, err)
		}
		if err := writeSheet(f, res.Name, res.Table, res.Chart.Geometry); err != nil {
			return "", err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("workbook written",
		slog.String("path", fullPath),
		slog.Int("sheets", len(results)))
	return fullPath, nil
}

func writeSheet(f *excelize.File, sheet string, tbl *frame.Table, skipCol string) error {
	var names []string
	for _, name := range tbl.Names() {
		if name == skipCol {
			continue
		}
		names = append(names, name)
	}

	for j, name := range names {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	for i := 0; i < tbl.NumRows(); i++ {
		for j, name := range names {
			v, _ := tbl.Row(i).Value(name)
			if v.IsNull() {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
			var cellValue interface{}
			switch v.Kind() {
			case frame.Float:
				cellValue = v.Float()
			case frame.Int:
				cellValue = v.Int()
			default:
				cellValue = v.Str()
			}
			if err := f.SetCellValue(sheet, cell, cellValue); err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
		}
	}
	return nil
}
