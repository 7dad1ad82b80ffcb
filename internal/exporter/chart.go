package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"hmdacli/internal/analysis"
	"hmdacli/internal/chart"
)

// WriteChart writes the result's chart as a self-contained Vega-Lite
// document named <analysis>.vl.json and returns the full path.
func (e *Exporter) WriteChart(res *analysis.Result) (string, error) {
	fullPath := filepath.Join(e.outDir, res.Name+".vl.json")
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", fullPath, err)
	}
	defer file.Close()

	if err := chart.WriteVegaLite(file, res.Chart, res.Table); err != nil {
		return "", err
	}

	e.logger.Info("chart written", slog.String("path", fullPath))
	return fullPath, nil
}
