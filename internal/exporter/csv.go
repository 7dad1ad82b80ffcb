package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"hmdacli/internal/frame"
)

// Exporter writes analysis output files under a single directory.
type Exporter struct {
	outDir string
	logger *slog.Logger
}

// New creates an exporter rooted at outDir.
func New(outDir string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{outDir: outDir, logger: logger}
}

// cellString renders one cell for CSV output. Missing cells become
// empty fields.
func cellString(v frame.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case frame.Float:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case frame.Int:
		return strconv.FormatInt(v.Int(), 10)
	default:
		return v.Str()
	}
}

// WriteCSV writes the table as <name>.csv and returns the full path.
// The UTF-8 BOM keeps Excel from misreading the encoding.
func (e *Exporter) WriteCSV(name string, tbl *frame.Table) (string, error) {
	fullPath := filepath.Join(e.outDir, name+".csv")
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", fullPath, err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(tbl.Names()); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	names := tbl.Names()
	record := make([]string, len(names))
	for i := 0; i < tbl.NumRows(); i++ {
		for j, col := range names {
			v, _ := tbl.Row(i).Value(col)
			record[j] = cellString(v)
		}
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	e.logger.Info("CSV written",
		slog.String("path", fullPath),
		slog.Int("rows", tbl.NumRows()))
	return fullPath, nil
}
