// Command hmda-charts runs the disparity analyses over a previously
// downloaded disclosure dataset and writes their tables and charts to
// the output directory: one CSV and one Vega-Lite document per
// analysis, plus a combined Excel workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hmdacli/internal/analysis"
	"hmdacli/internal/config"
	"hmdacli/internal/dataset"
	"hmdacli/internal/errors"
	"hmdacli/internal/exporter"
	"hmdacli/internal/frame"
	"hmdacli/internal/geo"
	"hmdacli/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	archivePath := flag.String("archive", "", "dataset archive or CSV path (defaults to <data-dir>/<archive-name>)")
	geometryPath := flag.String("geometry", "", "county boundary GeoJSON path (defaults to <data-dir>/<geometry-file>)")
	outDir := flag.String("out", "", "output directory (overrides config)")
	traceExporter := flag.String("trace-exporter", "none", "trace exporter: stdout | none")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Paths.OutDir = *outDir
	}
	if *archivePath == "" {
		*archivePath = filepath.Join(cfg.Paths.DataDir, cfg.Dataset.ArchiveName)
	}
	if *geometryPath == "" {
		*geometryPath = filepath.Join(cfg.Paths.DataDir, cfg.Geometry.FileName)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.TraceExporter = *traceExporter
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		logger.Warn("tracing disabled", slog.String("error", err.Error()))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
			}
		}()
	}

	if err := run(cfg, logger, *archivePath, *geometryPath); err != nil {
		logger.Error("analysis run failed", slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, archivePath, geometryPath string) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())
	logger = infrastructure.WithComponent(logger, "hmda-charts")

	loans, err := loadLoans(ctx, cfg, logger, archivePath)
	if err != nil {
		return err
	}

	stateFIPS, ok := dataset.StateFIPS[cfg.Analysis.MapState]
	if !ok {
		return errors.NewConfigError(
			fmt.Sprintf("unknown map state %q", cfg.Analysis.MapState), nil)
	}
	counties, err := geo.NewSource(logger).Load(geometryPath, stateFIPS)
	if err != nil {
		return err
	}

	results, err := analysis.New(cfg.Analysis, logger).Run(ctx, loans, counties)
	if err != nil {
		return err
	}

	exp := exporter.New(cfg.Paths.OutDir, logger)
	for _, res := range results {
		if _, err := exp.WriteCSV(res.Name, res.Table); err != nil {
			return err
		}
		if _, err := exp.WriteChart(res); err != nil {
			return err
		}
	}
	if _, err := exp.WriteWorkbook("analyses.xlsx", results); err != nil {
		return err
	}

	logger.InfoContext(ctx, "analyses complete",
		slog.Int("analyses", len(results)),
		slog.String("out_dir", cfg.Paths.OutDir))
	fmt.Printf("Wrote %d analyses to %s\n", len(results), cfg.Paths.OutDir)
	return nil
}

func loadLoans(ctx context.Context, cfg *config.Config, logger *slog.Logger, path string) (*frame.Table, error) {
	loader := dataset.NewLoader(cfg.Dataset, logger)
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		return loader.LoadCSV(ctx, path, dataset.DefaultSchema())
	}
	return loader.LoadArchive(ctx, path, dataset.DefaultSchema())
}
