// Command hmda-fetch downloads the mortgage-disclosure archive and the
// county boundary file into the local data directory. It is the only
// part of the toolchain that touches the network; hmda-charts runs
// entirely from the files this command leaves behind.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"hmdacli/internal/config"
	"hmdacli/internal/dataset"
	"hmdacli/internal/infrastructure"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional)")
	datasetURL := flag.String("dataset-url", "", "dataset archive URL (overrides config)")
	geometryURL := flag.String("geometry-url", "", "county boundary GeoJSON URL (overrides config)")
	dataDir := flag.String("data-dir", "", "download directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Printf("Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *datasetURL != "" {
		cfg.Dataset.URL = *datasetURL
	}
	if *geometryURL != "" {
		cfg.Geometry.URL = *geometryURL
	}
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Printf("Warning: failed to initialize logger, using default: %v\n", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if err := run(cfg, logger); err != nil {
		logger.Error("fetch failed", slog.String("error", err.Error()))
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	if cfg.Dataset.URL == "" && cfg.Geometry.URL == "" {
		return fmt.Errorf("nothing to fetch: set dataset and geometry URLs via flags, config file, or environment")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())
	logger = infrastructure.WithComponent(logger, "hmda-fetch")

	loader := dataset.NewLoader(cfg.Dataset, logger)

	// The two sources live on unrelated hosts; fetch them together.
	g, gctx := errgroup.WithContext(ctx)
	if cfg.Dataset.URL != "" {
		dest := filepath.Join(cfg.Paths.DataDir, cfg.Dataset.ArchiveName)
		g.Go(func() error {
			return loader.Fetch(gctx, cfg.Dataset.URL, dest)
		})
	}
	if cfg.Geometry.URL != "" {
		dest := filepath.Join(cfg.Paths.DataDir, cfg.Geometry.FileName)
		g.Go(func() error {
			return loader.Fetch(gctx, cfg.Geometry.URL, dest)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.InfoContext(ctx, "all sources downloaded",
		slog.String("data_dir", cfg.Paths.DataDir))
	fmt.Printf("Sources downloaded to %s\n", cfg.Paths.DataDir)
	return nil
}
