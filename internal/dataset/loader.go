package dataset

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"hmdacli/internal/config"
	"hmdacli/internal/errors"
	"hmdacli/internal/frame"
)

// Loader fetches the remote dataset archive and turns it into a Table.
// The fetch is the only blocking operation in the system: it is
// timeout-bounded, rate-limited, and always releases the connection.
type Loader struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewLoader creates a loader from the dataset configuration.
func NewLoader(cfg config.DatasetConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateBurst),
		logger:  logger,
	}
}

// Fetch downloads url to destPath. Network errors, timeouts, and
// non-success statuses all surface as source-unavailable, distinct
// from the schema errors a malformed dataset produces later.
func (l *Loader) Fetch(ctx context.Context, url, destPath string) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.NewSourceUnavailableError("rate limiter interrupted", err)
	}

	l.logger.InfoContext(ctx, "fetching source file",
		slog.String("url", url),
		slog.String("dest", destPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewSourceUnavailableError("failed to build request", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return errors.NewSourceUnavailableError(
			fmt.Sprintf("failed to fetch %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.NewSourceUnavailableError(
			fmt.Sprintf("fetch %s: unexpected status %d", url, resp.StatusCode), nil)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	tmp := destPath + ".partial"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	written, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp)
		return errors.NewSourceUnavailableError(
			fmt.Sprintf("failed to download %s", url), err)
	}
	if err := os.Rename(tmp, destPath); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}

	l.logger.InfoContext(ctx, "source file downloaded",
		slog.String("dest", destPath),
		slog.Int64("bytes", written))

	return nil
}

// LoadArchive opens a zip archive and parses the first CSV entry into
// a Table typed by the schema.
func (l *Loader) LoadArchive(ctx context.Context, path string, schema Schema) (*frame.Table, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.NewSourceUnavailableError(
			fmt.Sprintf("failed to open archive %s", path), err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".csv") {
			continue
		}
		l.logger.InfoContext(ctx, "loading dataset from archive",
			slog.String("archive", path),
			slog.String("entry", entry.Name))

		rc, err := entry.Open()
		if err != nil {
			return nil, errors.NewSourceUnavailableError(
				fmt.Sprintf("failed to open archive entry %s", entry.Name), err)
		}
		tbl, err := ParseCSV(rc, schema)
		rc.Close()
		if err != nil {
			return nil, err
		}

		l.logger.InfoContext(ctx, "dataset loaded",
			slog.Int("rows", tbl.NumRows()),
			slog.Int("columns", tbl.NumCols()))
		return tbl, nil
	}

	return nil, errors.NewSourceUnavailableError(
		fmt.Sprintf("archive %s contains no CSV entry", path), nil)
}

// LoadCSV parses a plain CSV file into a Table typed by the schema.
func (l *Loader) LoadCSV(ctx context.Context, path string, schema Schema) (*frame.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewSourceUnavailableError(
			fmt.Sprintf("failed to open %s", path), err)
	}
	defer file.Close()

	tbl, err := ParseCSV(file, schema)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.Int("rows", tbl.NumRows()),
		slog.Int("columns", tbl.NumCols()))
	return tbl, nil
}
