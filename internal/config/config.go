package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
	Geometry GeometryConfig `yaml:"geometry" envconfig:"GEOMETRY"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/hmdacli.log"`
}

// DatasetConfig describes the mortgage-disclosure source archive.
type DatasetConfig struct {
	URL          string        `yaml:"url" envconfig:"URL" validate:"omitempty,url"`
	ArchiveName  string        `yaml:"archive_name" envconfig:"ARCHIVE_NAME" default:"hmda.zip"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" default:"5m"`
	RateLimitRPS float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"1" validate:"gt=0"`
	RateBurst    int           `yaml:"rate_burst" envconfig:"RATE_BURST" default:"1" validate:"gte=1"`
}

// GeometryConfig describes the county-boundary source.
type GeometryConfig struct {
	URL      string `yaml:"url" envconfig:"URL" validate:"omitempty,url"`
	FileName string `yaml:"file_name" envconfig:"FILE_NAME" default:"counties.geojson"`
}

// AnalysisConfig carries the tunable cutoffs of the three analyses.
type AnalysisConfig struct {
	// MapState restricts the choropleth analysis to one state.
	MapState string `yaml:"map_state" envconfig:"MAP_STATE" default:"WV" validate:"len=2"`
	// HighRateCutoff is the rate-spread above which a loan counts as
	// high-rate on the county map.
	HighRateCutoff float64 `yaml:"high_rate_cutoff" envconfig:"HIGH_RATE_CUTOFF" default:"1.5"`
	// LabelMinCount is the per-state loan count above which the
	// scatter plot labels the state.
	LabelMinCount float64 `yaml:"label_min_count" envconfig:"LABEL_MIN_COUNT" default:"500" validate:"gte=0"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	OutDir  string `yaml:"out_dir" envconfig:"OUT_DIR" default:"out" validate:"required"`
}

// Load loads configuration from environment variables (HMDA_ prefix)
// layered over an optional YAML file. Environment values take
// precedence over file values; struct defaults fill the rest.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("HMDA", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = merge(*fileCfg, cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// merge fills zero-valued env fields from the file config; env wins
// where both are set.
func merge(fileCfg, envCfg Config) Config {
	if fileCfg.Logging.Level != "" && os.Getenv("HMDA_LOGGING_LEVEL") == "" {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if fileCfg.Logging.Output != "" && os.Getenv("HMDA_LOGGING_OUTPUT") == "" {
		envCfg.Logging.Output = fileCfg.Logging.Output
	}
	if fileCfg.Logging.FilePath != "" && os.Getenv("HMDA_LOGGING_FILE_PATH") == "" {
		envCfg.Logging.FilePath = fileCfg.Logging.FilePath
	}

	if fileCfg.Dataset.URL != "" && envCfg.Dataset.URL == "" {
		envCfg.Dataset.URL = fileCfg.Dataset.URL
	}
	if fileCfg.Dataset.FetchTimeout != 0 && os.Getenv("HMDA_DATASET_FETCH_TIMEOUT") == "" {
		envCfg.Dataset.FetchTimeout = fileCfg.Dataset.FetchTimeout
	}
	if fileCfg.Geometry.URL != "" && envCfg.Geometry.URL == "" {
		envCfg.Geometry.URL = fileCfg.Geometry.URL
	}
	if fileCfg.Analysis.MapState != "" && os.Getenv("HMDA_ANALYSIS_MAP_STATE") == "" {
		envCfg.Analysis.MapState = fileCfg.Analysis.MapState
	}
	if fileCfg.Analysis.HighRateCutoff != 0 && os.Getenv("HMDA_ANALYSIS_HIGH_RATE_CUTOFF") == "" {
		envCfg.Analysis.HighRateCutoff = fileCfg.Analysis.HighRateCutoff
	}
	if fileCfg.Paths.DataDir != "" && os.Getenv("HMDA_PATHS_DATA_DIR") == "" {
		envCfg.Paths.DataDir = fileCfg.Paths.DataDir
	}
	if fileCfg.Paths.OutDir != "" && os.Getenv("HMDA_PATHS_OUT_DIR") == "" {
		envCfg.Paths.OutDir = fileCfg.Paths.OutDir
	}

	return envCfg
}

// Validate checks the configuration against the struct validation tags.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// EnsureDirectories creates the data and output directories if needed.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.OutDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
