// Package config defines the process-wide configuration for the analytics
// server and client. A single Config is constructed at startup and passed by
// reference to each component constructor.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/localrivet/configurator"
)

// Config represents the analytics service configuration
type Config struct {
	// Store contains data-store configuration.
	Store struct {
		// SQLitePath is the path to the SQLite database file.
		SQLitePath string `json:"sqlite_path" env:"SQLITE_PATH" validate:"required"`

		// QueryTimeoutSeconds bounds a single statement execution.
		QueryTimeoutSeconds int `json:"query_timeout_seconds" env:"QUERY_TIMEOUT_SECONDS" validate:"min:1"`
	} `json:"store"`

	// Query contains limits applied to ad-hoc and sample queries.
	Query struct {
		// MaxRows caps the rows returned by query_database when the
		// statement carries no explicit limit.
		MaxRows int `json:"max_rows" env:"MAX_ROWS" validate:"min:1"`

		// SampleRows is the default row count for get_sample_data.
		SampleRows int `json:"sample_rows" env:"SAMPLE_ROWS" validate:"min:1"`

		// DisplayRows caps the rows rendered into text output.
		DisplayRows int `json:"display_rows" env:"DISPLAY_ROWS" validate:"min:1"`
	} `json:"query"`

	// Analytics contains thresholds for the canned aggregations.
	Analytics struct {
		// SegmentTiers are the upper click-count bounds of the session
		// tiers, in ascending order. Sessions above the last bound fall
		// into the open-ended top tier.
		SegmentTiers []int `json:"segment_tiers" env:"SEGMENT_TIERS"`

		// ProductTopN is the default ranking cutoff for product_performance.
		ProductTopN int `json:"product_top_n" env:"PRODUCT_TOP_N" validate:"min:1"`
	} `json:"analytics"`

	// Chart contains rendering defaults.
	Chart struct {
		// Width and Height are the rendered image dimensions in pixels.
		Width  int `json:"width" env:"CHART_WIDTH" validate:"min:1"`
		Height int `json:"height" env:"CHART_HEIGHT" validate:"min:1"`

		// OutputDir is where the client saves received chart images.
		OutputDir string `json:"output_dir" env:"CHART_OUTPUT_DIR"`
	} `json:"chart"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".ecommerceconfig"
	DefaultSQLitePath     = "ecommerce.db"
	DefaultQueryTimeout   = 30
	DefaultMaxRows        = 1000
	DefaultSampleRows     = 10
	DefaultDisplayRows    = 20
	DefaultProductTopN    = 20
	DefaultChartWidth     = 800
	DefaultChartHeight    = 600
	DefaultChartOutputDir = "charts"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// DefaultSegmentTiers are the session tier boundaries: 1 click, 2-5, 6-15,
// 16-30, and 31+ clicks.
var DefaultSegmentTiers = []int{1, 5, 15, 30}

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	cfg := &Config{}
	cfg.Store.SQLitePath = DefaultSQLitePath
	cfg.Store.QueryTimeoutSeconds = DefaultQueryTimeout
	cfg.Query.MaxRows = DefaultMaxRows
	cfg.Query.SampleRows = DefaultSampleRows
	cfg.Query.DisplayRows = DefaultDisplayRows
	cfg.Analytics.SegmentTiers = append([]int(nil), DefaultSegmentTiers...)
	cfg.Analytics.ProductTopN = DefaultProductTopN
	cfg.Chart.Width = DefaultChartWidth
	cfg.Chart.Height = DefaultChartHeight
	cfg.Chart.OutputDir = DefaultChartOutputDir
	cfg.Logging.Level = DefaultLogLevel
	cfg.Logging.Format = DefaultLogFormat
	return cfg
}

// QueryTimeout returns the statement timeout as a duration.
func (c *Config) QueryTimeout() time.Duration {
	return time.Duration(c.Store.QueryTimeoutSeconds) * time.Second
}

// LoadConfig loads the configuration from the default path
func LoadConfig() (*Config, error) {
	return LoadConfigWithPath(DefaultConfigFilename)
}

// LoadConfigWithPath loads the configuration from a specific path
func LoadConfigWithPath(configPath string) (*Config, error) {
	stdLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := NewConfig()

	// Try to find config file if path is default
	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			stdLogger.Debug("Found config file at " + foundPath)
		}
	}

	// Missing file means defaults plus environment overrides
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		stdLogger.Info("Config file not found, using default configuration", "path", configPath)
		loader := configurator.New(stdLogger).
			WithProvider(configurator.NewDefaultProvider()).
			WithProvider(configurator.NewEnvProvider("ECOMMERCE")).
			WithValidator(configurator.NewDefaultValidator())
		if err := loader.Load(context.Background(), cfg); err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}

	stdLogger.Info("Loading configuration", "path", configPath)

	loader := configurator.New(stdLogger).
		WithProvider(configurator.NewDefaultProvider()).
		WithProvider(configurator.NewFileProvider(configPath)).
		WithProvider(configurator.NewEnvProvider("ECOMMERCE")).
		WithValidator(configurator.NewDefaultValidator())

	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// NewLogger builds a slog.Logger from the logging configuration. Output goes
// to stderr so it never interferes with the stdio protocol transport.
func NewLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
