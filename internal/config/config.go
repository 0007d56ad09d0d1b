// Package config provides configuration for all components. Values are
// resolved in priority order: environment variables override the optional
// JSON config file, which overrides the built-in defaults. The loaded
// configuration is passed down explicitly; there is no process-wide singleton.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// Config is the complete application configuration.
type Config struct {
	Storage StorageConfig `json:"storage"`
	Fetch   FetchConfig   `json:"fetch"`
	Chart   ChartConfig   `json:"chart"`
	Logging LoggingConfig `json:"logging"`
}

// StorageConfig configures the price store backend.
type StorageConfig struct {
	Type string `json:"type" env:"STOCKLENS_STORAGE_TYPE"` // "duckdb" or "memory"
	Path string `json:"path" env:"STOCKLENS_DB_PATH"`      // database file path, ":memory:" allowed
}

// FetchConfig configures the market-data fetcher.
type FetchConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second" env:"STOCKLENS_FETCH_RPS"`
	MaxRetryElapsedMS int     `json:"max_retry_elapsed_ms" env:"STOCKLENS_FETCH_RETRY_MS"` // total retry budget per request
}

// ChartConfig configures the chart presenter.
type ChartConfig struct {
	OutputPath string `json:"output_path" env:"STOCKLENS_CHART_PATH"` // empty means <ticker>.html
	Kind       string `json:"kind" env:"STOCKLENS_CHART_KIND"`        // "line" or "kline"
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level      string `json:"level" env:"STOCKLENS_LOG_LEVEL"`     // DEBUG, INFO, WARNING, ERROR, CRITICAL
	Format     string `json:"format" env:"STOCKLENS_LOG_FORMAT"`   // "text" or "json"
	Output     string `json:"output" env:"STOCKLENS_LOG_OUTPUT"`   // "stderr", "stdout" or "file"
	FilePath   string `json:"file_path" env:"STOCKLENS_LOG_FILE"`  // log file path when output is "file"
	MaxSizeMB  int    `json:"max_size_mb"`                         // rotate after this size
	MaxBackups int    `json:"max_backups"`                         // rotated files to keep
	MaxAgeDays int    `json:"max_age_days"`                        // rotated file retention
	Compress   bool   `json:"compress"`                            // gzip rotated files
}

// Default returns the built-in defaults: a persistent DuckDB file next to the
// binary, quiet logging to stderr, and a line chart.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Type: "duckdb",
			Path: "stocklens.db",
		},
		Fetch: FetchConfig{
			RequestsPerSecond: 2,
			MaxRetryElapsedMS: 30000,
		},
		Chart: ChartConfig{
			Kind: "line",
		},
		Logging: LoggingConfig{
			Level:      "CRITICAL",
			Format:     "text",
			Output:     "stderr",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load resolves the configuration. path may be empty or point at a JSON file;
// a missing file is not an error, a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, err
		}
	}
	loadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the resolved configuration for values no component can use.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "duckdb", "memory":
	default:
		return fmt.Errorf("unknown storage type %q (want duckdb or memory)", c.Storage.Type)
	}
	if c.Storage.Type == "duckdb" && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for duckdb storage")
	}
	if c.Fetch.RequestsPerSecond <= 0 {
		return fmt.Errorf("fetch requests_per_second must be positive")
	}
	switch c.Chart.Kind {
	case "line", "kline":
	default:
		return fmt.Errorf("unknown chart kind %q (want line or kline)", c.Chart.Kind)
	}
	if c.Logging.Output == "file" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path is required when log output is file")
	}
	return nil
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func loadFromEnv(cfg *Config) {
	if v := os.Getenv("STOCKLENS_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("STOCKLENS_DB_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("STOCKLENS_FETCH_RPS"); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Fetch.RequestsPerSecond = rps
		}
	}
	if v := os.Getenv("STOCKLENS_FETCH_RETRY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.MaxRetryElapsedMS = ms
		}
	}
	if v := os.Getenv("STOCKLENS_CHART_PATH"); v != "" {
		cfg.Chart.OutputPath = v
	}
	if v := os.Getenv("STOCKLENS_CHART_KIND"); v != "" {
		cfg.Chart.Kind = v
	}
	if v := os.Getenv("STOCKLENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("STOCKLENS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("STOCKLENS_LOG_OUTPUT"); v != "" {
		cfg.Logging.Output = v
	}
	if v := os.Getenv("STOCKLENS_LOG_FILE"); v != "" {
		cfg.Logging.FilePath = v
	}
}
