//-------------------------------------------------------------------------
//
// pgEdge Gold Reports
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-goldreports.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pgEdge/pgedge-goldreports/internal/segment"
)

// Output formats accepted by Run.Format.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// Config holds all configuration for pgedge-goldreports.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// Schema is the schema holding the gold layer tables and views.
	Schema string `mapstructure:"schema" validate:"required"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// LogFormat selects console (pretty) or json log output.
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=console json"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Run holds configuration for the run subcommand.
	Run RunConfig `mapstructure:"run"`

	// Segments holds the segmentation thresholds shared by reports and views.
	Segments segment.Thresholds `mapstructure:"segments"`
}

// InitConfig holds configuration for schema creation and fixture seeding.
type InitConfig struct {
	// Size is the approximate size of generated fixture data (e.g., "50MB").
	Size string `mapstructure:"size"`

	// Seed makes fixture generation reproducible; 0 picks a random seed.
	Seed uint64 `mapstructure:"seed"`

	// StartDate and EndDate bound generated order dates (YYYY-MM-DD).
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`

	// DropExisting drops the existing schema before initialization.
	DropExisting bool `mapstructure:"drop_existing"`

	// SkipViews leaves the reporting views uncreated.
	SkipViews bool `mapstructure:"skip_views"`
}

// RunConfig holds configuration for report execution.
type RunConfig struct {
	// Format is the output format: table, csv or json.
	Format string `mapstructure:"format" validate:"oneof=table csv json"`

	// Limit overrides the row limit of ranking and reporting reports (0 = report default).
	Limit int `mapstructure:"limit" validate:"gte=0"`

	// AsOf is the reference date for ages and recency (YYYY-MM-DD, empty = today).
	AsOf string `mapstructure:"as_of"`

	// Concurrency is the number of worker connections used to run reports.
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=64"`

	// ReportInterval is how often to log progress (in seconds, 0 = never).
	ReportInterval int `mapstructure:"report_interval" validate:"gte=0"`

	// Output is the file to write results to; empty means stdout.
	Output string `mapstructure:"output"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Schema:    "gold",
		LogLevel:  "info",
		LogFormat: "console",
		Init: InitConfig{
			Size:         "10MB",
			StartDate:    "2010-12-29",
			EndDate:      "2014-01-28",
			DropExisting: false,
		},
		Run: RunConfig{
			Format:         FormatTable,
			Concurrency:    4,
			ReportInterval: 0,
		},
		Segments: segment.DefaultThresholds(),
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-goldreports.yaml
// 3. ~/.config/pgedge-goldreports/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("pgedge-goldreports")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-goldreports"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.Segments.Validate()
}

// ValidateInit checks configuration required for init command.
func (c *Config) ValidateInit() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Init.Size == "" {
		return fmt.Errorf("fixture size is required for init")
	}
	start, err := parseDate("init.start_date", c.Init.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("init.end_date", c.Init.EndDate)
	if err != nil {
		return err
	}
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("init.start_date and init.end_date are required")
	}
	if !end.After(start) {
		return fmt.Errorf("init.end_date must be after init.start_date")
	}
	return nil
}

// ValidateRun checks configuration required for run command.
func (c *Config) ValidateRun() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := c.AsOf(); err != nil {
		return err
	}
	return nil
}

// AsOf returns the parsed reference date, or the zero time when unset.
func (c *Config) AsOf() (time.Time, error) {
	return parseDate("run.as_of", c.Run.AsOf)
}

// DateRange returns the parsed fixture order date range.
func (c *Config) DateRange() (time.Time, time.Time, error) {
	start, err := parseDate("init.start_date", c.Init.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate("init.end_date", c.Init.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD: %w", field, err)
	}
	return t, nil
}
