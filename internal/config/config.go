package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"
)

// Config holds all run settings, populated from environment variables and
// optionally overlaid by a YAML run file.
type Config struct {
	DataDir   string
	OutputDir string
	FigDir    string

	ClimatologyWindowYears int
	Workers                int
	CacheSize              int // 0 disables the series cache
	PlotFormat             string
	Weighted               bool

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	Table TableRun
	Plot  PlotRun
}

// TableRun holds defaults for the table command.
type TableRun struct {
	Month  string   `yaml:"month"`
	Years  []int    `yaml:"years"`
	Cities []string `yaml:"cities"`
}

// PlotRun holds defaults for the plot command.
type PlotRun struct {
	City         string `yaml:"city"`
	Year         int    `yaml:"year"`
	Variable     string `yaml:"variable"`
	Season       string `yaml:"season"`
	SmoothWindow int    `yaml:"smooth_window"`
	DropLeapDays bool   `yaml:"drop_leap_days"`
}

// runFile is the YAML layout. Zero values leave the environment setting alone.
type runFile struct {
	DataDir                string   `yaml:"data_dir"`
	OutputDir              string   `yaml:"output_dir"`
	FigDir                 string   `yaml:"fig_dir"`
	ClimatologyWindowYears int      `yaml:"climatology_window_years"`
	Workers                int      `yaml:"workers"`
	CacheSize              *int     `yaml:"cache_size"`
	PlotFormat             string   `yaml:"plot_format"`
	Weighted               *bool    `yaml:"weighted"`
	KafkaBrokers           []string `yaml:"kafka_brokers"`
	KafkaTopic             string   `yaml:"kafka_topic"`
	Table                  TableRun `yaml:"table"`
	Plot                   PlotRun  `yaml:"plot"`
}

// Load reads configuration from environment variables, applying defaults where
// unset, then overlays the run file at path (or CLIMSTATS_CONFIG when path is
// empty).
func Load(path string) (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	window, err := parseIntEnv("CLIMATOLOGY_WINDOW_YEARS", 20)
	if err != nil {
		return nil, err
	}
	workers, err := parseIntEnv("WORKERS", 1)
	if err != nil {
		return nil, err
	}
	cacheSize, err := parseIntEnv("CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	weighted, err := strconv.ParseBool(sharedcfg.EnvOrDefault("SPATIAL_WEIGHTING", "false"))
	if err != nil {
		return nil, errors.New("invalid SPATIAL_WEIGHTING")
	}

	cfg := &Config{
		DataDir:                sharedcfg.EnvOrDefault("DATA_DIR", "./data/senorge"),
		OutputDir:              sharedcfg.EnvOrDefault("OUTPUT_DIR", "./data"),
		FigDir:                 sharedcfg.EnvOrDefault("FIG_DIR", "./fig"),
		ClimatologyWindowYears: window,
		Workers:                workers,
		CacheSize:              cacheSize,
		PlotFormat:             strings.ToLower(sharedcfg.EnvOrDefault("PLOT_FORMAT", "png")),
		Weighted:               weighted,
		HTTPAddr:               os.Getenv("HTTP_ADDR"),
		LogLevel:               sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:        shutdownTimeout,
		KafkaBrokers:           sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:             sharedcfg.EnvOrDefault("KAFKA_TOPIC", "climate-monthly-stats"),
	}

	if path == "" {
		path = os.Getenv("CLIMSTATS_CONFIG")
	}
	if path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read run file: %w", err)
	}
	var f runFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse run file %s: %w", path, err)
	}

	setString(&c.DataDir, f.DataDir)
	setString(&c.OutputDir, f.OutputDir)
	setString(&c.FigDir, f.FigDir)
	setString(&c.PlotFormat, strings.ToLower(f.PlotFormat))
	setString(&c.KafkaTopic, f.KafkaTopic)
	if f.ClimatologyWindowYears != 0 {
		c.ClimatologyWindowYears = f.ClimatologyWindowYears
	}
	if f.Workers != 0 {
		c.Workers = f.Workers
	}
	if f.CacheSize != nil {
		c.CacheSize = *f.CacheSize
	}
	if f.Weighted != nil {
		c.Weighted = *f.Weighted
	}
	if len(f.KafkaBrokers) > 0 {
		c.KafkaBrokers = f.KafkaBrokers
	}
	c.Table = f.Table
	c.Plot = f.Plot
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	if c.ClimatologyWindowYears < 1 || c.ClimatologyWindowYears > 100 {
		return errors.New("invalid CLIMATOLOGY_WINDOW_YEARS: must be 1-100")
	}
	if c.Workers < 1 || c.Workers > 32 {
		return errors.New("invalid WORKERS: must be 1-32")
	}
	if c.CacheSize < 0 {
		return errors.New("invalid CACHE_SIZE: must not be negative")
	}
	if c.PlotFormat != "png" && c.PlotFormat != "svg" {
		return fmt.Errorf("invalid PLOT_FORMAT %q: must be png or svg", c.PlotFormat)
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	if c.Plot.SmoothWindow < 0 || (c.Plot.SmoothWindow > 0 && c.Plot.SmoothWindow%2 == 0) {
		return fmt.Errorf("invalid smooth_window %d: must be odd", c.Plot.SmoothWindow)
	}
	return nil
}

// KafkaEnabled reports whether table rows are also published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseIntEnv(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, s)
	}
	return n, nil
}
