package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLIMSTATS_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "./data/senorge", cfg.DataDir)
	assert.Equal(t, "./data", cfg.OutputDir)
	assert.Equal(t, "./fig", cfg.FigDir)
	assert.Equal(t, 20, cfg.ClimatologyWindowYears)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, 256, cfg.CacheSize)
	assert.Equal(t, "png", cfg.PlotFormat)
	assert.False(t, cfg.Weighted)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "climate-monthly-stats", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/senorge")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("FIG_DIR", "/tmp/fig")
	t.Setenv("CLIMATOLOGY_WINDOW_YEARS", "30")
	t.Setenv("WORKERS", "4")
	t.Setenv("CACHE_SIZE", "0")
	t.Setenv("PLOT_FORMAT", "SVG")
	t.Setenv("SPATIAL_WEIGHTING", "true")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "stats")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/srv/senorge", cfg.DataDir)
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "/tmp/fig", cfg.FigDir)
	assert.Equal(t, 30, cfg.ClimatologyWindowYears)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, "svg", cfg.PlotFormat)
	assert.True(t, cfg.Weighted)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "stats", cfg.KafkaTopic)
}

func TestLoad_InvalidEnv(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"CLIMATOLOGY_WINDOW_YEARS", "0"},
		{"CLIMATOLOGY_WINDOW_YEARS", "101"},
		{"CLIMATOLOGY_WINDOW_YEARS", "twenty"},
		{"WORKERS", "0"},
		{"WORKERS", "64"},
		{"CACHE_SIZE", "-1"},
		{"PLOT_FORMAT", "pdf"},
		{"SPATIAL_WEIGHTING", "maybe"},
		{"SHUTDOWN_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func writeRunFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_RunFileOverlay(t *testing.T) {
	t.Setenv("DATA_DIR", "/from/env")
	t.Setenv("WORKERS", "2")
	path := writeRunFile(t, `
data_dir: /from/file
climatology_window_years: 10
cache_size: 0
plot_format: svg
table:
  month: dec
  years: [2023, 2024]
  cities: [Oslo, Bergen]
plot:
  city: Tromsø
  year: 2025
  variable: tg
  season: DJF
  smooth_window: 5
  drop_leap_days: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/file", cfg.DataDir)
	assert.Equal(t, 2, cfg.Workers, "unset file keys keep the env value")
	assert.Equal(t, 10, cfg.ClimatologyWindowYears)
	assert.Equal(t, 0, cfg.CacheSize)
	assert.Equal(t, "svg", cfg.PlotFormat)
	assert.Equal(t, TableRun{Month: "dec", Years: []int{2023, 2024}, Cities: []string{"Oslo", "Bergen"}}, cfg.Table)
	assert.Equal(t, PlotRun{City: "Tromsø", Year: 2025, Variable: "tg", Season: "DJF", SmoothWindow: 5, DropLeapDays: true}, cfg.Plot)
}

func TestLoad_RunFileFromEnv(t *testing.T) {
	t.Setenv("CLIMSTATS_CONFIG", writeRunFile(t, "fig_dir: /figs\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/figs", cfg.FigDir)
}

func TestLoad_RunFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeRunFile(t, "workers: [1, 2\n"))
	assert.Error(t, err)

	_, err = Load(writeRunFile(t, "plot:\n  smooth_window: 4\n"))
	assert.Error(t, err)
}
