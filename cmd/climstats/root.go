package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	httpadapter "github.com/couchcryptid/city-climate-stats/internal/adapter/http"
	"github.com/couchcryptid/city-climate-stats/internal/adapter/cache"
	"github.com/couchcryptid/city-climate-stats/internal/adapter/netcdf"
	"github.com/couchcryptid/city-climate-stats/internal/config"
	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/observability"
)

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	files   *netcdf.Reader
	series  domain.SeriesReader
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		a          app
	)

	root := &cobra.Command{
		Use:           "climstats",
		Short:         "Climate statistics for Norwegian cities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
			a.metrics = observability.NewMetrics()
			a.files = netcdf.NewReader(a.logger, a.metrics)
			a.series = a.files
			if cfg.CacheSize > 0 {
				a.series = cache.NewCachedReader(a.files, cfg.CacheSize, a.metrics)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML run file (overrides CLIMSTATS_CONFIG)")

	root.AddCommand(
		newTableCmd(&a),
		newPlotCmd(&a),
		newMapCmd(&a),
		newCitiesCmd(),
	)
	return root
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// startStatusServer serves health and metrics while a long run is in progress.
// The returned stop function drains it within the shutdown timeout.
func (a *app) startStatusServer(ready sharedobs.ReadinessChecker) func() {
	if a.cfg.HTTPAddr == "" {
		return func() {}
	}
	srv := httpadapter.NewServer(a.cfg.HTTPAddr, a.cfg.OutputDir, ready, a.logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", "error", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Error("http server shutdown error", "error", err)
		}
	}
}
