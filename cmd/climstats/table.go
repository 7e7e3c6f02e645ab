package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/city-climate-stats/internal/adapter/kafka"
	"github.com/couchcryptid/city-climate-stats/internal/adapter/table"
	"github.com/couchcryptid/city-climate-stats/internal/config"
	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/pipeline"
)

const (
	defaultTableMonth = "dec"
	defaultFromYear   = 2022
	defaultToYear     = 2024
)

type tableFlags struct {
	month   string
	years   []int
	from    int
	to      int
	cities  []string
	window  int
	workers int
}

func newTableCmd(a *app) *cobra.Command {
	var f tableFlags

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Write the monthly statistics table for the selected cities and years",
		Long: `Compute, per city and target year, the share of wet, extreme-wet and
sub-zero days and the daily mean temperature summary for one calendar month.

Extreme days exceed the 90th percentile of the same month's daily
precipitation over the preceding climatology window.`,
		Example: `  climstats table --month dec --from 2022 --to 2024
  climstats table --month jan --years 2025 --cities Oslo,Bergen --workers 4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := f.job(cmd, a.cfg)
			if err != nil {
				return err
			}
			return runTable(cmd, a, job)
		},
	}

	cmd.Flags().StringVar(&f.month, "month", "", "calendar month, jan..dec or 1..12 (default dec)")
	cmd.Flags().IntSliceVar(&f.years, "years", nil, "target years, comma separated")
	cmd.Flags().IntVar(&f.from, "from", 0, "first target year (with --to)")
	cmd.Flags().IntVar(&f.to, "to", 0, "last target year (with --from)")
	cmd.Flags().StringSliceVar(&f.cities, "cities", nil, "cities to include (default all)")
	cmd.Flags().IntVar(&f.window, "window", 0, "climatology window in years (default CLIMATOLOGY_WINDOW_YEARS)")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "cities processed concurrently (default WORKERS)")
	cmd.MarkFlagsMutuallyExclusive("years", "from")
	cmd.MarkFlagsMutuallyExclusive("years", "to")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}

// job resolves flags over the run file over built-in defaults.
func (f tableFlags) job(cmd *cobra.Command, cfg *config.Config) (pipeline.TableJob, error) {
	monthText := firstNonEmpty(f.month, cfg.Table.Month, defaultTableMonth)
	month, err := domain.ParseMonth(monthText)
	if err != nil {
		return pipeline.TableJob{}, err
	}

	var years []int
	switch {
	case len(f.years) > 0:
		years = f.years
	case cmd.Flags().Changed("from"):
		if years, err = domain.YearRange(f.from, f.to); err != nil {
			return pipeline.TableJob{}, err
		}
	case len(cfg.Table.Years) > 0:
		years = cfg.Table.Years
	default:
		years, _ = domain.YearRange(defaultFromYear, defaultToYear)
	}

	names := f.cities
	if len(names) == 0 {
		names = cfg.Table.Cities
	}
	cities, err := domain.SelectCities(names)
	if err != nil {
		return pipeline.TableJob{}, err
	}

	window := cfg.ClimatologyWindowYears
	if f.window != 0 {
		window = f.window
	}
	return pipeline.TableJob{Month: month, Years: years, Cities: cities, WindowYears: window}, nil
}

func runTable(cmd *cobra.Command, a *app, job pipeline.TableJob) error {
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	workers := a.cfg.Workers
	if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
		workers = w
	}

	sinks := []pipeline.Sink{table.NewSink(a.cfg.OutputDir, a.logger, a.metrics)}
	if a.cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(a.cfg, a.logger, a.metrics)
		defer func() {
			if err := w.Close(); err != nil {
				a.logger.Error("kafka writer close error", "error", err)
			}
		}()
		sinks = append(sinks, w)
		a.logger.Info("kafka publishing enabled", "topic", a.cfg.KafkaTopic, "brokers", a.cfg.KafkaBrokers)
	}

	runner := pipeline.NewTableRunner(a.series, sinks, pipeline.TableOptions{
		DataDir:  a.cfg.DataDir,
		Workers:  workers,
		Weighted: a.cfg.Weighted,
	}, a.logger, a.metrics)

	stopServer := a.startStatusServer(runner)
	defer stopServer()

	start := time.Now()
	records, err := runner.Run(ctx, job)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d rows written to %s/%s in %s\n",
		len(records), a.cfg.OutputDir, domain.TableFileName(job.Years[len(job.Years)-1], job.Month), time.Since(start).Round(time.Millisecond))
	return nil
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
