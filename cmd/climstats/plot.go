package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/city-climate-stats/internal/adapter/chart"
	"github.com/couchcryptid/city-climate-stats/internal/config"
	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/pipeline"
)

const defaultPlotYear = 2025

type plotFlags struct {
	city         string
	year         int
	variable     string
	season       string
	smooth       int
	dropLeapDays bool
}

func newPlotCmd(a *app) *cobra.Command {
	var f plotFlags

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Plot a city's daily series for one season",
		Long: `Plot the daily spatial mean of a variable over a city's bounding box for
one season, shading values below 0 and annotating the number of sub-zero
days per month. Seasons wrapping the year end take their early months from
the previous year (DJF 2025 = Dec 2024 + Jan-Feb 2025).`,
		Example: `  climstats plot --city Tromsø --year 2025 --var tn
  climstats plot --season NDJFM --smooth 7 --drop-leap-days`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			job, err := f.job(a.cfg)
			if err != nil {
				return err
			}
			format, err := chart.ParseFormat(a.cfg.PlotFormat)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			runner := pipeline.NewSeasonRunner(a.series, a.files, chart.NewFileRenderer(a.cfg.FigDir, format), a.cfg.DataDir, a.cfg.Weighted, a.logger)
			path, err := runner.Run(ctx, job)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.city, "city", "", "city name (default Oslo)")
	cmd.Flags().IntVar(&f.year, "year", 0, "season year (default 2025)")
	cmd.Flags().StringVar(&f.variable, "var", "", "variable: tg, tn or rr (default tg)")
	cmd.Flags().StringVar(&f.season, "season", "", "season code (default DJF)")
	cmd.Flags().IntVar(&f.smooth, "smooth", 0, "odd running-mean window in days, 0 disables")
	cmd.Flags().BoolVar(&f.dropLeapDays, "drop-leap-days", false, "remove Feb 29 samples")
	return cmd
}

func (f plotFlags) job(cfg *config.Config) (pipeline.SeasonJob, error) {
	city, err := domain.LookupCity(firstNonEmpty(f.city, cfg.Plot.City, domain.DefaultCity))
	if err != nil {
		return pipeline.SeasonJob{}, err
	}
	variable, err := domain.ParseVariable(firstNonEmpty(f.variable, cfg.Plot.Variable, domain.VarMeanTemp))
	if err != nil {
		return pipeline.SeasonJob{}, err
	}
	season, err := domain.ParseSeason(firstNonEmpty(f.season, cfg.Plot.Season, string(domain.SeasonDJF)))
	if err != nil {
		return pipeline.SeasonJob{}, err
	}

	year := firstNonZero(f.year, cfg.Plot.Year, defaultPlotYear)
	smooth := firstNonZero(f.smooth, cfg.Plot.SmoothWindow)
	if smooth < 0 || (smooth > 0 && smooth%2 == 0) {
		return pipeline.SeasonJob{}, fmt.Errorf("smoothing window must be odd, got %d", smooth)
	}

	return pipeline.SeasonJob{
		City:         city,
		Year:         year,
		Variable:     variable,
		Season:       season,
		SmoothWindow: smooth,
		DropLeapDays: f.dropLeapDays || cfg.Plot.DropLeapDays,
	}, nil
}

func newMapCmd(a *app) *cobra.Command {
	var (
		city     string
		variable string
		year     int
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "Plot the data grid around a city with its bounding box",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := domain.LookupCity(firstNonEmpty(city, a.cfg.Plot.City, domain.DefaultCity))
			if err != nil {
				return err
			}
			v, err := domain.ParseVariable(firstNonEmpty(variable, a.cfg.Plot.Variable, domain.VarMeanTemp))
			if err != nil {
				return err
			}
			format, err := chart.ParseFormat(a.cfg.PlotFormat)
			if err != nil {
				return err
			}

			runner := pipeline.NewSeasonRunner(a.series, a.files, chart.NewFileRenderer(a.cfg.FigDir, format), a.cfg.DataDir, a.cfg.Weighted, a.logger)
			path, err := runner.RunMap(cmd.Context(), c, v, firstNonZero(year, a.cfg.Plot.Year, defaultPlotYear))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city name (default Oslo)")
	cmd.Flags().StringVar(&variable, "var", "", "variable whose file supplies the grid (default tg)")
	cmd.Flags().IntVar(&year, "year", 0, "year whose file supplies the grid (default 2025)")
	return cmd
}

func firstNonZero(vs ...int) int {
	for _, v := range vs {
		if v != 0 {
			return v
		}
	}
	return 0
}
