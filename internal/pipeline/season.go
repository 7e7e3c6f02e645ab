package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

// Plotter renders plots and reports where they were written.
type Plotter interface {
	PlotSeason(p domain.SeasonPlot) (string, error)
	PlotMap(p domain.MapPlot) (string, error)
}

// SeasonJob describes one season plot.
type SeasonJob struct {
	City         domain.City
	Year         int
	Variable     string
	Season       domain.Season
	SmoothWindow int // odd; 0 or 1 disables smoothing
	DropLeapDays bool
}

// SeasonRunner reads a city's season and plots it.
type SeasonRunner struct {
	reader   domain.SeriesReader
	grids    domain.GridReader
	plotter  Plotter
	dataDir  string
	weighted bool
	logger   *slog.Logger
}

// NewSeasonRunner creates a SeasonRunner.
func NewSeasonRunner(reader domain.SeriesReader, grids domain.GridReader, plotter Plotter, dataDir string, weighted bool, logger *slog.Logger) *SeasonRunner {
	return &SeasonRunner{
		reader:   reader,
		grids:    grids,
		plotter:  plotter,
		dataDir:  dataDir,
		weighted: weighted,
		logger:   logger,
	}
}

// Series assembles the season from its yearly files. Below-zero counts are
// taken before any smoothing.
func (r *SeasonRunner) Series(ctx context.Context, job SeasonJob) (domain.SeasonPlot, error) {
	window, err := domain.SeasonWindow(job.Season, job.Year)
	if err != nil {
		return domain.SeasonPlot{}, err
	}

	parts := make([]domain.Series, 0, len(window))
	for _, ym := range window {
		s, err := r.reader.ReadSeries(ctx, domain.SeriesRequest{
			Path:     domain.DataPath(r.dataDir, job.Variable, ym.Year),
			Variable: job.Variable,
			BBox:     job.City.BBox,
			Months:   domain.NewMonthSet(ym.Months...),
			Weighted: r.weighted,
		})
		if err != nil {
			return domain.SeasonPlot{}, err
		}
		parts = append(parts, s.Between(ym.From, ym.To))
	}

	series := domain.Concat(parts...)
	if job.DropLeapDays {
		series = domain.DropLeapDays(series)
	}
	plot := domain.SeasonPlot{
		City:     job.City.Name,
		Season:   job.Season,
		Year:     job.Year,
		Variable: job.Variable,
		Series:   series,
		Counts:   domain.BelowZeroCounts(series),
	}

	if job.SmoothWindow > 1 {
		smoothed, err := domain.SmoothCentered(series.Values, job.SmoothWindow)
		if err != nil {
			return domain.SeasonPlot{}, err
		}
		plot.Series = domain.Series{Times: series.Times, Values: smoothed}
		plot.Smoothed = true
	}
	return plot, nil
}

// Run builds the season series and renders it, returning the plot path.
func (r *SeasonRunner) Run(ctx context.Context, job SeasonJob) (string, error) {
	plot, err := r.Series(ctx, job)
	if err != nil {
		return "", fmt.Errorf("%s %s %d: %w", job.City.Name, job.Season, job.Year, err)
	}
	path, err := r.plotter.PlotSeason(plot)
	if err != nil {
		return "", err
	}

	attrs := []any{"file", path, "days", plot.Series.Len()}
	for _, c := range plot.Counts {
		attrs = append(attrs, fmt.Sprintf("below_zero_%s_%d", domain.MonthAbbrev(c.Month), c.Year), c.Count)
	}
	r.logger.Info("season plot written", attrs...)
	return path, nil
}

// RunMap plots the city's bounding box over the grid of the given year's file.
func (r *SeasonRunner) RunMap(ctx context.Context, city domain.City, variable string, year int) (string, error) {
	grid, err := r.grids.Grid(ctx, domain.DataPath(r.dataDir, variable, year))
	if err != nil {
		return "", err
	}
	mask := domain.NewMask(grid, city.BBox)
	path, err := r.plotter.PlotMap(domain.MapPlot{City: city, Grid: grid})
	if err != nil {
		return "", err
	}
	r.logger.Info("map plot written", "file", path, "city", city.Name, "cells", mask.Len())
	return path, nil
}
