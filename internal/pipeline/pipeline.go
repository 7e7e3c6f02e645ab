package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/observability"
)

// Sink receives the finished table rows, ordered by city then year.
type Sink interface {
	LoadBatch(ctx context.Context, month time.Month, records []domain.MonthlyStats) error
}

// TableJob describes one statistics table.
type TableJob struct {
	Month       time.Month
	Years       []int
	Cities      []domain.City // empty means every city
	WindowYears int
}

// TableOptions tunes a TableRunner.
type TableOptions struct {
	DataDir  string
	Workers  int
	Weighted bool
	Clock    clockwork.Clock // nil means the real clock
}

// TableRunner computes the monthly statistics table and hands it to sinks.
type TableRunner struct {
	reader  domain.SeriesReader
	sinks   []Sink
	opts    TableOptions
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// NewTableRunner creates a TableRunner.
func NewTableRunner(reader domain.SeriesReader, sinks []Sink, opts TableOptions, logger *slog.Logger, metrics *observability.Metrics) *TableRunner {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &TableRunner{
		reader:  reader,
		sinks:   sinks,
		opts:    opts,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once at least one city has been fully processed.
func (r *TableRunner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no city processed yet")
	}
	return nil
}

// Run computes every (city, year) row of the job. Cities run concurrently up
// to the configured worker count; the first error cancels the rest.
func (r *TableRunner) Run(ctx context.Context, job TableJob) ([]domain.MonthlyStats, error) {
	if job.Month < time.January || job.Month > time.December {
		return nil, fmt.Errorf("%w %d", domain.ErrUnknownMonth, job.Month)
	}
	if len(job.Years) == 0 {
		return nil, errors.New("no target years given")
	}
	if job.WindowYears < 1 {
		return nil, fmt.Errorf("climatology window must be at least 1 year, got %d", job.WindowYears)
	}
	cities := job.Cities
	if len(cities) == 0 {
		cities = domain.Cities()
	}

	r.logger.Info("table run started",
		"month", domain.MonthAbbrev(job.Month),
		"years", job.Years,
		"cities", len(cities),
		"workers", r.opts.Workers,
	)
	r.metrics.RunInProgress.Set(1)
	defer r.metrics.RunInProgress.Set(0)

	results := make([][]domain.MonthlyStats, len(cities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, city := range cities {
		g.Go(func() error {
			rows, err := r.runCity(gctx, city, job)
			if err != nil {
				return fmt.Errorf("%s: %w", city.Name, err)
			}
			results[i] = rows
			r.metrics.CitiesProcessed.Inc()
			r.ready.Store(true)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]domain.MonthlyStats, 0, len(cities)*len(job.Years))
	for _, rows := range results {
		records = append(records, rows...)
	}

	for _, s := range r.sinks {
		if err := s.LoadBatch(ctx, job.Month, records); err != nil {
			return records, fmt.Errorf("load table: %w", err)
		}
	}
	return records, nil
}

func (r *TableRunner) runCity(ctx context.Context, city domain.City, job TableJob) ([]domain.MonthlyStats, error) {
	rows := make([]domain.MonthlyStats, 0, len(job.Years))
	for _, year := range job.Years {
		start := r.clock.Now()
		row, err := r.cityYear(ctx, city, year, job)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", year, err)
		}
		elapsed := r.clock.Since(start)
		r.metrics.CityYearDuration.Observe(elapsed.Seconds())
		r.logger.Info("city processed",
			"city", city.Name,
			"year", year,
			"threshold_mm", row.ExtremeThreshold,
			"elapsed", elapsed,
		)
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *TableRunner) cityYear(ctx context.Context, city domain.City, year int, job TableJob) (domain.MonthlyStats, error) {
	months := domain.NewMonthSet(job.Month)
	read := func(variable string, y int) (domain.Series, error) {
		s, err := r.reader.ReadSeries(ctx, domain.SeriesRequest{
			Path:     domain.DataPath(r.opts.DataDir, variable, y),
			Variable: variable,
			BBox:     city.BBox,
			Months:   months,
			Weighted: r.opts.Weighted,
		})
		if err != nil {
			return domain.Series{}, err
		}
		return s.InMonth(job.Month), nil
	}

	tg, err := read(domain.VarMeanTemp, year)
	if err != nil {
		return domain.MonthlyStats{}, err
	}
	tn, err := read(domain.VarMinTemp, year)
	if err != nil {
		return domain.MonthlyStats{}, err
	}
	rr, err := read(domain.VarPrecip, year)
	if err != nil {
		return domain.MonthlyStats{}, err
	}

	climYears, err := domain.ClimatologyYears(year, job.WindowYears)
	if err != nil {
		return domain.MonthlyStats{}, err
	}
	clim := make([]domain.Series, 0, len(climYears))
	for _, cy := range climYears {
		s, err := read(domain.VarPrecip, cy)
		if err != nil {
			return domain.MonthlyStats{}, fmt.Errorf("climatology: %w", err)
		}
		clim = append(clim, s)
	}
	threshold := domain.ExtremeThreshold(domain.Concat(clim...))

	return domain.ComputeMonthlyStats(city.Name, year, job.Month, tg, tn, rr, threshold), nil
}
