package domain

import (
	"context"
	"fmt"
	"path/filepath"
)

// SeriesRequest selects a city series from one yearly file.
type SeriesRequest struct {
	Path     string
	Variable string
	BBox     BBox
	Months   MonthSet // nil means every month
	Weighted bool     // cos(lat)-weighted spatial mean
}

// Key identifies the request for caching.
func (r SeriesRequest) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%t", r.Path, r.Variable, r.BBox, r.Months.Key(), r.Weighted)
}

// SeriesReader produces the daily spatial-mean series for a request.
// Implementations must be safe for concurrent use.
type SeriesReader interface {
	ReadSeries(ctx context.Context, req SeriesRequest) (Series, error)
}

// GridReader reads the coordinate grid of a file.
type GridReader interface {
	Grid(ctx context.Context, path string) (Grid, error)
}

// DataPath returns {dir}/{var}/{var}_{year}.nc.
func DataPath(dir, variable string, year int) string {
	return filepath.Join(dir, variable, fmt.Sprintf("%s_%d.nc", variable, year))
}
