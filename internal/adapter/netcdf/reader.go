// Package netcdf reads city series out of gridded yearly NetCDF archives.
package netcdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	ncfile "github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/observability"
)

// ErrVariableNotFound is returned when a file lacks the requested variable.
var ErrVariableNotFound = errors.New("variable not found")

// Reader implements domain.SeriesReader and domain.GridReader on top of the
// pure-Go NetCDF decoder. It keeps no state between calls.
type Reader struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReader creates a Reader.
func NewReader(logger *slog.Logger, metrics *observability.Metrics) *Reader {
	return &Reader{logger: logger, metrics: metrics}
}

// Grid reads the lat/lon coordinates of a file.
func (r *Reader) Grid(ctx context.Context, path string) (domain.Grid, error) {
	if err := ctx.Err(); err != nil {
		return domain.Grid{}, err
	}
	g, err := open(path)
	if err != nil {
		r.metrics.ReadErrors.Inc()
		return domain.Grid{}, err
	}
	defer g.Close()

	grid, err := readGrid(g)
	if err != nil {
		r.metrics.ReadErrors.Inc()
		return domain.Grid{}, fmt.Errorf("read grid %s: %w", path, err)
	}
	return grid, nil
}

// ReadSeries returns the daily spatial mean of req.Variable over req.BBox for
// every time step whose month is in req.Months.
func (r *Reader) ReadSeries(ctx context.Context, req domain.SeriesRequest) (domain.Series, error) {
	start := time.Now()
	s, err := r.readSeries(ctx, req)
	if err != nil {
		r.metrics.ReadErrors.Inc()
		return domain.Series{}, fmt.Errorf("read %s from %s: %w", req.Variable, req.Path, err)
	}
	r.metrics.FilesRead.Inc()
	r.metrics.ReadDuration.Observe(time.Since(start).Seconds())
	r.logger.Debug("series read",
		"file", req.Path,
		"variable", req.Variable,
		"days", s.Len(),
		"elapsed", time.Since(start),
	)
	return s, nil
}

func (r *Reader) readSeries(ctx context.Context, req domain.SeriesRequest) (domain.Series, error) {
	g, err := open(req.Path)
	if err != nil {
		return domain.Series{}, err
	}
	defer g.Close()

	grid, err := readGrid(g)
	if err != nil {
		return domain.Series{}, err
	}
	mask := domain.NewMask(grid, req.BBox)
	if mask.Empty() {
		r.logger.Warn("bounding box selects no grid cells", "file", req.Path, "bbox", req.BBox.String())
	}

	times, err := readTimes(g)
	if err != nil {
		return domain.Series{}, err
	}

	vg, err := g.GetVarGetter(req.Variable)
	if err != nil {
		return domain.Series{}, fmt.Errorf("%w %q: %v", ErrVariableNotFound, req.Variable, err)
	}
	if n := vg.Len(); n != int64(len(times)) {
		return domain.Series{}, fmt.Errorf("variable %q has %d time steps, time axis has %d", req.Variable, n, len(times))
	}
	dec := newDecoder(vg.Attributes())

	reduce := mask.Mean
	if req.Weighted {
		reduce = mask.WeightedMean
	}

	// Only the rows and columns covering the selection are decoded.
	y0, y1, x0, x1, ok := mask.Extent()
	width := x1 - x0 + 1
	field := make([]float64, grid.Cells())

	out := domain.Series{}
	for i, t := range times {
		if !req.Months.Has(t.Month()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return domain.Series{}, err
		}
		if !ok {
			out.Times = append(out.Times, t)
			out.Values = append(out.Values, math.NaN())
			continue
		}

		raw, err := vg.GetSlice(int64(i), int64(i+1))
		if err != nil {
			return domain.Series{}, fmt.Errorf("time step %d: %w", i, err)
		}
		win, err := window(raw, y0, y1, x0, x1)
		if err != nil {
			return domain.Series{}, fmt.Errorf("time step %d: %w", i, err)
		}
		for _, c := range mask.Cells() {
			y, x := c/grid.NX, c%grid.NX
			field[c] = dec.decode(win[(y-y0)*width+(x-x0)])
		}

		out.Times = append(out.Times, t)
		out.Values = append(out.Values, reduce(field))
	}
	return out, nil
}

func open(path string) (api.Group, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	g, err := ncfile.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	return g, nil
}

// coordNames lists accepted names for each coordinate, in lookup order.
var coordNames = map[string][]string{
	"lat": {"lat", "latitude"},
	"lon": {"lon", "longitude"},
}

func coordinate(g api.Group, kind string) ([]float64, []int, error) {
	var lastErr error
	for _, name := range coordNames[kind] {
		vg, err := g.GetVarGetter(name)
		if err != nil {
			lastErr = err
			continue
		}
		raw, err := vg.Values()
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", name, err)
		}
		vals, err := flatten(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", name, err)
		}
		return vals, shape(raw), nil
	}
	return nil, nil, fmt.Errorf("%w %q: %v", ErrVariableNotFound, kind, lastErr)
}

func readGrid(g api.Group) (domain.Grid, error) {
	lat, latShape, err := coordinate(g, "lat")
	if err != nil {
		return domain.Grid{}, err
	}
	lon, lonShape, err := coordinate(g, "lon")
	if err != nil {
		return domain.Grid{}, err
	}

	switch {
	case len(latShape) == 2 && len(lonShape) == 2:
		return domain.NewGrid(latShape[0], latShape[1], lat, lon)
	case len(latShape) == 1 && len(lonShape) == 1:
		return domain.GridFromAxes(lat, lon)
	}
	return domain.Grid{}, fmt.Errorf("unsupported coordinate ranks lat=%d lon=%d", len(latShape), len(lonShape))
}

func readTimes(g api.Group) ([]time.Time, error) {
	vg, err := g.GetVarGetter("time")
	if err != nil {
		return nil, fmt.Errorf("%w \"time\": %v", ErrVariableNotFound, err)
	}
	units, err := parseTimeUnits(attrString(vg.Attributes(), "units"))
	if err != nil {
		return nil, err
	}
	raw, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("read time: %w", err)
	}
	offsets, err := flatten(raw)
	if err != nil {
		return nil, fmt.Errorf("read time: %w", err)
	}

	times := make([]time.Time, len(offsets))
	for i, o := range offsets {
		times[i] = units.at(o)
	}
	return times, nil
}
