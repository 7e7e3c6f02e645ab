package netcdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

// TimeUnits is the CF time encoding used for files this package writes.
const TimeUnits = "days since 1900-01-01 00:00:00"

var writeEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// YearData is one variable for one year on a fixed grid, laid out the way the
// archive stores it: dims (time, Y, X) with 2-D lat/lon coordinates.
type YearData struct {
	Variable string
	Units    string
	Grid     domain.Grid
	Times    []time.Time
	Fields   [][]float64 // one row-major field per time step, NaN for missing cells
}

// WriteYear writes d as a classic-format NetCDF file, creating parent
// directories as needed.
func WriteYear(path string, d YearData) (err error) {
	if len(d.Times) != len(d.Fields) {
		return fmt.Errorf("write %s: %d times but %d fields", path, len(d.Times), len(d.Fields))
	}
	for i, f := range d.Fields {
		if len(f) != d.Grid.Cells() {
			return fmt.Errorf("write %s: field %d has %d cells, grid has %d", path, i, len(f), d.Grid.Cells())
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	cw, err := cdf.OpenWriter(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer func() {
		if cerr := cw.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close %s: %w", path, cerr))
		}
	}()

	offsets := make([]float64, len(d.Times))
	for i, t := range d.Times {
		offsets[i] = t.Sub(writeEpoch).Hours() / 24
	}

	vars := []struct {
		name   string
		values interface{}
		dims   []string
		units  string
	}{
		{"time", offsets, []string{"time"}, TimeUnits},
		{"lat", plane(d.Grid, d.Grid.Lat), []string{"Y", "X"}, "degrees_north"},
		{"lon", plane(d.Grid, d.Grid.Lon), []string{"Y", "X"}, "degrees_east"},
		{d.Variable, cube(d.Grid, d.Fields), []string{"time", "Y", "X"}, d.Units},
	}
	for _, v := range vars {
		attrs, err := util.NewOrderedMap(
			[]string{"units"},
			map[string]interface{}{"units": v.units})
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := cw.AddVar(v.name, api.Variable{
			Values:     v.values,
			Dimensions: v.dims,
			Attributes: attrs,
		}); err != nil {
			return fmt.Errorf("write %s: variable %s: %w", path, v.name, err)
		}
	}
	return nil
}

func plane(g domain.Grid, flat []float64) [][]float64 {
	out := make([][]float64, g.NY)
	for y := range out {
		out[y] = flat[y*g.NX : (y+1)*g.NX]
	}
	return out
}

func cube(g domain.Grid, fields [][]float64) [][][]float32 {
	out := make([][][]float32, len(fields))
	for t, f := range fields {
		out[t] = make([][]float32, g.NY)
		for y := 0; y < g.NY; y++ {
			row := make([]float32, g.NX)
			for x := 0; x < g.NX; x++ {
				row[x] = float32(f[y*g.NX+x])
			}
			out[t][y] = row
		}
	}
	return out
}
