package main

import (
	"context"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-climate-stats/internal/adapter/netcdf"
	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/observability"
)

func TestSyntheticGrid_CoversEveryCity(t *testing.T) {
	grid, err := syntheticGrid(domain.Cities(), 0.25)
	require.NoError(t, err)

	for _, c := range domain.Cities() {
		assert.False(t, domain.NewMask(grid, c.BBox).Empty(), c.Name)
	}

	_, err = syntheticGrid(domain.Cities(), 0)
	assert.Error(t, err)
}

func TestGenerateYear_Deterministic(t *testing.T) {
	grid, err := domain.GridFromAxes([]float64{60, 61}, []float64{10, 11})
	require.NoError(t, err)

	a := generateYear(grid, 2024, 7)
	b := generateYear(grid, 2024, 7)
	c := generateYear(grid, 2024, 8)

	require.Len(t, a, 3)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a[0].Fields, c[0].Fields)
	assert.Len(t, a[0].Times, 366)
}

func TestGenerateYear_PhysicalBounds(t *testing.T) {
	grid, err := domain.GridFromAxes([]float64{60, 70}, []float64{10})
	require.NoError(t, err)

	data := generateYear(grid, 2023, 1)
	tg, tn, rr := data[0], data[1], data[2]
	assert.Equal(t, domain.VarMeanTemp, tg.Variable)
	assert.Equal(t, domain.VarMinTemp, tn.Variable)
	assert.Equal(t, domain.VarPrecip, rr.Variable)

	for i := range tg.Times {
		for c := range grid.Cells() {
			assert.LessOrEqual(t, tn.Fields[i][c], tg.Fields[i][c])
			assert.GreaterOrEqual(t, rr.Fields[i][c], 0.0)
		}
	}

	// July is warmer than January.
	jan := domain.Mean(tg.Fields[10])
	jul := domain.Mean(tg.Fields[190])
	assert.Greater(t, jul, jan)
}

func TestGenerateYear_RoundTrip(t *testing.T) {
	grid, err := domain.GridFromAxes([]float64{59.9, 60.1}, []float64{10.5, 10.7})
	require.NoError(t, err)
	dir := t.TempDir()

	for _, d := range generateYear(grid, 2022, 3) {
		require.NoError(t, netcdf.WriteYear(domain.DataPath(dir, d.Variable, 2022), d))
	}

	r := netcdf.NewReader(slog.Default(), observability.NewMetricsForTesting())
	s, err := r.ReadSeries(context.Background(), domain.SeriesRequest{
		Path:     filepath.Join(dir, "rr", "rr_2022.nc"),
		Variable: domain.VarPrecip,
		BBox:     domain.BBox{LatMin: 59.7, LatMax: 60.25, LonMin: 10.4, LonMax: 11.1},
	})
	require.NoError(t, err)
	assert.Equal(t, 365, s.Len())
	for _, v := range s.Values {
		assert.False(t, math.IsNaN(v))
	}
}
