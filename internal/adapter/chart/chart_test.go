package chart

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

func djfPlot() domain.SeasonPlot {
	s := domain.Series{}
	for d := time.Date(2024, 12, 1, 6, 0, 0, 0, time.UTC); !d.After(time.Date(2025, 2, 28, 6, 0, 0, 0, time.UTC)); d = d.AddDate(0, 0, 1) {
		s.Times = append(s.Times, d)
		s.Values = append(s.Values, 6*math.Sin(float64(d.YearDay())/9)-2)
	}
	s.Values[3] = math.NaN()
	return domain.SeasonPlot{
		City:     "Oslo",
		Season:   domain.SeasonDJF,
		Year:     2025,
		Variable: domain.VarMinTemp,
		Series:   s,
		Counts:   domain.BelowZeroCounts(s),
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, SVG, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestDayTicks(t *testing.T) {
	ticks := dayTicks(time.Date(2024, 12, 1, 6, 0, 0, 0, time.UTC), time.Date(2025, 2, 28, 6, 0, 0, 0, time.UTC))
	labels := make([]string, 0, len(ticks))
	for _, tk := range ticks {
		labels = append(labels, tk.Label)
	}
	// Dec 01 00:00 is before the first 06:00 sample.
	assert.Equal(t, []string{"Dec 15", "Jan 01", "Jan 15", "Feb 01", "Feb 15"}, labels)
}

func TestCountLabel(t *testing.T) {
	assert.Equal(t, "Days < 0°C Dec 2024: 12", CountLabel(domain.MonthCount{Year: 2024, Month: time.December, Count: 12}))
}

func TestRenderSeason(t *testing.T) {
	for _, f := range []Format{PNG, SVG} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderSeason(&buf, djfPlot(), f))
			assert.NotZero(t, buf.Len())
			if f == SVG {
				assert.Contains(t, buf.String(), "DJF 2025 Oslo")
				assert.Contains(t, buf.String(), "0°C Jan 2025: ")
			} else {
				assert.Equal(t, "\x89PNG", buf.String()[:4])
			}
		})
	}
}

func TestRenderSeason_NoData(t *testing.T) {
	p := djfPlot()
	p.Series = domain.Series{}
	err := RenderSeason(&bytes.Buffer{}, p, PNG)
	assert.ErrorIs(t, err, ErrNoData)
}

func testMap(t *testing.T) domain.MapPlot {
	t.Helper()
	var lats, lons []float64
	for lat := 59.0; lat <= 61.0; lat += 0.1 {
		lats = append(lats, lat)
	}
	for lon := 9.0; lon <= 12.5; lon += 0.1 {
		lons = append(lons, lon)
	}
	g, err := domain.GridFromAxes(lats, lons)
	require.NoError(t, err)
	oslo, err := domain.LookupCity("Oslo")
	require.NoError(t, err)
	return domain.MapPlot{City: oslo, Grid: g}
}

func TestRenderMap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderMap(&buf, testMap(t), SVG))
	assert.Contains(t, buf.String(), "Oslo Area: Data Grid + Bounding Box")
}

func TestRenderMap_NoCellsNearby(t *testing.T) {
	p := testMap(t)
	alta, err := domain.LookupCity("Alta")
	require.NoError(t, err)
	p.City = alta
	assert.ErrorIs(t, RenderMap(&bytes.Buffer{}, p, PNG), ErrNoData)
}

func TestFileRenderer(t *testing.T) {
	dir := t.TempDir()
	r := NewFileRenderer(dir, PNG)

	path, err := r.PlotSeason(djfPlot())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tn", "Oslo_DJF_2025_tn.png"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	path, err = r.PlotMap(testMap(t))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "maps", "Oslo_map.png"), path)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestFileRenderer_RemovesFileOnError(t *testing.T) {
	dir := t.TempDir()
	p := djfPlot()
	p.Series = domain.Series{}

	_, err := NewFileRenderer(dir, PNG).PlotSeason(p)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "tn", "Oslo_DJF_2025_tn.png"))
	assert.True(t, os.IsNotExist(statErr))
}
