package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeasonWindow_DJF(t *testing.T) {
	w, err := SeasonWindow(SeasonDJF, 2025)
	require.NoError(t, err)
	require.Len(t, w, 2)

	assert.Equal(t, 2024, w[0].Year)
	assert.Equal(t, []time.Month{time.December}, w[0].Months)
	assert.Equal(t, date(2024, 12, 1), w[0].From)
	assert.Equal(t, date(2024, 12, 31), w[0].To)

	assert.Equal(t, 2025, w[1].Year)
	assert.Equal(t, []time.Month{time.January, time.February}, w[1].Months)
	assert.Equal(t, date(2025, 1, 1), w[1].From)
	assert.Equal(t, date(2025, 2, 28), w[1].To)
}

func TestSeasonWindow_DJFLeapYearStillEndsFeb28(t *testing.T) {
	w, err := SeasonWindow(SeasonDJF, 2024)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 28), w[len(w)-1].To)
}

func TestSeasonWindow_NonWrapping(t *testing.T) {
	w, err := SeasonWindow(SeasonJJA, 2023)
	require.NoError(t, err)
	require.Len(t, w, 1)
	assert.Equal(t, 2023, w[0].Year)
	assert.Equal(t, date(2023, 6, 1), w[0].From)
	assert.Equal(t, date(2023, 8, 31), w[0].To)

	w, err = SeasonWindow(SeasonNDJFM, 2023)
	require.NoError(t, err)
	require.Len(t, w, 2)
	assert.Equal(t, []time.Month{time.November, time.December}, w[0].Months)
	assert.Equal(t, 2022, w[0].Year)
	assert.Equal(t, date(2023, 3, 31), w[1].To)

	_, err = SeasonWindow(Season("XYZ"), 2023)
	assert.ErrorIs(t, err, ErrUnknownSeason)
}

func TestBelowZeroCounts(t *testing.T) {
	s := Series{
		Times: []time.Time{
			date(2024, 12, 30), date(2024, 12, 31),
			date(2025, 1, 1), date(2025, 1, 2),
			date(2025, 2, 1),
		},
		Values: []float64{-1, 2, -0.5, -3, math.NaN()},
	}
	assert.Equal(t, []MonthCount{
		{Year: 2024, Month: time.December, Count: 1},
		{Year: 2025, Month: time.January, Count: 2},
		{Year: 2025, Month: time.February, Count: 0},
	}, BelowZeroCounts(s))
}

func TestSeasonPlot_Legend(t *testing.T) {
	p := SeasonPlot{Season: SeasonDJF, Year: 2025, City: "Oslo", Variable: VarMeanTemp}
	assert.Equal(t, "DJF 2025 Oslo", p.Title())
	assert.Equal(t, "tg", p.Legend())

	p.Smoothed = true
	assert.Equal(t, "tg (smoothed)", p.Legend())
}

func TestFileNamesAndLabels(t *testing.T) {
	assert.Equal(t, "Oslo_DJF_2025_tn.png", PlotFileName("Oslo", SeasonDJF, 2025, VarMinTemp, "png"))
	assert.Equal(t, "Bergen_map.svg", MapFileName("Bergen", "svg"))
	assert.Equal(t, "daily minimum temperature (°C)", YLabel(VarMinTemp))
	assert.Equal(t, "daily mean temperature (°C)", YLabel(VarMeanTemp))
	assert.Equal(t, "daily precipitation (mm)", YLabel(VarPrecip))
}

func TestParseVariable(t *testing.T) {
	v, err := ParseVariable("TN")
	require.NoError(t, err)
	assert.Equal(t, VarMinTemp, v)

	_, err = ParseVariable("tx")
	assert.ErrorIs(t, err, ErrUnknownVariable)
}
