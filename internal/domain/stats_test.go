package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func TestReductions_SkipNaN(t *testing.T) {
	vs := []float64{3, nan, -1, 4, 2}
	assert.Equal(t, -1.0, Min(vs))
	assert.Equal(t, 4.0, Max(vs))
	assert.InDelta(t, 2.0, Mean(vs), 1e-12)
	assert.InDelta(t, 2.5, Median(vs), 1e-12)
	assert.Equal(t, 3.0, Median([]float64{5, nan, 1, 3}))
	assert.True(t, math.IsNaN(Median([]float64{nan})))
}

func TestReductions_AllNaN(t *testing.T) {
	for _, vs := range [][]float64{nil, {nan, nan}} {
		assert.True(t, math.IsNaN(Min(vs)))
		assert.True(t, math.IsNaN(Max(vs)))
		assert.True(t, math.IsNaN(Mean(vs)))
		assert.True(t, math.IsNaN(Median(vs)))
	}
}

func TestQuantile_LinearBetweenClosestRanks(t *testing.T) {
	vs := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	tests := []struct {
		q    float64
		want float64
	}{
		{0, 1},
		{1, 10},
		{0.5, 5.5},
		{0.9, 9.1},
		{0.25, 3.25},
	}
	for _, tt := range tests {
		got, err := Quantile(vs, tt.q)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "q=%v", tt.q)
	}
}

func TestQuantile_Unsorted(t *testing.T) {
	got, err := Quantile([]float64{10, 0, 5}, 0.9)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, got, 1e-12)
}

func TestQuantile_RejectsOutOfRange(t *testing.T) {
	_, err := Quantile([]float64{1}, 1.5)
	assert.Error(t, err)
	_, err = Quantile([]float64{1}, -0.1)
	assert.Error(t, err)
}

func TestQuantile_DoesNotReorderInput(t *testing.T) {
	vs := []float64{3, 1, 2}
	_, err := Quantile(vs, 0.5)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, vs)
}

func TestPercentWhere(t *testing.T) {
	below := func(v float64) bool { return v < 0 }

	assert.InDelta(t, 50.0, PercentWhere([]float64{-1, 2, -3, 4}, below), 1e-12)
	// NaN counts in the denominator only.
	assert.InDelta(t, 25.0, PercentWhere([]float64{-1, nan, 3, 4}, below), 1e-12)
	assert.True(t, math.IsNaN(PercentWhere(nil, below)))

	assert.Equal(t, 2, CountWhere([]float64{-1, nan, -2, 0}, below))
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{12.34, 12.3},
		{12.36, 12.4},
		{-4.04, -4.0},
		{-0.04, 0},
		{33.333333, 33.3},
		// exact halves go to the even digit
		{0.25, 0.2},
		{12.25, 12.2},
		{-2.25, -2.2},
		{0.75, 0.8},
		// stored just below the half
		{0.15, 0.1},
		{-1.15, -1.1},
		{12.35, 12.3},
		// stored just above the half
		{0.45, 0.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round1(tt.in), 1e-9, "in=%v", tt.in)
	}
	assert.False(t, math.Signbit(Round1(-0.04)))
	assert.Equal(t, -1.1, Round1(Median([]float64{-1.2, -1.1})))
	assert.True(t, math.IsNaN(Round1(nan)))
}

func TestSeries_Selection(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 12, 0, 0, 0, time.UTC) }
	s := Series{
		Times:  []time.Time{day(1, 30), day(1, 31), day(2, 1), day(2, 2), day(3, 1)},
		Values: []float64{1, 2, 3, 4, 5},
	}

	assert.Equal(t, []float64{3, 4}, s.InMonth(time.February).Values)
	assert.Equal(t, []float64{1, 2, 5}, s.InMonths(NewMonthSet(time.January, time.March)).Values)
	assert.Equal(t, []float64{2, 3, 4}, s.Between(day(1, 31), day(2, 2)).Values)

	joined := Concat(s.InMonth(time.March), s.InMonth(time.January))
	assert.Equal(t, []float64{5, 1, 2}, joined.Values)
	assert.Equal(t, 3, joined.Len())
}
