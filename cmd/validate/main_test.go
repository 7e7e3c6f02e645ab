package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/city-climate-stats/internal/adapter/table"
	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

func goodRecords() []domain.MonthlyStats {
	return []domain.MonthlyStats{
		{City: "Oslo", Year: 2023, Month: time.December, PercentDaysPrecipitation: 60, PercentDaysExtremePrecipitation: 9.7, PercentDaysBelowZero: 80.6, MinDailyMeanTemperature: -15.2, MaxDailyMeanTemperature: 4.1, MedianDailyMeanTemperature: -3.3, MeanTemperature: -4.0},
		{City: "Oslo", Year: 2024, Month: time.December, PercentDaysPrecipitation: 51.6, PercentDaysExtremePrecipitation: 6.5, PercentDaysBelowZero: 67.7, MinDailyMeanTemperature: -9.8, MaxDailyMeanTemperature: 6.0, MedianDailyMeanTemperature: -0.4, MeanTemperature: -1.1},
		{City: "Bergen", Year: 2024, Month: time.December, PercentDaysPrecipitation: 90.3, PercentDaysExtremePrecipitation: 12.9, PercentDaysBelowZero: 19.4, MinDailyMeanTemperature: -2.0, MaxDailyMeanTemperature: 8.8, MedianDailyMeanTemperature: 4.5, MeanTemperature: 4.2},
		// Empty mask: every statistic is NaN.
		{City: "Alta", Year: 2024, Month: time.December, PercentDaysPrecipitation: math.NaN(), PercentDaysExtremePrecipitation: math.NaN(), PercentDaysBelowZero: math.NaN(), MinDailyMeanTemperature: math.NaN(), MaxDailyMeanTemperature: math.NaN(), MedianDailyMeanTemperature: math.NaN(), MeanTemperature: math.NaN()},
	}
}

func writeTable(t *testing.T, name string, records []domain.MonthlyStats) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, table.WriteFile(path, time.December, records))
	return path
}

func loadTable(t *testing.T, path string) table.Table {
	t.Helper()
	tbl, err := table.ReadFile(path)
	require.NoError(t, err)
	return tbl
}

func TestRun_Passes(t *testing.T) {
	path := writeTable(t, "weather_stats_norwegian_cities_2024-12.csv", goodRecords())
	var out bytes.Buffer

	assert.Equal(t, 0, run([]string{path}, &out))
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Rows: 4, month: dec")
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{filepath.Join(t.TempDir(), "nope.csv")}, &out))
	assert.Contains(t, out.String(), "FATAL")
}

func TestRun_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))
	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{path}, &out))
	assert.Contains(t, out.String(), "Validation FAILED.")
}

func TestValidateLayout_FileName(t *testing.T) {
	path := writeTable(t, "stats.csv", goodRecords())
	p := validateLayout(path, loadTable(t, path))
	require.False(t, p.passed())
	assert.Contains(t, p.errors[0], "weather_stats_norwegian_cities_2024-12.csv")
}

func TestValidateCities(t *testing.T) {
	recs := goodRecords()
	recs[0], recs[2] = recs[2], recs[0] // Bergen before Oslo
	recs = append(recs, domain.MonthlyStats{City: "Narvik", Year: 2024, Month: time.December})
	path := writeTable(t, "x.csv", recs)

	p := validateCities(loadTable(t, path))
	require.False(t, p.passed())
	assert.Contains(t, p.errors, `line 6: unknown city "Narvik"`)
	assert.Contains(t, p.errors, "line 3: Oslo out of city order")
}

func TestValidateCities_Duplicate(t *testing.T) {
	recs := goodRecords()
	recs[1].Year = 2023
	path := writeTable(t, "x.csv", recs)

	p := validateCities(loadTable(t, path))
	assert.Contains(t, p.errors, "line 3: duplicate row for Oslo 2023")
}

func yearOrderRecords(years ...int) []domain.MonthlyStats {
	var recs []domain.MonthlyStats
	for i, city := range []string{"Oslo", "Bergen"} {
		for _, y := range years[i*2 : i*2+2] {
			recs = append(recs, domain.MonthlyStats{City: city, Year: y, Month: time.December})
		}
	}
	return recs
}

func TestValidate_RequestedYearOrder(t *testing.T) {
	// --years 2024,2022 writes the years as requested and names the file 2022.
	path := writeTable(t, "weather_stats_norwegian_cities_2022-12.csv", yearOrderRecords(2024, 2022, 2024, 2022))
	tbl := loadTable(t, path)

	assert.True(t, validateLayout(path, tbl).passed())
	assert.True(t, validateCities(tbl).passed())
}

func TestValidateCities_YearOrderMismatch(t *testing.T) {
	path := writeTable(t, "x.csv", yearOrderRecords(2024, 2022, 2022, 2024))

	p := validateCities(loadTable(t, path))
	require.False(t, p.passed())
	assert.Equal(t, []string{"line 5: Bergen year 2024 out of year order"}, p.errors)
}

func TestValidateCities_YearNotInFirstCity(t *testing.T) {
	path := writeTable(t, "x.csv", yearOrderRecords(2023, 2024, 2024, 2025))

	p := validateCities(loadTable(t, path))
	assert.Equal(t, []string{"line 5: Bergen year 2025 not listed for Oslo"}, p.errors)
}

func TestValidatePercentages(t *testing.T) {
	recs := goodRecords()
	recs[0].PercentDaysBelowZero = 100.5
	recs[1].PercentDaysExtremePrecipitation = 70
	path := writeTable(t, "x.csv", recs)

	p := validatePercentages(loadTable(t, path))
	require.Len(t, p.errors, 2)
	assert.Contains(t, p.errors[0], "dec_percent_days_below_zero_degree = 100.5")
	assert.Contains(t, p.errors[1], "extreme precipitation 70.0% exceeds precipitation 51.6%")
}

func TestValidateTemperatures(t *testing.T) {
	recs := goodRecords()
	recs[0].MedianDailyMeanTemperature = 5.0
	recs[2].MinDailyMeanTemperature = 9.0
	path := writeTable(t, "x.csv", recs)

	p := validateTemperatures(loadTable(t, path))
	assert.Contains(t, p.errors, "line 2: median 5.0 outside [-15.2, 4.1]")
	assert.Contains(t, p.errors, "line 4: min 9.0 > max 8.8")
}
