package domain

import (
	"fmt"
	"time"
)

// ExtremeQuantile is the climatological quantile above which a day's
// precipitation counts as extreme.
const ExtremeQuantile = 0.9

// DefaultClimatologyWindowYears is the length of the lookback window used for
// the extreme-precipitation threshold.
const DefaultClimatologyWindowYears = 20

// ClimatologyYears returns the window years preceding year, ascending:
// [year-window, year-1].
func ClimatologyYears(year, window int) ([]int, error) {
	if window < 1 {
		return nil, fmt.Errorf("climatology window must be at least 1 year, got %d", window)
	}
	years := make([]int, 0, window)
	for y := year - window; y < year; y++ {
		years = append(years, y)
	}
	return years, nil
}

// ExtremeThreshold returns the ExtremeQuantile of the pooled climatology
// precipitation samples. NaN if there are no finite samples.
func ExtremeThreshold(climatology Series) float64 {
	q, _ := Quantile(climatology.Values, ExtremeQuantile)
	return q
}

// MonthlyStats is one row of the statistics table: a city, a target year and
// a calendar month.
type MonthlyStats struct {
	City  string     `json:"city"`
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	PercentDaysPrecipitation        float64 `json:"percent_days_precipitation"`
	PercentDaysExtremePrecipitation float64 `json:"percent_days_extreme_precipitation"`
	PercentDaysBelowZero            float64 `json:"percent_days_below_zero_degree"`
	MinDailyMeanTemperature         float64 `json:"minimum_daily_mean_temperature"`
	MaxDailyMeanTemperature         float64 `json:"maximum_daily_mean_temperature"`
	MedianDailyMeanTemperature      float64 `json:"median_daily_mean_temperature"`
	MeanTemperature                 float64 `json:"mean_temperature"`

	// ExtremeThreshold is the unrounded climatological P90 in mm. It is not
	// part of the CSV table.
	ExtremeThreshold float64   `json:"extreme_threshold_mm"`
	GeneratedAt      time.Time `json:"generated_at"`
}

// ComputeMonthlyStats derives the table row from the month's city series.
// tg, tn and rr must already be restricted to the month; threshold is the
// climatological extreme-precipitation threshold.
func ComputeMonthlyStats(city string, year int, month time.Month, tg, tn, rr Series, threshold float64) MonthlyStats {
	below := func(v float64) bool { return v < 0 }
	wet := func(v float64) bool { return v > 0 }
	extreme := func(v float64) bool { return v > threshold }

	return MonthlyStats{
		City:  city,
		Year:  year,
		Month: month,

		PercentDaysPrecipitation:        Round1(PercentWhere(rr.Values, wet)),
		PercentDaysExtremePrecipitation: Round1(PercentWhere(rr.Values, extreme)),
		PercentDaysBelowZero:            Round1(PercentWhere(tn.Values, below)),
		MinDailyMeanTemperature:         Round1(Min(tg.Values)),
		MaxDailyMeanTemperature:         Round1(Max(tg.Values)),
		MedianDailyMeanTemperature:      Round1(Median(tg.Values)),
		MeanTemperature:                 Round1(Mean(tg.Values)),

		ExtremeThreshold: threshold,
		GeneratedAt:      clock.Now().UTC(),
	}
}

// Values returns the table statistics in column order (after city and year).
func (s MonthlyStats) Values() []float64 {
	return []float64{
		s.PercentDaysPrecipitation,
		s.PercentDaysExtremePrecipitation,
		s.PercentDaysBelowZero,
		s.MinDailyMeanTemperature,
		s.MaxDailyMeanTemperature,
		s.MedianDailyMeanTemperature,
		s.MeanTemperature,
	}
}

// statColumns are the statistic column suffixes in table order.
var statColumns = []string{
	"percent_days_precipitation",
	"percent_days_extreme_precipitation",
	"percent_days_below_zero_degree",
	"minimum_daily_mean_temperature",
	"maximum_daily_mean_temperature",
	"median_daily_mean_temperature",
	"mean_temperature",
}

// StatColumns returns the statistic column suffixes in table order.
func StatColumns() []string {
	out := make([]string, len(statColumns))
	copy(out, statColumns)
	return out
}

// Header returns the table header for a month, e.g. "dec_mean_temperature".
func Header(month time.Month) []string {
	abbrev := MonthAbbrev(month)
	h := make([]string, 0, 2+len(statColumns))
	h = append(h, "city", "year")
	for _, c := range statColumns {
		h = append(h, abbrev+"_"+c)
	}
	return h
}

// TableFileName names the CSV table for the last target year and month.
func TableFileName(lastYear int, month time.Month) string {
	return fmt.Sprintf("weather_stats_norwegian_cities_%d-%02d.csv", lastYear, int(month))
}

// YearRange returns [from, to] inclusive, ascending.
func YearRange(from, to int) ([]int, error) {
	if to < from {
		return nil, fmt.Errorf("year range %d-%d is reversed", from, to)
	}
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years, nil
}
