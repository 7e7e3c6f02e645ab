package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownMonth is returned for month strings that are neither an
	// abbreviation nor a number in 1-12.
	ErrUnknownMonth = errors.New("unknown month")
	// ErrUnknownSeason is returned for unrecognised season codes.
	ErrUnknownSeason = errors.New("unknown season")
)

var monthAbbrevs = [...]string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// ParseMonth accepts "jan".."dec" (any case) or "1".."12".
func ParseMonth(s string) (time.Month, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, a := range monthAbbrevs {
		if s == a {
			return time.Month(i + 1), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 12 {
		return time.Month(n), nil
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownMonth, s)
}

// MonthAbbrev returns the lowercase three-letter abbreviation, e.g. "dec".
func MonthAbbrev(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthAbbrevs[m-1]
}

// Season is a named set of calendar months.
type Season string

const (
	SeasonNDJFM  Season = "NDJFM"
	SeasonMJJAS  Season = "MJJAS"
	SeasonAnnual Season = "ANNUAL"
	SeasonDJF    Season = "DJF"
	SeasonMAM    Season = "MAM"
	SeasonJJA    Season = "JJA"
	SeasonSON    Season = "SON"
)

var seasonMonths = map[Season][]time.Month{
	SeasonNDJFM:  {time.November, time.December, time.January, time.February, time.March},
	SeasonMJJAS:  {time.May, time.June, time.July, time.August, time.September},
	SeasonAnnual: {time.January, time.February, time.March, time.April, time.May, time.June, time.July, time.August, time.September, time.October, time.November, time.December},
	SeasonDJF:    {time.December, time.January, time.February},
	SeasonMAM:    {time.March, time.April, time.May},
	SeasonJJA:    {time.June, time.July, time.August},
	SeasonSON:    {time.September, time.October, time.November},
}

// ParseSeason accepts a season code in any case.
func ParseSeason(s string) (Season, error) {
	season := Season(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := seasonMonths[season]; !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownSeason, s)
	}
	return season, nil
}

// Months returns the season's months in chronological order within the season.
func (s Season) Months() []time.Month {
	ms := seasonMonths[s]
	out := make([]time.Month, len(ms))
	copy(out, ms)
	return out
}

// Contains reports whether m belongs to the season.
func (s Season) Contains(m time.Month) bool {
	for _, sm := range seasonMonths[s] {
		if sm == m {
			return true
		}
	}
	return false
}

// WrapsYear reports whether the season starts in the previous calendar year.
func (s Season) WrapsYear() bool {
	ms := seasonMonths[s]
	return len(ms) > 1 && ms[0] > ms[len(ms)-1]
}

// MonthSet is a set of calendar months. A nil set means every month.
type MonthSet map[time.Month]bool

// NewMonthSet builds a set from the given months.
func NewMonthSet(ms ...time.Month) MonthSet {
	set := make(MonthSet, len(ms))
	for _, m := range ms {
		set[m] = true
	}
	return set
}

// Has reports whether m is in the set. A nil set contains every month.
func (s MonthSet) Has(m time.Month) bool {
	if s == nil {
		return true
	}
	return s[m]
}

// Key returns a stable text form, e.g. "1,2,12", or "all" for a nil set.
func (s MonthSet) Key() string {
	if s == nil {
		return "all"
	}
	parts := make([]string, 0, len(s))
	for m := time.January; m <= time.December; m++ {
		if s[m] {
			parts = append(parts, strconv.Itoa(int(m)))
		}
	}
	return strings.Join(parts, ",")
}

// IsLeapDay reports whether t falls on February 29.
func IsLeapDay(t time.Time) bool {
	return t.Month() == time.February && t.Day() == 29
}

// DropLeapDays removes February 29 samples.
func DropLeapDays(s Series) Series {
	return s.Filter(func(t time.Time, _ float64) bool { return !IsLeapDay(t) })
}

// SmoothCentered applies a centred running mean of the given odd window.
// The input is wrap-padded by (window-1)/2 samples on each side so the output
// has the same length as the input.
func SmoothCentered(values []float64, window int) ([]float64, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("smoothing window must be odd and positive, got %d", window)
	}
	n := len(values)
	out := make([]float64, n)
	if window == 1 || n == 0 {
		copy(out, values)
		return out, nil
	}

	pad := (window - 1) / 2
	for i := 0; i < n; i++ {
		var sum float64
		for k := -pad; k <= pad; k++ {
			j := ((i+k)%n + n) % n
			sum += values[j]
		}
		out[i] = sum / float64(window)
	}
	return out, nil
}
