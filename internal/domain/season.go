package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Variable codes of the gridded archive.
const (
	VarMeanTemp = "tg"
	VarMinTemp  = "tn"
	VarPrecip   = "rr"
)

// ErrUnknownVariable is returned for variable codes outside tg, tn and rr.
var ErrUnknownVariable = errors.New("unknown variable")

// ParseVariable validates a variable code.
func ParseVariable(s string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case VarMeanTemp, VarMinTemp, VarPrecip:
		return v, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownVariable, s)
}

// YLabel returns the axis label for a variable.
func YLabel(variable string) string {
	switch variable {
	case VarMinTemp:
		return "daily minimum temperature (°C)"
	case VarMeanTemp:
		return "daily mean temperature (°C)"
	case VarPrecip:
		return "daily precipitation (mm)"
	}
	return variable
}

// YearMonths names the months of a season that live in one yearly file,
// together with the inclusive date range to keep from that file.
type YearMonths struct {
	Year   int
	Months []time.Month
	From   time.Time
	To     time.Time
}

// SeasonWindow splits a season of the given year into per-file pieces in
// chronological order. Wrapping seasons take their leading months from
// year-1. DJF stops at February 28.
func SeasonWindow(season Season, year int) ([]YearMonths, error) {
	months := season.Months()
	if len(months) == 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownSeason, season)
	}

	var out []YearMonths
	add := func(y int, m time.Month) {
		if n := len(out); n > 0 && out[n-1].Year == y {
			out[n-1].Months = append(out[n-1].Months, m)
			out[n-1].To = lastOfMonth(y, m)
			return
		}
		out = append(out, YearMonths{
			Year:   y,
			Months: []time.Month{m},
			From:   time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
			To:     lastOfMonth(y, m),
		})
	}

	wrapped := false
	for i, m := range months {
		if i > 0 && m < months[i-1] {
			wrapped = true
		}
		y := year
		if season.WrapsYear() && !wrapped {
			y = year - 1
		}
		add(y, m)
	}

	if season == SeasonDJF {
		last := &out[len(out)-1]
		last.To = time.Date(year, time.February, 28, 0, 0, 0, 0, time.UTC)
	}
	return out, nil
}

func lastOfMonth(y int, m time.Month) time.Time {
	return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// MonthCount is the number of qualifying days in one calendar month.
type MonthCount struct {
	Year  int
	Month time.Month
	Count int
}

// BelowZeroCounts counts samples below 0 per (year, month), in the order the
// months first appear in the series.
func BelowZeroCounts(s Series) []MonthCount {
	var out []MonthCount
	var values [][]float64
	for i, t := range s.Times {
		y, m := t.Year(), t.Month()
		if n := len(out); n == 0 || out[n-1].Year != y || out[n-1].Month != m {
			out = append(out, MonthCount{Year: y, Month: m})
			values = append(values, nil)
		}
		values[len(values)-1] = append(values[len(values)-1], s.Values[i])
	}
	below := func(v float64) bool { return v < 0 }
	for i := range out {
		out[i].Count = CountWhere(values[i], below)
	}
	return out
}

// PlotFileName names a season plot, e.g. "Oslo_DJF_2025_tn.png".
func PlotFileName(city string, season Season, year int, variable, ext string) string {
	return fmt.Sprintf("%s_%s_%d_%s.%s", city, season, year, variable, ext)
}

// MapFileName names a city map plot, e.g. "Oslo_map.png".
func MapFileName(city, ext string) string {
	return fmt.Sprintf("%s_map.%s", city, ext)
}

// SeasonPlot is everything needed to draw one city's season.
type SeasonPlot struct {
	City     string
	Season   Season
	Year     int
	Variable string
	Series   Series
	Counts   []MonthCount
	Smoothed bool
}

// Title returns e.g. "DJF 2025 Oslo".
func (p SeasonPlot) Title() string {
	return fmt.Sprintf("%s %d %s", p.Season, p.Year, p.City)
}

// Legend labels the plotted line, e.g. "tg" or "tg (smoothed)".
func (p SeasonPlot) Legend() string {
	if p.Smoothed {
		return p.Variable + " (smoothed)"
	}
	return p.Variable
}

// MapPlot shows a city's bounding box over the data grid.
type MapPlot struct {
	City City
	Grid Grid
}

// Title returns e.g. "Oslo Area: Data Grid + Bounding Box".
func (p MapPlot) Title() string {
	return p.City.Name + " Area: Data Grid + Bounding Box"
}
