// Package chart renders season and map plots with go-chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ErrUnknownFormat is returned for formats other than png and svg.
var ErrUnknownFormat = errors.New("unknown plot format")

// ErrNoData is returned when a plot would have nothing to draw.
var ErrNoData = errors.New("no data to plot")

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PNG, SVG:
		return f, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

func (f Format) provider() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

var (
	pureRed   = drawing.Color{R: 255, A: 255}
	lineColor = gochart.ColorBlue
	fillColor = gochart.ColorBlue.WithAlpha(90)
)

// finitePoints drops NaN samples, which go-chart cannot place.
func finitePoints(s domain.Series) ([]time.Time, []float64) {
	xs := make([]time.Time, 0, s.Len())
	ys := make([]float64, 0, s.Len())
	for i, t := range s.Times {
		if v := s.Values[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, t)
			ys = append(ys, v)
		}
	}
	return xs, ys
}

// dayTicks places a tick on the 1st and 15th of every month in [from, to].
func dayTicks(from, to time.Time) []gochart.Tick {
	var ticks []gochart.Tick
	for m := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(to); m = m.AddDate(0, 1, 0) {
		for _, day := range []int{1, 15} {
			t := time.Date(m.Year(), m.Month(), day, 0, 0, 0, 0, time.UTC)
			if t.Before(from) || t.After(to) {
				continue
			}
			ticks = append(ticks, gochart.Tick{Value: gochart.TimeToFloat64(t), Label: t.Format("Jan 02")})
		}
	}
	return ticks
}

// CountLabel returns e.g. "Days < 0°C Dec 2024: 12".
func CountLabel(c domain.MonthCount) string {
	return fmt.Sprintf("Days < 0°C %s %d: %d", time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan"), c.Year, c.Count)
}

// RenderSeason draws the daily series with a dashed zero line, shading below
// zero and the per-month count of sub-zero days.
func RenderSeason(w io.Writer, p domain.SeasonPlot, f Format) error {
	xs, ys := finitePoints(p.Series)
	// go-chart rejects a zero-width time range.
	if len(xs) < 2 {
		return fmt.Errorf("%s: %w", p.Title(), ErrNoData)
	}
	from, to := xs[0], xs[len(xs)-1]

	below := make([]float64, len(ys))
	for i, v := range ys {
		below[i] = math.Min(v, 0)
	}

	lo, hi := domain.Min(ys), domain.Max(ys)
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	pad := math.Max((hi-lo)*0.15, 1)

	annotations := make([]gochart.Value2, 0, len(p.Counts))
	for _, c := range p.Counts {
		at := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
		if at.Before(from) {
			at = from
		}
		annotations = append(annotations, gochart.Value2{
			XValue: gochart.TimeToFloat64(at),
			YValue: hi + pad*0.5,
			Label:  CountLabel(c),
		})
	}

	series := []gochart.Series{
		gochart.TimeSeries{
			Name:    "below zero",
			Style:   gochart.Style{StrokeColor: fillColor, StrokeWidth: 0.5, FillColor: fillColor},
			XValues: xs,
			YValues: below,
		},
		gochart.TimeSeries{
			Name:    p.Legend(),
			Style:   gochart.Style{StrokeColor: lineColor, StrokeWidth: 2},
			XValues: xs,
			YValues: ys,
		},
		gochart.TimeSeries{
			Name:    "0°C",
			Style:   gochart.Style{StrokeColor: gochart.ColorBlack, StrokeWidth: 1, StrokeDashArray: []float64{5, 5}},
			XValues: []time.Time{from, to},
			YValues: []float64{0, 0},
		},
	}
	if len(annotations) > 0 {
		series = append(series, gochart.AnnotationSeries{
			Name:        "counts",
			Style:       gochart.Style{FontSize: 8},
			Annotations: annotations,
		})
	}

	ch := gochart.Chart{
		Title:  p.Title(),
		Width:  1000,
		Height: 500,
		XAxis: gochart.XAxis{
			Ticks: dayTicks(from, to),
		},
		YAxis: gochart.YAxis{
			Name:  domain.YLabel(p.Variable),
			Range: &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}
	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render %s: %w", p.Title(), err)
	}
	return nil
}

// Map extent margins around the city box, in degrees.
const (
	MapMarginLat = 0.5
	MapMarginLon = 1.0
)

// RenderMap draws grid cell centres near the city, highlights the cells inside
// its bounding box and outlines the box.
func RenderMap(w io.Writer, p domain.MapPlot, f Format) error {
	box := p.City.BBox
	extent := box.Expand(MapMarginLat, MapMarginLon)
	mask := domain.NewMask(p.Grid, box)
	inside := make(map[int]bool, mask.Len())
	for _, c := range mask.Cells() {
		inside[c] = true
	}

	var gridX, gridY, selX, selY []float64
	for i := range p.Grid.Lat {
		lat, lon := p.Grid.Lat[i], p.Grid.Lon[i]
		if !extent.Contains(lat, lon) {
			continue
		}
		if inside[i] {
			selX, selY = append(selX, lon), append(selY, lat)
			continue
		}
		gridX, gridY = append(gridX, lon), append(gridY, lat)
	}
	if len(gridX)+len(selX) == 0 {
		return fmt.Errorf("%s: %w", p.Title(), ErrNoData)
	}

	dots := func(c drawing.Color, width float64) gochart.Style {
		return gochart.Style{StrokeWidth: gochart.Disabled, DotColor: c, DotWidth: width}
	}
	var series []gochart.Series
	if len(gridX) > 0 {
		series = append(series, gochart.ContinuousSeries{Name: "grid cells", Style: dots(gochart.ColorAlternateGray, 1.5), XValues: gridX, YValues: gridY})
	}
	if len(selX) > 0 {
		series = append(series, gochart.ContinuousSeries{Name: "selected cells", Style: dots(gochart.ColorOrange, 2.5), XValues: selX, YValues: selY})
	}
	series = append(series, gochart.ContinuousSeries{
		Name:    "bounding box",
		Style:   gochart.Style{StrokeColor: pureRed, StrokeWidth: 2},
		XValues: []float64{box.LonMin, box.LonMax, box.LonMax, box.LonMin, box.LonMin},
		YValues: []float64{box.LatMin, box.LatMin, box.LatMax, box.LatMax, box.LatMin},
	})

	ch := gochart.Chart{
		Title:  p.Title(),
		Width:  800,
		Height: 800,
		XAxis: gochart.XAxis{
			Name:  "longitude (°E)",
			Range: &gochart.ContinuousRange{Min: extent.LonMin, Max: extent.LonMax},
		},
		YAxis: gochart.YAxis{
			Name:  "latitude (°N)",
			Range: &gochart.ContinuousRange{Min: extent.LatMin, Max: extent.LatMax},
		},
		Series: series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(f.provider(), w); err != nil {
		return fmt.Errorf("render %s: %w", p.Title(), err)
	}
	return nil
}
