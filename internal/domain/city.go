package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCity is returned when a city name is not in the built-in table.
var ErrUnknownCity = errors.New("unknown city")

// DefaultCity is used by single-city commands when no city is given.
const DefaultCity = "Oslo"

// BBox is a lat/lon bounding box in degrees, inclusive on all edges.
type BBox struct {
	LatMin float64 `json:"lat_min" yaml:"lat_min"`
	LatMax float64 `json:"lat_max" yaml:"lat_max"`
	LonMin float64 `json:"lon_min" yaml:"lon_min"`
	LonMax float64 `json:"lon_max" yaml:"lon_max"`
}

// Contains reports whether the point lies inside the box.
func (b BBox) Contains(lat, lon float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lon >= b.LonMin && lon <= b.LonMax
}

// Expand grows the box by dLat and dLon degrees on each side.
func (b BBox) Expand(dLat, dLon float64) BBox {
	return BBox{
		LatMin: b.LatMin - dLat,
		LatMax: b.LatMax + dLat,
		LonMin: b.LonMin - dLon,
		LonMax: b.LonMax + dLon,
	}
}

func (b BBox) String() string {
	return fmt.Sprintf("lat[%.2f,%.2f] lon[%.2f,%.2f]", b.LatMin, b.LatMax, b.LonMin, b.LonMax)
}

// City is a named area of interest.
type City struct {
	Name string `json:"name"`
	BBox BBox   `json:"bbox"`
}

// cities is the canonical table. Its order is the output order of every report.
var cities = []City{
	{Name: "Oslo", BBox: BBox{LatMin: 59.70, LatMax: 60.25, LonMin: 10.40, LonMax: 11.10}},
	{Name: "Kristiansand", BBox: BBox{LatMin: 58.00, LatMax: 58.30, LonMin: 7.80, LonMax: 8.20}},
	{Name: "Stavanger", BBox: BBox{LatMin: 58.80, LatMax: 59.10, LonMin: 5.50, LonMax: 6.00}},
	{Name: "Bergen", BBox: BBox{LatMin: 60.20, LatMax: 60.55, LonMin: 5.10, LonMax: 5.50}},
	{Name: "Ålesund", BBox: BBox{LatMin: 62.30, LatMax: 62.60, LonMin: 5.90, LonMax: 6.40}},
	{Name: "Trondheim", BBox: BBox{LatMin: 63.30, LatMax: 63.55, LonMin: 10.20, LonMax: 10.60}},
	{Name: "Bodø", BBox: BBox{LatMin: 67.10, LatMax: 67.40, LonMin: 14.20, LonMax: 14.60}},
	{Name: "Tromsø", BBox: BBox{LatMin: 69.50, LatMax: 69.80, LonMin: 18.60, LonMax: 19.20}},
	{Name: "Lillehammer", BBox: BBox{LatMin: 61.00, LatMax: 61.20, LonMin: 10.20, LonMax: 10.70}},
	{Name: "Alta", BBox: BBox{LatMin: 69.80, LatMax: 70.10, LonMin: 23.00, LonMax: 23.50}},
}

// Cities returns a copy of the built-in city table in canonical order.
func Cities() []City {
	out := make([]City, len(cities))
	copy(out, cities)
	return out
}

// LookupCity finds a city by name. Matching is case-insensitive.
func LookupCity(name string) (City, error) {
	name = strings.TrimSpace(name)
	for _, c := range cities {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return City{}, fmt.Errorf("%w %q", ErrUnknownCity, name)
}

// SelectCities resolves names to cities in canonical order. An empty selection
// means every city. Duplicates are collapsed.
func SelectCities(names []string) ([]City, error) {
	if len(names) == 0 {
		return Cities(), nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		c, err := LookupCity(n)
		if err != nil {
			return nil, err
		}
		want[c.Name] = true
	}

	out := make([]City, 0, len(want))
	for _, c := range cities {
		if want[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

// UnionBBox returns the smallest box covering all given cities.
func UnionBBox(cs []City) BBox {
	if len(cs) == 0 {
		return BBox{}
	}
	u := cs[0].BBox
	for _, c := range cs[1:] {
		u.LatMin = min(u.LatMin, c.BBox.LatMin)
		u.LatMax = max(u.LatMax, c.BBox.LatMax)
		u.LonMin = min(u.LonMin, c.BBox.LonMin)
		u.LonMax = max(u.LonMax, c.BBox.LonMax)
	}
	return u
}
