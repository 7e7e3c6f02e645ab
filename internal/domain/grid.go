package domain

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Grid holds the 2-D cell-centre coordinates of a dataset, flattened
// row-major: index = y*NX + x.
type Grid struct {
	NY  int
	NX  int
	Lat []float64
	Lon []float64
}

// NewGrid validates and wraps flattened 2-D coordinates.
func NewGrid(ny, nx int, lat, lon []float64) (Grid, error) {
	if ny <= 0 || nx <= 0 {
		return Grid{}, fmt.Errorf("grid shape %dx%d must be positive", ny, nx)
	}
	if len(lat) != ny*nx || len(lon) != ny*nx {
		return Grid{}, fmt.Errorf("grid coordinates have %d/%d cells, want %d", len(lat), len(lon), ny*nx)
	}
	return Grid{NY: ny, NX: nx, Lat: lat, Lon: lon}, nil
}

// GridFromAxes expands 1-D latitude and longitude axes into a 2-D grid with
// latitude varying along Y and longitude along X.
func GridFromAxes(lats, lons []float64) (Grid, error) {
	if len(lats) == 0 || len(lons) == 0 {
		return Grid{}, errors.New("grid axes must not be empty")
	}
	ny, nx := len(lats), len(lons)
	lat := make([]float64, ny*nx)
	lon := make([]float64, ny*nx)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			lat[y*nx+x] = lats[y]
			lon[y*nx+x] = lons[x]
		}
	}
	return NewGrid(ny, nx, lat, lon)
}

// Cells returns the number of cells in the grid.
func (g Grid) Cells() int {
	return g.NY * g.NX
}

// Mask is the set of grid cells inside a bounding box.
type Mask struct {
	grid  Grid
	cells []int
}

// NewMask selects every cell whose lat and lon both satisfy the box.
func NewMask(g Grid, b BBox) Mask {
	var cells []int
	for i := range g.Lat {
		if b.Contains(g.Lat[i], g.Lon[i]) {
			cells = append(cells, i)
		}
	}
	return Mask{grid: g, cells: cells}
}

// Len returns the number of selected cells.
func (m Mask) Len() int {
	return len(m.cells)
}

// Empty reports whether no cell was selected.
func (m Mask) Empty() bool {
	return len(m.cells) == 0
}

// Cells returns the flattened indices of the selected cells.
func (m Mask) Cells() []int {
	return m.cells
}

// Extent returns the inclusive row and column ranges covering the selection.
// ok is false for an empty mask.
func (m Mask) Extent() (y0, y1, x0, x1 int, ok bool) {
	if m.Empty() {
		return 0, 0, 0, 0, false
	}
	y0, x0 = m.grid.NY, m.grid.NX
	y1, x1 = -1, -1
	for _, c := range m.cells {
		y, x := c/m.grid.NX, c%m.grid.NX
		y0, y1 = min(y0, y), max(y1, y)
		x0, x1 = min(x0, x), max(x1, x)
	}
	return y0, y1, x0, x1, true
}

// Mean averages the selected cells of a flattened field, skipping NaN.
// It returns NaN when no selected cell is finite.
func (m Mask) Mean(field []float64) float64 {
	vals := make([]float64, 0, len(m.cells))
	for _, c := range m.cells {
		if c < len(field) {
			vals = append(vals, field[c])
		}
	}
	return Mean(vals)
}

// WeightedMean averages the selected cells with cos(lat) weights, skipping NaN.
func (m Mask) WeightedMean(field []float64) float64 {
	vals := make([]float64, 0, len(m.cells))
	weights := make([]float64, 0, len(m.cells))
	for _, c := range m.cells {
		if c >= len(field) {
			continue
		}
		v := field[c]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		vals = append(vals, v)
		weights = append(weights, math.Cos(m.grid.Lat[c]*math.Pi/180))
	}
	if len(vals) == 0 {
		return math.NaN()
	}
	return stat.Mean(vals, weights)
}
