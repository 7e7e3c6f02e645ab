package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGrid is a 3x3 grid with lat 59.5/60/60.5 along Y and lon 10/10.5/11
// along X.
func testGrid(t *testing.T) Grid {
	t.Helper()
	g, err := GridFromAxes([]float64{59.5, 60, 60.5}, []float64{10, 10.5, 11})
	require.NoError(t, err)
	return g
}

func TestNewGrid_Validates(t *testing.T) {
	_, err := NewGrid(2, 2, []float64{1, 2, 3}, []float64{1, 2, 3, 4})
	assert.Error(t, err)
	_, err = NewGrid(0, 2, nil, nil)
	assert.Error(t, err)
	_, err = GridFromAxes(nil, []float64{1})
	assert.Error(t, err)
}

func TestGridFromAxes_Layout(t *testing.T) {
	g := testGrid(t)
	assert.Equal(t, 9, g.Cells())
	// row 1, col 2
	assert.Equal(t, 60.0, g.Lat[1*3+2])
	assert.Equal(t, 11.0, g.Lon[1*3+2])
}

func TestNewMask(t *testing.T) {
	g := testGrid(t)

	m := NewMask(g, BBox{LatMin: 60, LatMax: 60.5, LonMin: 10.5, LonMax: 11})
	assert.Equal(t, 4, m.Len())
	assert.Equal(t, []int{4, 5, 7, 8}, m.Cells())

	y0, y1, x0, x1, ok := m.Extent()
	require.True(t, ok)
	assert.Equal(t, [4]int{1, 2, 1, 2}, [4]int{y0, y1, x0, x1})

	empty := NewMask(g, BBox{LatMin: 70, LatMax: 71, LonMin: 20, LonMax: 21})
	assert.True(t, empty.Empty())
	_, _, _, _, ok = empty.Extent()
	assert.False(t, ok)
}

func TestMask_Mean(t *testing.T) {
	g := testGrid(t)
	m := NewMask(g, BBox{LatMin: 60, LatMax: 60.5, LonMin: 10.5, LonMax: 11})

	field := []float64{
		100, 100, 100,
		100, 1, 2,
		100, 3, math.NaN(),
	}
	assert.InDelta(t, 2.0, m.Mean(field), 1e-12)

	allNaN := []float64{0, 0, 0, 0, math.NaN(), math.NaN(), 0, math.NaN(), math.NaN()}
	assert.True(t, math.IsNaN(m.Mean(allNaN)))

	empty := NewMask(g, BBox{LatMin: 80, LatMax: 81, LonMin: 0, LonMax: 1})
	assert.True(t, math.IsNaN(empty.Mean(field)))
}

func TestMask_WeightedMean(t *testing.T) {
	g := testGrid(t)
	m := NewMask(g, BBox{LatMin: 59.5, LatMax: 60.5, LonMin: 10, LonMax: 10})

	field := []float64{
		0, 9, 9,
		math.NaN(), 9, 9,
		10, 9, 9,
	}
	w0 := math.Cos(59.5 * math.Pi / 180)
	w2 := math.Cos(60.5 * math.Pi / 180)
	want := 10 * w2 / (w0 + w2)
	assert.InDelta(t, want, m.WeightedMean(field), 1e-12)

	// Higher latitude cells weigh less than the unweighted mean would give them.
	assert.Less(t, m.WeightedMean(field), m.Mean(field))
}
