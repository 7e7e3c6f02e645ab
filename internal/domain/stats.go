package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// finite returns the non-NaN, non-Inf values of vs.
func finite(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Min returns the smallest finite value, or NaN if there is none.
func Min(vs []float64) float64 {
	f := finite(vs)
	if len(f) == 0 {
		return math.NaN()
	}
	return floats.Min(f)
}

// Max returns the largest finite value, or NaN if there is none.
func Max(vs []float64) float64 {
	f := finite(vs)
	if len(f) == 0 {
		return math.NaN()
	}
	return floats.Max(f)
}

// Mean returns the mean of the finite values, or NaN if there is none.
func Mean(vs []float64) float64 {
	f := finite(vs)
	if len(f) == 0 {
		return math.NaN()
	}
	return stat.Mean(f, nil)
}

// Median returns the middle finite value, or the mean of the middle pair for
// even counts. NaN if there is none.
func Median(vs []float64) float64 {
	f := finite(vs)
	n := len(f)
	if n == 0 {
		return math.NaN()
	}
	sort.Float64s(f)
	if n%2 == 1 {
		return f[n/2]
	}
	return (f[n/2-1] + f[n/2]) / 2
}

// Quantile returns the q-th quantile of the finite values using linear
// interpolation between closest ranks: h = (n-1)q,
// Q = x[floor(h)] + (h-floor(h))·(x[floor(h)+1]-x[floor(h)]).
//
// gonum's stat.Quantile offers Empirical and LinInterp (Hyndman-Fan type 4)
// only, so the closest-ranks variant is computed here.
func Quantile(vs []float64, q float64) (float64, error) {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return math.NaN(), fmt.Errorf("quantile %v outside [0,1]", q)
	}
	f := finite(vs)
	if len(f) == 0 {
		return math.NaN(), nil
	}
	sort.Float64s(f)

	h := float64(len(f)-1) * q
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(f)-1 {
		return f[len(f)-1], nil
	}
	return f[i] + (h-lo)*(f[i+1]-f[i]), nil
}

// PercentWhere returns the share of samples satisfying pred, in percent.
// NaN samples stay in the denominator. Empty input yields NaN.
func PercentWhere(vs []float64, pred func(float64) bool) float64 {
	if len(vs) == 0 {
		return math.NaN()
	}
	var n int
	for _, v := range vs {
		if !math.IsNaN(v) && pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(vs)) * 100
}

// CountWhere returns the number of non-NaN samples satisfying pred.
func CountWhere(vs []float64, pred func(float64) bool) int {
	var n int
	for _, v := range vs {
		if !math.IsNaN(v) && pred(v) {
			n++
		}
	}
	return n
}

// Round1 rounds the exact binary value to one decimal, sending true halves
// to the even digit: 0.25 gives 0.2, while 0.15 (stored just below) gives 0.1.
// NaN passes through.
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	if err != nil || r == 0 {
		return 0 // normalise -0
	}
	return r
}
