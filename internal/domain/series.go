package domain

import (
	"time"
)

// Series is a daily time series of city values. Times and Values are
// parallel slices.
type Series struct {
	Times  []time.Time `json:"times"`
	Values []float64   `json:"values"`
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Times)
}

// Filter returns the samples for which keep returns true.
func (s Series) Filter(keep func(t time.Time, v float64) bool) Series {
	out := Series{
		Times:  make([]time.Time, 0, len(s.Times)),
		Values: make([]float64, 0, len(s.Values)),
	}
	for i, t := range s.Times {
		if keep(t, s.Values[i]) {
			out.Times = append(out.Times, t)
			out.Values = append(out.Values, s.Values[i])
		}
	}
	return out
}

// InMonth keeps samples from calendar month m (any year).
func (s Series) InMonth(m time.Month) Series {
	return s.Filter(func(t time.Time, _ float64) bool { return t.Month() == m })
}

// InMonths keeps samples whose month is in the set.
func (s Series) InMonths(set MonthSet) Series {
	return s.Filter(func(t time.Time, _ float64) bool { return set.Has(t.Month()) })
}

// Between keeps samples whose calendar date lies in [from, to], inclusive.
func (s Series) Between(from, to time.Time) Series {
	lo := truncateDay(from)
	hi := truncateDay(to)
	return s.Filter(func(t time.Time, _ float64) bool {
		d := truncateDay(t)
		return !d.Before(lo) && !d.After(hi)
	})
}

// Concat appends the given series in order.
func Concat(parts ...Series) Series {
	var n int
	for _, p := range parts {
		n += p.Len()
	}
	out := Series{
		Times:  make([]time.Time, 0, n),
		Values: make([]float64, 0, n),
	}
	for _, p := range parts {
		out.Times = append(out.Times, p.Times...)
		out.Values = append(out.Values, p.Values...)
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
