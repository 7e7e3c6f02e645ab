// Command validate checks the integrity of statistics tables written by
// climstats: header layout, city membership and order, percentage ranges and
// the ordering of the temperature summaries.
//
// Usage:
//
//	go run ./cmd/validate data/weather_stats_norwegian_cities_2024-12.csv [more.csv ...]
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/couchcryptid/city-climate-stats/internal/adapter/table"
	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

// Column positions within Row.Values.
const (
	colPrecip = iota
	colExtreme
	colBelowZero
	colMin
	colMax
	colMedian
	colMean
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s table.csv [table.csv ...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if code := run(flag.Args(), os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(paths []string, out io.Writer) int {
	fmt.Fprintln(out, "=== Climate Table Integrity Validation ===")

	allPassed := true
	for _, path := range paths {
		fmt.Fprintf(out, "\n%s\n", path)

		t, err := table.ReadFile(path)
		if err != nil {
			fmt.Fprintf(out, "  FATAL: %v\n", err)
			allPassed = false
			continue
		}

		phases := []*phase{
			validateLayout(path, t),
			validateCities(t),
			validatePercentages(t),
			validateTemperatures(t),
		}
		for _, p := range phases {
			status := "\033[32mPASS\033[0m"
			if !p.passed() {
				status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
				allPassed = false
			}
			fmt.Fprintf(out, "  %-32s %s\n", p.name, status)
		}
		fmt.Fprintf(out, "  Rows: %d, month: %s\n", len(t.Rows), domain.MonthAbbrev(t.Month))

		for _, p := range phases {
			if p.passed() {
				continue
			}
			fmt.Fprintf(out, "\n  --- %s ---\n", p.name)
			for i, e := range p.errors {
				fmt.Fprintf(out, "    [%d] %s\n", i+1, e)
			}
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateLayout(path string, t table.Table) *phase {
	p := &phase{name: "Layout"}

	if want := domain.Header(t.Month); !slices.Equal(t.Header, want) {
		p.errorf("header %v, want %v", t.Header, want)
	}
	if len(t.Rows) == 0 {
		p.errorf("table has no rows")
	}
	for _, r := range t.Rows {
		if len(r.Values) != len(domain.StatColumns()) {
			p.errorf("line %d: %d values, want %d", r.Line, len(r.Values), len(domain.StatColumns()))
		}
	}
	if n := len(t.Rows); n > 0 {
		// Tables are named after the last requested year, which ends the table.
		if want := domain.TableFileName(t.Rows[n-1].Year, t.Month); filepath.Base(path) != want {
			p.errorf("file name %q, want %q", filepath.Base(path), want)
		}
	}
	return p
}

func validateCities(t table.Table) *phase {
	p := &phase{name: "Cities and ordering"}

	order := make(map[string]int)
	for i, c := range domain.Cities() {
		order[c.Name] = i
	}

	// Every city repeats the year order of the first city in the table.
	rank := make(map[int]int)
	firstCity := ""
	seen := make(map[string]bool)
	prevCity, prevRank := -1, -1
	for _, r := range t.Rows {
		idx, ok := order[r.City]
		if !ok {
			p.errorf("line %d: unknown city %q", r.Line, r.City)
			continue
		}
		key := fmt.Sprintf("%s|%d", r.City, r.Year)
		if seen[key] {
			p.errorf("line %d: duplicate row for %s %d", r.Line, r.City, r.Year)
		}
		seen[key] = true
		if firstCity == "" {
			firstCity = r.City
		}

		if idx < prevCity {
			p.errorf("line %d: %s out of city order", r.Line, r.City)
		}
		if r.City == firstCity {
			if _, ok := rank[r.Year]; !ok {
				rank[r.Year] = len(rank)
			}
		}
		k, ok := rank[r.Year]
		switch {
		case !ok:
			p.errorf("line %d: %s year %d not listed for %s", r.Line, r.City, r.Year, firstCity)
		case idx == prevCity && k <= prevRank:
			p.errorf("line %d: %s year %d out of year order", r.Line, r.City, r.Year)
		}
		prevCity, prevRank = idx, k
	}
	return p
}

func validatePercentages(t table.Table) *phase {
	p := &phase{name: "Percentages"}
	for _, r := range t.Rows {
		if len(r.Values) <= colBelowZero {
			continue
		}
		for col := colPrecip; col <= colBelowZero; col++ {
			v := r.Values[col]
			if math.IsNaN(v) {
				continue
			}
			if v < 0 || v > 100 {
				p.errorf("line %d: %s = %.1f outside [0,100]", r.Line, t.Header[2+col], v)
			}
		}
		precip, extreme := r.Values[colPrecip], r.Values[colExtreme]
		if !math.IsNaN(precip) && !math.IsNaN(extreme) && extreme > precip {
			p.errorf("line %d: extreme precipitation %.1f%% exceeds precipitation %.1f%%", r.Line, extreme, precip)
		}
	}
	return p
}

func validateTemperatures(t table.Table) *phase {
	p := &phase{name: "Temperature summaries"}
	for _, r := range t.Rows {
		if len(r.Values) <= colMean {
			continue
		}
		lo, hi := r.Values[colMin], r.Values[colMax]
		if math.IsNaN(lo) || math.IsNaN(hi) {
			continue
		}
		if lo > hi {
			p.errorf("line %d: min %.1f > max %.1f", r.Line, lo, hi)
		}
		for _, c := range []struct {
			name string
			v    float64
		}{
			{"median", r.Values[colMedian]},
			{"mean", r.Values[colMean]},
		} {
			if !math.IsNaN(c.v) && (c.v < lo || c.v > hi) {
				p.errorf("line %d: %s %.1f outside [%.1f, %.1f]", r.Line, c.name, c.v, lo, hi)
			}
		}
	}
	return p
}
