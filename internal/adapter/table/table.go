// Package table writes and reads the monthly statistics CSV.
package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
	"github.com/couchcryptid/city-climate-stats/internal/observability"
)

// Write emits the header for month followed by one row per record.
func Write(w io.Writer, month time.Month, records []domain.MonthlyStats) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.Header(month)); err != nil {
		return err
	}
	for _, r := range records {
		row := make([]string, 0, 9)
		row = append(row, r.City, strconv.Itoa(r.Year))
		for _, v := range r.Values() {
			row = append(row, formatValue(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatValue prints one decimal; NaN becomes an empty cell.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// WriteFile writes the table to path atomically, creating parent directories.
func WriteFile(path string, month time.Month, records []domain.MonthlyStats) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, month, records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// Row is one parsed table row. Empty cells parse as NaN.
type Row struct {
	Line   int
	City   string
	Year   int
	Values []float64
}

// Table is a parsed statistics file.
type Table struct {
	Month  time.Month
	Header []string
	Rows   []Row
}

// ErrMalformed is returned when a file does not have the table layout.
var ErrMalformed = errors.New("malformed statistics table")

// Read parses a table, deriving the month from the column prefix.
func Read(r io.Reader) (Table, error) {
	all, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(all) == 0 {
		return Table{}, fmt.Errorf("%w: empty file", ErrMalformed)
	}

	header := all[0]
	if len(header) != 2+len(domain.StatColumns()) || header[0] != "city" || header[1] != "year" {
		return Table{}, fmt.Errorf("%w: unexpected header %v", ErrMalformed, header)
	}
	prefix, _, ok := strings.Cut(header[2], "_")
	if !ok {
		return Table{}, fmt.Errorf("%w: column %q has no month prefix", ErrMalformed, header[2])
	}
	month, err := domain.ParseMonth(prefix)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	t := Table{Month: month, Header: header}
	for i, rec := range all[1:] {
		line := i + 2
		year, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil {
			return Table{}, fmt.Errorf("%w: line %d: year %q", ErrMalformed, line, rec[1])
		}
		row := Row{Line: line, City: strings.TrimSpace(rec[0]), Year: year}
		for _, cell := range rec[2:] {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				row.Values = append(row.Values, math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return Table{}, fmt.Errorf("%w: line %d: value %q", ErrMalformed, line, cell)
			}
			row.Values = append(row.Values, v)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile parses the table at path.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	return t, nil
}

// Sink writes each batch as {dir}/weather_stats_norwegian_cities_{lastYear}-{MM}.csv.
type Sink struct {
	dir     string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewSink creates a CSV sink rooted at dir.
func NewSink(dir string, logger *slog.Logger, metrics *observability.Metrics) *Sink {
	return &Sink{dir: dir, logger: logger, metrics: metrics}
}

// LoadBatch writes the records. The file is named after the last record's year.
func (s *Sink) LoadBatch(_ context.Context, month time.Month, records []domain.MonthlyStats) error {
	if len(records) == 0 {
		return nil
	}
	path := filepath.Join(s.dir, domain.TableFileName(records[len(records)-1].Year, month))
	if err := WriteFile(path, month, records); err != nil {
		return err
	}
	s.metrics.RecordsWritten.WithLabelValues("csv").Add(float64(len(records)))
	s.logger.Info("table written", "file", path, "rows", len(records))
	return nil
}
