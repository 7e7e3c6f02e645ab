package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/city-climate-stats/internal/domain"
)

// FileRenderer writes plots below a figure directory:
// {dir}/{var}/{city}_{SEASON}_{year}_{var}.{ext} and {dir}/maps/{city}_map.{ext}.
type FileRenderer struct {
	dir    string
	format Format
}

// NewFileRenderer creates a FileRenderer.
func NewFileRenderer(dir string, format Format) *FileRenderer {
	return &FileRenderer{dir: dir, format: format}
}

// PlotSeason renders the season plot and returns the file path.
func (r *FileRenderer) PlotSeason(p domain.SeasonPlot) (string, error) {
	path := filepath.Join(r.dir, p.Variable, domain.PlotFileName(p.City, p.Season, p.Year, p.Variable, string(r.format)))
	return path, writeFile(path, func(w io.Writer) error { return RenderSeason(w, p, r.format) })
}

// PlotMap renders the map plot and returns the file path.
func (r *FileRenderer) PlotMap(p domain.MapPlot) (string, error) {
	path := filepath.Join(r.dir, "maps", domain.MapFileName(p.City.Name, string(r.format)))
	return path, writeFile(path, func(w io.Writer) error { return RenderMap(w, p, r.format) })
}

func writeFile(path string, render func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create figure dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return render(f)
}
