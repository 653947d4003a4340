// Package charts renders indicator tables to PNG files with gonum/plot.
package charts

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"indicatorlab/internal"
	"indicatorlab/internal/errors"
)

// DefaultDPI is the resolution figures are written at unless told otherwise
const DefaultDPI = 300

// Renderer writes charts. Every chart call takes its own output path.
type Renderer struct {
	dpi    int
	logger *internal.Logger
}

// NewRenderer creates a renderer writing PNGs at dpi dots per inch
func NewRenderer(dpi int, logger *internal.Logger) *Renderer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Renderer{dpi: dpi, logger: logger}
}

// DPI returns the output resolution
func (r *Renderer) DPI() int {
	return r.dpi
}

// save paints a width x height figure and writes it to path as PNG.
func (r *Renderer) save(path string, width, height vg.Length, paint func(dc draw.Canvas) error) (err error) {
	if path == "" {
		return errors.InvalidInput("chart output path is required")
	}

	img := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(r.dpi))
	if err := paintSafely(draw.New(img), paint); err != nil {
		return errors.RenderError(path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.RenderError(path, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.RenderError(path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.RenderError(path, cerr)
		}
	}()

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return errors.RenderError(path, err)
	}
	r.logger.Info("[Charts] wrote %s (%.0fx%.0f in, %d dpi)", path, float64(width/vg.Inch), float64(height/vg.Inch), r.dpi)
	return nil
}

// paintSafely turns a panic inside gonum/plot into an error.
func paintSafely(dc draw.Canvas, paint func(dc draw.Canvas) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("plot panicked: %v", p)
		}
	}()
	return paint(dc)
}
