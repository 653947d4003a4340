package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"indicatorlab/domain/indicator"
	"indicatorlab/internal/errors"
)

// PanelSeries is one indicator drawn in the time-series panel
type PanelSeries struct {
	Table  *indicator.CountryYearTable
	Label  string // legend entry
	YLabel string // axis title
	Color  color.Color
}

var (
	electricityBlue = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	emissionsRed    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// ElectricitySeries is the upper scale of the panel
func ElectricitySeries(t *indicator.CountryYearTable) PanelSeries {
	return PanelSeries{Table: t, Label: "Electricity Access", YLabel: "Percentage of population", Color: electricityBlue}
}

// EmissionsSeries is the lower scale of the panel
func EmissionsSeries(t *indicator.CountryYearTable) PanelSeries {
	return PanelSeries{Table: t, Label: "CO2 Emissions", YLabel: "Metric tons per capita", Color: emissionsRed}
}

// TimeSeriesPanel draws, for each country, the upper series over the lower
// series on a shared year axis, each with its own y scale. Countries are laid
// out two per row.
func (r *Renderer) TimeSeriesPanel(upper, lower PanelSeries, countries []string, path string) error {
	if len(countries) == 0 {
		return errors.InvalidInput("time-series panel needs at least one country")
	}

	cols := 2
	if len(countries) == 1 {
		cols = 1
	}
	countryRows := (len(countries) + cols - 1) / cols

	minYear, maxYear := yearRange(upper.Table, lower.Table)
	plots := make([][]*plot.Plot, 2*countryRows)
	for i := range plots {
		plots[i] = make([]*plot.Plot, cols)
	}

	for k, country := range countries {
		row, col := 2*(k/cols), k%cols

		top, err := seriesPlot(upper, country, minYear, maxYear)
		if err != nil {
			return err
		}
		top.Title.Text = fmt.Sprintf("Electricity access and CO2 emissions over time in %s", country)

		bottom, err := seriesPlot(lower, country, minYear, maxYear)
		if err != nil {
			return err
		}
		bottom.X.Label.Text = "Year"

		plots[row][col] = top
		plots[row+1][col] = bottom
	}

	tiles := draw.Tiles{
		Rows:      len(plots),
		Cols:      cols,
		PadX:      vg.Millimeter * 8,
		PadY:      vg.Millimeter * 3,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}

	width := 6 * vg.Inch * vg.Length(cols)
	height := 4 * vg.Inch * vg.Length(countryRows)
	return r.save(path, width, height, func(dc draw.Canvas) error {
		canvases := plot.Align(plots, tiles, dc)
		for j := range plots {
			for i, p := range plots[j] {
				if p != nil {
					p.Draw(canvases[j][i])
				}
			}
		}
		return nil
	})
}

// seriesPlot draws one country's series. Gaps in the data break the line
// rather than being bridged.
func seriesPlot(s PanelSeries, country string, minYear, maxYear float64) (*plot.Plot, error) {
	values, err := s.Table.Country(country)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeInvalidInput, err), s.Label)
	}

	p := plot.New()
	p.Y.Label.Text = s.YLabel
	p.X.Min, p.X.Max = minYear, maxYear
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = true

	years := s.Table.Years()
	legendAdded := false
	for _, segment := range presentRuns(years, values) {
		line, err := plotter.NewLine(segment)
		if err != nil {
			return nil, errors.RenderError(s.Label+" line", err)
		}
		line.Color = s.Color
		line.Width = vg.Points(1.5)
		p.Add(line)

		// A lone observation would be invisible as a line.
		if len(segment) == 1 {
			dot, err := plotter.NewScatter(segment)
			if err != nil {
				return nil, errors.RenderError(s.Label+" point", err)
			}
			dot.GlyphStyle.Color = s.Color
			dot.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(dot)
		}

		if !legendAdded {
			p.Legend.Add(s.Label, line)
			legendAdded = true
		}
	}
	return p, nil
}

// presentRuns splits a year series into runs of consecutive present values.
func presentRuns(years []int, values []float64) []plotter.XYs {
	var runs []plotter.XYs
	var current plotter.XYs
	for i, v := range values {
		if indicator.IsMissing(v) {
			if len(current) > 0 {
				runs = append(runs, current)
				current = nil
			}
			continue
		}
		current = append(current, plotter.XY{X: float64(years[i]), Y: v})
	}
	if len(current) > 0 {
		runs = append(runs, current)
	}
	return runs
}

func yearRange(tables ...*indicator.CountryYearTable) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, t := range tables {
		for _, y := range t.Years() {
			lo = math.Min(lo, float64(y))
			hi = math.Max(hi, float64(y))
		}
	}
	return lo, hi
}
