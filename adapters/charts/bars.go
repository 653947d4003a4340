package charts

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"indicatorlab/domain/indicator"
	"indicatorlab/internal/errors"
)

// BarGroups is the input of a grouped bar chart: one bar per series inside
// each category. Values[s][c] belongs to Series[s] and Categories[c].
type BarGroups struct {
	Title      string
	YLabel     string
	Categories []string
	Series     []string
	Values     [][]float64
}

const legendWidth = 2 * vg.Inch

// GroupedBars draws groups with the legend in a strip right of the plot area.
// Missing values are drawn as empty bars.
func (r *Renderer) GroupedBars(groups BarGroups, path string) error {
	if len(groups.Series) == 0 || len(groups.Categories) == 0 {
		return errors.InvalidInput("grouped bar chart needs at least one series and one category")
	}
	if len(groups.Values) != len(groups.Series) {
		return errors.InvalidInput("one value row per series is required")
	}

	p := plot.New()
	p.Title.Text = groups.Title
	p.Y.Label.Text = groups.YLabel
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	p.NominalX(groups.Categories...)

	legend := plot.NewLegend()
	legend.Top = true
	legend.Left = true
	legend.XOffs = vg.Millimeter * 2
	legend.YOffs = -vg.Millimeter * 10

	barWidth := vg.Points(60 / float64(len(groups.Series)+1))
	for s, name := range groups.Series {
		if len(groups.Values[s]) != len(groups.Categories) {
			return errors.InvalidInput("series " + name + " does not cover every category")
		}
		values := make(plotter.Values, len(groups.Categories))
		for c, v := range groups.Values[s] {
			if !indicator.IsMissing(v) {
				values[c] = v
			}
		}

		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return errors.RenderError(name+" bars", err)
		}
		bars.Color = plotutil.Color(s)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = barWidth * vg.Length(float64(s)-float64(len(groups.Series)-1)/2)
		p.Add(bars)
		legend.Add(name, bars)
	}

	width := 10*vg.Inch + legendWidth
	height := 6 * vg.Inch
	return r.save(path, width, height, func(dc draw.Canvas) error {
		p.Draw(draw.Crop(dc, 0, -legendWidth, 0, 0))
		legend.Draw(draw.Crop(dc, width-legendWidth, 0, 0, 0))
		return nil
	})
}
