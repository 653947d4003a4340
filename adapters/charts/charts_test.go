package charts

import (
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"indicatorlab/domain/indicator"
	"indicatorlab/internal"
	"indicatorlab/internal/errors"
)

const testDPI = 40

func sampleTable(t *testing.T, scale float64) *indicator.CountryYearTable {
	t.Helper()
	years := []int{2015, 2016, 2017, 2018, 2019}
	countries := []string{"India", "China", "Brazil"}
	values := mat.NewDense(len(years), len(countries), nil)
	for i := range years {
		for j := range countries {
			values.Set(i, j, scale*float64(i+j+1))
		}
	}
	values.Set(2, 0, math.NaN())
	table, err := indicator.NewCountryYearTable(years, countries, values)
	require.NoError(t, err)
	return table
}

func pngSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestTimeSeriesPanelWritesPNG(t *testing.T) {
	renderer := NewRenderer(testDPI, internal.Discard)
	path := filepath.Join(t.TempDir(), "nested", "panel.png")

	err := renderer.TimeSeriesPanel(
		ElectricitySeries(sampleTable(t, 10)),
		EmissionsSeries(sampleTable(t, 0.5)),
		[]string{"India", "China", "Brazil"},
		path,
	)
	require.NoError(t, err)

	width, height := pngSize(t, path)
	assert.InDelta(t, 12*testDPI, width, 1)
	assert.InDelta(t, 8*testDPI, height, 1)
}

func TestTimeSeriesPanelUnknownCountry(t *testing.T) {
	renderer := NewRenderer(testDPI, internal.Discard)

	err := renderer.TimeSeriesPanel(
		ElectricitySeries(sampleTable(t, 10)),
		EmissionsSeries(sampleTable(t, 1)),
		[]string{"Atlantis"},
		filepath.Join(t.TempDir(), "panel.png"),
	)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestGroupedBarsWritesPNG(t *testing.T) {
	renderer := NewRenderer(testDPI, internal.Discard)
	path := filepath.Join(t.TempDir(), "bars.png")

	err := renderer.GroupedBars(BarGroups{
		Title:      "Access to electricity by decade",
		YLabel:     "Percentage of population",
		Categories: []string{"1990s", "2000s", "2010s"},
		Series:     []string{"India", "China"},
		Values:     [][]float64{{40, 60, math.NaN()}, {70, 90, 100}},
	}, path)
	require.NoError(t, err)

	width, height := pngSize(t, path)
	assert.InDelta(t, 12*testDPI, width, 1)
	assert.InDelta(t, 6*testDPI, height, 1)
}

func TestGroupedBarsValidatesShape(t *testing.T) {
	renderer := NewRenderer(testDPI, internal.Discard)
	dir := t.TempDir()

	err := renderer.GroupedBars(BarGroups{Categories: []string{"1990s"}}, filepath.Join(dir, "a.png"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	err = renderer.GroupedBars(BarGroups{
		Categories: []string{"1990s", "2000s"},
		Series:     []string{"India"},
		Values:     [][]float64{{1}},
	}, filepath.Join(dir, "b.png"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSaveRequiresPath(t *testing.T) {
	err := NewRenderer(testDPI, internal.Discard).GroupedBars(BarGroups{
		Categories: []string{"1990s"},
		Series:     []string{"India"},
		Values:     [][]float64{{1}},
	}, "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestPresentRuns(t *testing.T) {
	runs := presentRuns([]int{2000, 2001, 2002, 2003, 2004}, []float64{1, math.NaN(), 3, 4, math.NaN()})
	require.Len(t, runs, 2)
	assert.Len(t, runs[0], 1)
	assert.Len(t, runs[1], 2)
	assert.Equal(t, 2002.0, runs[1][0].X)
}

func TestNewRendererDefaultsDPI(t *testing.T) {
	assert.Equal(t, DefaultDPI, NewRenderer(0, nil).DPI())
}
