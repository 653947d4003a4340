package report

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indicatorlab/domain/core"
	"indicatorlab/internal/analysis"
	"indicatorlab/internal/profiling"
)

func sampleReport() *Report {
	summary := profiling.Summary{Count: 3, Mean: 50, Std: 10, Min: 40, Q25: 45, Median: 50, Q75: 55, Max: 60,
		Skewness: 0, Kurtosis: math.NaN()}
	return &Report{
		RunID: core.RunID("0190d3f2-0000-7000-8000-000000000000"),
		Indicators: []IndicatorSection{
			{
				Title:       "Access to electricity",
				Short:       "Electricity",
				Unit:        "% of population",
				Source:      "access to electricity.csv",
				FirstYear:   1990,
				LastYear:    2019,
				Fingerprint: core.NewHash([]byte("electricity")),
				ByCountry:   []profiling.ColumnSummary{{Label: "India", Summary: summary}},
				ByYear:      []profiling.ColumnSummary{{Label: "1990", Summary: summary}},
				Selected:    []profiling.CentralTendency{{Country: "India", Mean: 50, Median: 50, Std: 10}},
				Decades: &analysis.DecadeGroups{
					Decades:   []int{1990, 2000},
					Countries: []string{"India"},
					Means:     [][]float64{{45, math.NaN()}},
				},
			},
			{
				Title:     "CO2 emissions",
				Short:     "Emissions",
				FirstYear: 1990,
				LastYear:  2019,
				ByCountry: []profiling.ColumnSummary{{Label: "India", Summary: summary}},
				ByYear:    []profiling.ColumnSummary{{Label: "1990", Summary: summary}},
				Selected:  []profiling.CentralTendency{{Country: "India", Mean: 1.2, Median: 1.1, Std: 0.3}},
			},
		},
		OverTime:  []analysis.Correlation{{Label: "1990", Coefficient: 0.8, N: 10, PValue: 0.005}},
		ByCountry: []analysis.Correlation{{Label: "India", Coefficient: 0.97, N: 30, PValue: 0}},
	}
}

func TestWriteTextHeadingsInOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))
	out := buf.String()

	headings := []string{
		"Access to electricity summary statistics for whole world:",
		"Access to electricity summary statistics from 1990 to 2019:",
		"CO2 emissions summary statistics for whole world:",
		"CO2 emissions summary statistics from 1990 to 2019:",
		"Access to electricity statistics for a few countries:",
		"CO2 emissions statistics for a few countries:",
		"Correlation between electricity access and CO2 emissions over time:",
		"Correlation between electricity access and CO2 emissions for world:",
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, "missing heading %q", h)
		assert.Greater(t, idx, last, "heading %q out of order", h)
		last = idx
	}
	assert.Contains(t, out, "50.000000")
	assert.Contains(t, out, "Std Dev")
}

func TestWriteDescribe(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteDescribe(&buf, sampleReport().Indicators[1]))
	out := buf.String()
	assert.Contains(t, out, "CO2 emissions summary statistics for whole world:")
	assert.NotContains(t, out, "Correlation")
}

func TestMarkdownTables(t *testing.T) {
	md := sampleReport().Markdown()

	assert.Contains(t, md, "| country | count | mean | std | min | 25% | 50% | 75% | max |")
	assert.Contains(t, md, "| year | count |")
	assert.Contains(t, md, "| country | 1990s | 2000s |")
	assert.Contains(t, md, "| India | 45.000000 | NaN |")
	assert.Contains(t, md, "| India | 0.970000 | 30 | 0.000000 |")
	assert.Contains(t, md, "0190d3f2-0000-7000-8000-000000000000")
}

func TestHTMLIsCompletePage(t *testing.T) {
	page := string(sampleReport().HTML())
	assert.Contains(t, page, "<html")
	assert.Contains(t, page, "<title>Electricity access and CO2 emissions</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "Correlations")
}

func TestEscapeCells(t *testing.T) {
	assert.Equal(t, []string{"a/b", "c d"}, escapeCells([]string{"a|b", "c\nd"}))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NaN", FormatValue(math.NaN()))
	assert.Equal(t, "1.500000", FormatValue(1.5))
	assert.Equal(t, "1990s", DecadeLabel(1990))
}
