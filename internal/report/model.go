// Package report assembles the results of an analysis run and renders them as
// console text, markdown or HTML.
package report

import (
	"math"
	"strconv"

	"indicatorlab/domain/core"
	"indicatorlab/internal/analysis"
	"indicatorlab/internal/profiling"
)

// Report is everything one run computed
type Report struct {
	RunID      core.RunID
	Indicators []IndicatorSection
	// OverTime correlates the indicators per year, across countries.
	OverTime []analysis.Correlation
	// ByCountry correlates the indicators per country, across years.
	ByCountry []analysis.Correlation
}

// IndicatorSection holds the statistics of one indicator
type IndicatorSection struct {
	Title       string // e.g. "Access to electricity"
	Short       string // used where space is tight (sheet names)
	Unit        string
	Source      string
	FirstYear   int
	LastYear    int
	Fingerprint core.Hash
	ByCountry   []profiling.ColumnSummary   // one per country, across years
	ByYear      []profiling.ColumnSummary   // one per year, across countries
	Selected    []profiling.CentralTendency // the configured country subset
	Decades     *analysis.DecadeGroups
}

// FormatValue renders a statistic the way every output format shows it
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
