package profiling

import (
	"indicatorlab/domain/indicator"
	"indicatorlab/internal/errors"
)

// DataProfiler produces per-column profiles of indicator tables
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{analyzer: NewDistributionAnalyzer()}
}

// Describe profiles every column of t in column order. On a CountryYearTable
// that is one profile per country across years; on a YearCountryTable one per
// year across countries.
func (dp *DataProfiler) Describe(t indicator.Table) ([]ColumnSummary, error) {
	rows, cols := t.Dims()
	labels := t.ColumnLabels()

	results := make([]ColumnSummary, 0, cols)
	column := make([]float64, rows)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			column[i] = t.At(i, j)
		}
		summary, err := dp.analyzer.Summarize(column)
		if err != nil {
			return nil, errors.Wrapf(err, "describe column %q", labels[j])
		}
		results = append(results, ColumnSummary{Label: labels[j], Summary: summary})
	}
	return results, nil
}

// CentralTendency reports mean, median and standard deviation across years for
// each of the given countries, in the given order.
func (dp *DataProfiler) CentralTendency(t *indicator.CountryYearTable, countries []string) ([]CentralTendency, error) {
	subset, err := t.Select(countries...)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeInvalidInput, err), "select countries")
	}

	described, err := dp.Describe(subset)
	if err != nil {
		return nil, err
	}

	results := make([]CentralTendency, len(described))
	for i, d := range described {
		results[i] = CentralTendency{Country: d.Label, Mean: d.Mean, Median: d.Median, Std: d.Std}
	}
	return results, nil
}
