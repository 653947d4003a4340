package profiling

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"indicatorlab/domain/indicator"
	"indicatorlab/internal/errors"
)

// DistributionAnalyzer handles distribution shape analysis
type DistributionAnalyzer struct{}

// NewDistributionAnalyzer creates a new distribution analyzer
func NewDistributionAnalyzer() *DistributionAnalyzer {
	return &DistributionAnalyzer{}
}

// Summarize profiles the present values of data. Missing values (NaN) are
// skipped; a column with nothing present yields Count 0 and NaN fields.
func (da *DistributionAnalyzer) Summarize(data []float64) (Summary, error) {
	present := indicator.Present(data)
	if len(present) == 0 {
		return emptySummary(), nil
	}

	summary := emptySummary()
	summary.Count = len(present)

	var err error
	if summary.Mean, err = stats.Mean(present); err != nil {
		return summary, errors.ComputationError("mean", err)
	}
	if summary.Median, err = stats.Median(present); err != nil {
		return summary, errors.ComputationError("median", err)
	}
	if summary.Min, err = stats.Min(present); err != nil {
		return summary, errors.ComputationError("min", err)
	}
	if summary.Max, err = stats.Max(present); err != nil {
		return summary, errors.ComputationError("max", err)
	}
	if len(present) > 1 {
		if summary.Std, err = stats.StandardDeviationSample(present); err != nil {
			return summary, errors.ComputationError("standard deviation", err)
		}
	}

	sorted := append([]float64(nil), present...)
	sort.Float64s(sorted)
	summary.Q25 = quantile(sorted, 0.25)
	summary.Q75 = quantile(sorted, 0.75)

	summary.Skewness = calculateSkewness(present, summary.Std)
	summary.Kurtosis = calculateKurtosis(present, summary.Std)

	return summary, nil
}

// calculateSkewness is the sample skewness; undefined below 3 values or for a constant column
func calculateSkewness(data []float64, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 || math.IsNaN(stdDev) {
		return math.NaN()
	}
	return stat.Skew(data, nil)
}

// calculateKurtosis is the sample excess kurtosis; undefined below 4 values or for a constant column
func calculateKurtosis(data []float64, stdDev float64) float64 {
	if len(data) < 4 || stdDev == 0 || math.IsNaN(stdDev) {
		return math.NaN()
	}
	return stat.ExKurtosis(data, nil)
}

// quantile interpolates linearly between the order statistics around
// (n-1)*p, the definition describe() tables use. sorted must be ascending
// and non-empty.
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}
