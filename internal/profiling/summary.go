package profiling

import "math"

// Summary is a describe-style profile of one column's present values.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess kurtosis, 0 for a normal distribution
}

// ColumnSummary labels a Summary with its column
type ColumnSummary struct {
	Label string
	Summary
}

// CentralTendency is the mean/median/std triple reported per selected country
type CentralTendency struct {
	Country string
	Mean    float64
	Median  float64
	Std     float64
}

func emptySummary() Summary {
	nan := math.NaN()
	return Summary{Mean: nan, Std: nan, Min: nan, Q25: nan, Median: nan, Q75: nan, Max: nan, Skewness: nan, Kurtosis: nan}
}
