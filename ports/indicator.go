package ports

import (
	"indicatorlab/domain/indicator"
	"indicatorlab/internal/report"
)

// IndicatorLoader reads one indicator export into both table orientations
type IndicatorLoader interface {
	Load(path string) (*indicator.CountryYearTable, *indicator.YearCountryTable, error)
}

// ReportWriter persists a finished report to path
type ReportWriter interface {
	Write(r *report.Report, path string) error
}
