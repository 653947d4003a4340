// Package indicator holds the two orientations of one cleaned World Bank
// indicator: years as rows (CountryYearTable) and countries as rows
// (YearCountryTable). Missing observations are NaN.
package indicator

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnknownLabel   = errors.New("unknown label")
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrShape          = errors.New("shape mismatch")
)

// Table is the read-only view shared by both orientations. Labels are
// rendered as text so tables of either orientation can be aligned.
type Table interface {
	Dims() (r, c int)
	At(i, j int) float64
	RowLabels() []string
	ColumnLabels() []string
}

// CountryYearTable has one row per year and one column per country.
type CountryYearTable struct {
	frame[int, string]
}

// YearCountryTable has one row per country and one column per year.
type YearCountryTable struct {
	frame[string, int]
}

// NewCountryYearTable builds a years x countries table. values must be
// len(years) x len(countries).
func NewCountryYearTable(years []int, countries []string, values *mat.Dense) (*CountryYearTable, error) {
	f, err := newFrame(years, countries, values)
	if err != nil {
		return nil, err
	}
	return &CountryYearTable{f}, nil
}

// NewYearCountryTable builds a countries x years table.
func NewYearCountryTable(countries []string, years []int, values *mat.Dense) (*YearCountryTable, error) {
	f, err := newFrame(countries, years, values)
	if err != nil {
		return nil, err
	}
	return &YearCountryTable{f}, nil
}

// Years returns the row labels in order.
func (t *CountryYearTable) Years() []int { return append([]int(nil), t.rows...) }

// Countries returns the column labels in order.
func (t *CountryYearTable) Countries() []string { return append([]string(nil), t.cols...) }

// Country returns one country's observations in year order.
func (t *CountryYearTable) Country(name string) ([]float64, error) {
	return t.col(name)
}

// Year returns one year's observations in country order.
func (t *CountryYearTable) Year(year int) ([]float64, error) {
	return t.row(year)
}

// Select keeps only the named countries, in the order given.
func (t *CountryYearTable) Select(countries ...string) (*CountryYearTable, error) {
	f, err := t.selectCols(countries)
	if err != nil {
		return nil, err
	}
	return &CountryYearTable{f}, nil
}

// T returns the countries x years orientation of the same data.
func (t *CountryYearTable) T() *YearCountryTable {
	return &YearCountryTable{transpose(t.frame)}
}

// Countries returns the row labels in order.
func (t *YearCountryTable) Countries() []string { return append([]string(nil), t.rows...) }

// Years returns the column labels in order.
func (t *YearCountryTable) Years() []int { return append([]int(nil), t.cols...) }

// Country returns one country's observations in year order.
func (t *YearCountryTable) Country(name string) ([]float64, error) {
	return t.row(name)
}

// Year returns one year's observations in country order.
func (t *YearCountryTable) Year(year int) ([]float64, error) {
	return t.col(year)
}

// Select keeps only the named countries, in the order given.
func (t *YearCountryTable) Select(countries ...string) (*YearCountryTable, error) {
	f, err := t.selectRows(countries)
	if err != nil {
		return nil, err
	}
	return &YearCountryTable{f}, nil
}

// T returns the years x countries orientation of the same data.
func (t *YearCountryTable) T() *CountryYearTable {
	return &CountryYearTable{transpose(t.frame)}
}

// IsMissing reports whether v marks a missing observation.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Present returns the non-missing values of xs, in order.
func Present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !IsMissing(x) {
			out = append(out, x)
		}
	}
	return out
}

func labelError(err error, label any) error {
	return fmt.Errorf("%w: %v", err, label)
}
