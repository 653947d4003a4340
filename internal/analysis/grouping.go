package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"indicatorlab/domain/indicator"
	"indicatorlab/internal/errors"
)

// DecadeGroups holds the mean of each country per decade. Means[c][d] belongs
// to Countries[c] and Decades[d]; NaN means the country reported nothing that decade.
type DecadeGroups struct {
	Decades   []int
	Countries []string
	Means     [][]float64
}

// Decade maps a year to the first year of its decade.
func Decade(year int) int {
	return year - ((year%10)+10)%10
}

// DecadeMeans groups the years of t by decade and averages each selected country.
func DecadeMeans(t *indicator.CountryYearTable, countries []string) (*DecadeGroups, error) {
	subset, err := t.Select(countries...)
	if err != nil {
		return nil, errors.Wrap(errors.WithCode(errors.CodeInvalidInput, err), "select countries")
	}

	years := subset.Years()
	byDecade := make(map[int][]int)
	for i, y := range years {
		d := Decade(y)
		byDecade[d] = append(byDecade[d], i)
	}
	decades := make([]int, 0, len(byDecade))
	for d := range byDecade {
		decades = append(decades, d)
	}
	sort.Ints(decades)

	groups := &DecadeGroups{Decades: decades, Countries: subset.Countries()}
	for j, country := range groups.Countries {
		means := make([]float64, len(decades))
		for k, d := range decades {
			var values []float64
			for _, i := range byDecade[d] {
				if v := subset.At(i, j); !indicator.IsMissing(v) {
					values = append(values, v)
				}
			}
			if len(values) == 0 {
				means[k] = math.NaN()
				continue
			}
			mean, err := stats.Mean(values)
			if err != nil {
				return nil, errors.ComputationError(fmt.Sprintf("mean of %s in the %ds", country, d), err)
			}
			means[k] = mean
		}
		groups.Means = append(groups.Means, means)
	}
	return groups, nil
}
