package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"indicatorlab/domain/indicator"
)

// Correlation is the Pearson coefficient between the same-labeled columns of
// two tables. N is the number of rows where both sides are present.
type Correlation struct {
	Label       string  `json:"label"`
	Coefficient float64 `json:"coefficient"`
	N           int     `json:"n"`
	PValue      float64 `json:"p_value"`
}

// CorrWith correlates each column of a with the column of b carrying the same
// label, over the rows both tables share. Rows where either side is missing
// are skipped pair by pair.
//
// Shared columns come first in a's order, then the columns present in only
// one table, sorted by label, with a NaN coefficient. Fewer than two pairs, or
// a constant side, also yield NaN.
func CorrWith(a, b indicator.Table) []Correlation {
	aRows, bRows := a.RowLabels(), b.RowLabels()
	bRowIdx := indexOf(bRows)
	type pair struct{ i, j int }
	var sharedRows []pair
	for i, label := range aRows {
		if j, ok := bRowIdx[label]; ok {
			sharedRows = append(sharedRows, pair{i, j})
		}
	}

	aCols, bCols := a.ColumnLabels(), b.ColumnLabels()
	bColIdx := indexOf(bCols)
	aColIdx := indexOf(aCols)

	results := make([]Correlation, 0, len(aCols))
	var unmatched []string
	x := make([]float64, 0, len(sharedRows))
	y := make([]float64, 0, len(sharedRows))
	for ac, label := range aCols {
		bc, ok := bColIdx[label]
		if !ok {
			unmatched = append(unmatched, label)
			continue
		}

		x, y = x[:0], y[:0]
		for _, p := range sharedRows {
			av, bv := a.At(p.i, ac), b.At(p.j, bc)
			if indicator.IsMissing(av) || indicator.IsMissing(bv) {
				continue
			}
			x = append(x, av)
			y = append(y, bv)
		}

		r := pearson(x, y)
		results = append(results, Correlation{
			Label:       label,
			Coefficient: r,
			N:           len(x),
			PValue:      CorrelationPValue(r, len(x)),
		})
	}

	for _, label := range bCols {
		if _, ok := aColIdx[label]; !ok {
			unmatched = append(unmatched, label)
		}
	}
	sort.Strings(unmatched)
	for _, label := range unmatched {
		results = append(results, Correlation{Label: label, Coefficient: math.NaN(), PValue: math.NaN()})
	}
	return results
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// CorrelationPValue is the two-tailed p-value of a Pearson coefficient from
// n pairs under the t-distribution with n-2 degrees of freedom.
func CorrelationPValue(correlation float64, sampleSize int) float64 {
	if sampleSize < 3 || math.IsNaN(correlation) {
		return math.NaN()
	}
	if correlation*correlation >= 1 {
		return 0
	}

	df := float64(sampleSize - 2)
	tStatistic := correlation * math.Sqrt(df/(1-correlation*correlation))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// Strongest returns the correlation with the largest absolute coefficient,
// ignoring NaN, and false when there is none.
func Strongest(results []Correlation) (Correlation, bool) {
	var best Correlation
	found := false
	for _, c := range results {
		if math.IsNaN(c.Coefficient) {
			continue
		}
		if !found || math.Abs(c.Coefficient) > math.Abs(best.Coefficient) {
			best, found = c, true
		}
	}
	return best, found
}

func indexOf(labels []string) map[string]int {
	idx := make(map[string]int, len(labels))
	for i, label := range labels {
		idx[label] = i
	}
	return idx
}
