package indicator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

var nan = math.NaN()

func sampleTable(t *testing.T) *CountryYearTable {
	t.Helper()
	values := mat.NewDense(3, 2, []float64{
		10, 1,
		20, nan,
		nan, 3,
	})
	table, err := NewCountryYearTable([]int{2018, 2019, 2020}, []string{"A", "B"}, values)
	require.NoError(t, err)
	return table
}

func sameValues(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: expected NaN, got %v", i, got[i])
			continue
		}
		assert.Equal(t, want[i], got[i], "index %d", i)
	}
}

func TestNewCountryYearTableValidates(t *testing.T) {
	_, err := NewCountryYearTable([]int{2018}, []string{"A", "B"}, mat.NewDense(2, 2, nil))
	assert.True(t, errors.Is(err, ErrShape))

	_, err = NewCountryYearTable([]int{2018, 2018}, []string{"A"}, mat.NewDense(2, 1, nil))
	assert.True(t, errors.Is(err, ErrDuplicateLabel))

	_, err = NewYearCountryTable([]string{"A"}, []int{2018}, nil)
	assert.True(t, errors.Is(err, ErrShape))
}

func TestCountryAndYearAccess(t *testing.T) {
	table := sampleTable(t)

	a, err := table.Country("A")
	require.NoError(t, err)
	sameValues(t, []float64{10, 20, nan}, a)

	y, err := table.Year(2020)
	require.NoError(t, err)
	sameValues(t, []float64{nan, 3}, y)

	_, err = table.Country("Nowhere")
	assert.True(t, errors.Is(err, ErrUnknownLabel))

	assert.Equal(t, []string{"2018", "2019", "2020"}, table.RowLabels())
	assert.Equal(t, []string{"A", "B"}, table.ColumnLabels())
}

func TestTransposeIsExact(t *testing.T) {
	table := sampleTable(t)
	flipped := table.T()

	r, c := table.Dims()
	fr, fc := flipped.Dims()
	require.Equal(t, r, fc)
	require.Equal(t, c, fr)
	assert.Equal(t, table.Countries(), flipped.Countries())
	assert.Equal(t, table.Years(), flipped.Years())

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			assert.Equal(t, math.Float64bits(table.At(i, j)), math.Float64bits(flipped.At(j, i)))
		}
	}

	b, err := flipped.Country("B")
	require.NoError(t, err)
	sameValues(t, []float64{1, nan, 3}, b)

	assert.Equal(t, table.Fingerprint(), flipped.T().Fingerprint())
	assert.NotEqual(t, table.Fingerprint(), flipped.Fingerprint())
}

func TestTransposeCopiesValues(t *testing.T) {
	values := mat.NewDense(1, 1, []float64{5})
	table, err := NewCountryYearTable([]int{2000}, []string{"A"}, values)
	require.NoError(t, err)

	flipped := table.T()
	values.Set(0, 0, 6)

	assert.Equal(t, 5.0, flipped.At(0, 0))
}

func TestSelect(t *testing.T) {
	table := sampleTable(t)

	sub, err := table.Select("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, sub.Countries())
	assert.Equal(t, table.Years(), sub.Years())

	rows, err := table.T().Select("B", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, rows.Countries())
	a, err := rows.Country("A")
	require.NoError(t, err)
	sameValues(t, []float64{10, 20, nan}, a)

	_, err = table.Select("C")
	assert.True(t, errors.Is(err, ErrUnknownLabel))

	_, err = table.Select()
	assert.True(t, errors.Is(err, ErrShape))
}

func TestFingerprintDistinguishesNaNFromValue(t *testing.T) {
	one, err := NewCountryYearTable([]int{2000}, []string{"A"}, mat.NewDense(1, 1, []float64{nan}))
	require.NoError(t, err)
	two, err := NewCountryYearTable([]int{2000}, []string{"A"}, mat.NewDense(1, 1, []float64{0}))
	require.NoError(t, err)

	assert.NotEqual(t, one.Fingerprint(), two.Fingerprint())
	assert.Equal(t, one.Fingerprint(), one.T().T().Fingerprint())
}

func TestPresent(t *testing.T) {
	assert.Equal(t, []float64{1, 3}, Present([]float64{nan, 1, nan, 3}))
	assert.Empty(t, Present([]float64{nan}))
}
