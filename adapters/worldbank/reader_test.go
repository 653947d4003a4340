package worldbank

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indicatorlab/internal"
	"indicatorlab/internal/errors"
	"indicatorlab/internal/testkit"
)

const preamble = "\"Data Source\",\"World Development Indicators\",\n\n\"Last Updated Date\",\"2023-03-30\",\n\n"

func newTestReader() *Reader {
	return NewReader(nil, internal.Discard)
}

func load(t *testing.T, body string) error {
	t.Helper()
	_, _, err := newTestReader().LoadFromReader(strings.NewReader(preamble + body))
	return err
}

func TestSingleCountryDropsMissingYear(t *testing.T) {
	body := "Country Name,Country Code,Indicator Name,Indicator Code,2018,2019,2020\n" +
		"Testland,TST,Some Indicator,SI.CODE,,50.0,60.0\n"

	byYear, byCountry, err := newTestReader().LoadFromReader(strings.NewReader(preamble + body))
	require.NoError(t, err)

	assert.Equal(t, []int{2019, 2020}, byYear.Years())
	assert.Equal(t, []string{"Testland"}, byYear.Countries())
	values, err := byYear.Country("Testland")
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 60}, values)

	assert.Equal(t, []string{"Testland"}, byCountry.Countries())
	assert.Equal(t, []int{2019, 2020}, byCountry.Years())
}

func TestAllMissingCountryIsDropped(t *testing.T) {
	body := "Country Name,Country Code,Indicator Name,Indicator Code,2018,2019,2020\n" +
		"A,AAA,X,X.Y,10,20,\n" +
		"B,BBB,X,X.Y,,,\n"

	byYear, _, err := newTestReader().LoadFromReader(strings.NewReader(preamble + body))
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, byYear.Countries())
	assert.Equal(t, []int{2018, 2019}, byYear.Years(), "2020 is missing for every surviving country")
}

func TestYearKeptWhenAnyCountryReports(t *testing.T) {
	body := "Country Name,Country Code,Indicator Name,Indicator Code,2018,2019\n" +
		"A,AAA,X,X.Y,,1\n" +
		"B,BBB,X,X.Y,2,\n"

	byYear, _, err := newTestReader().LoadFromReader(strings.NewReader(preamble + body))
	require.NoError(t, err)

	assert.Equal(t, []int{2018, 2019}, byYear.Years())
	a, err := byYear.Country("A")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(a[0]))
	assert.Equal(t, 1.0, a[1])
}

func TestTrailingEmptyColumnIsDropped(t *testing.T) {
	export := testkit.Export{
		IndicatorName: "Some Indicator",
		IndicatorCode: "SI.CODE",
		Years:         []string{"2018", "2019", ""},
		Rows: []testkit.ExportRow{
			{Country: "A", Code: "AAA", Cells: []string{"1", "2", ""}},
			{Country: "B", Code: "BBB", Cells: []string{"3", "NA", ""}},
		},
	}

	byYear, byCountry, err := newTestReader().LoadFromReader(strings.NewReader(export.Render()))
	require.NoError(t, err)

	assert.Equal(t, []int{2018, 2019}, byYear.Years())
	for _, label := range byCountry.ColumnLabels() {
		assert.NotContains(t, MetadataColumns, label)
	}
	for _, label := range byYear.ColumnLabels() {
		assert.NotContains(t, MetadataColumns, label)
	}
}

func TestNonYearLabelFailsLoudly(t *testing.T) {
	err := load(t, "Country Name,Country Code,Indicator Name,Indicator Code,2018,Notes\n"+
		"A,AAA,X,X.Y,1,2\n")

	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Notes")
}

func TestMissingColumnIsSchemaMismatch(t *testing.T) {
	for _, column := range append([]string{ColumnCountryName}, MetadataColumns...) {
		header := strings.Replace("Country Name,Country Code,Indicator Name,Indicator Code,2018", column, "Other", 1)
		err := load(t, header+"\nA,AAA,X,X.Y,1\n")

		require.Error(t, err, column)
		assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err), column)
		assert.Contains(t, err.Error(), column)
	}
}

func TestWrongPreambleIsSchemaMismatch(t *testing.T) {
	body := "Country Name,Country Code,Indicator Name,Indicator Code,2018\nA,AAA,X,X.Y,1\n"

	_, _, err := newTestReader().LoadFromReader(strings.NewReader(body))
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))

	_, _, err = newTestReader().LoadFromReader(strings.NewReader("one\ntwo\n"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))
}

func TestMalformedCellIsReported(t *testing.T) {
	err := load(t, "Country Name,Country Code,Indicator Name,Indicator Code,2018,2019\n"+
		"A,AAA,X,X.Y,1,lots\n")

	require.Error(t, err)
	assert.Equal(t, errors.CodeMalformedCell, errors.GetCode(err))
	assert.True(t, errors.IsBadFile(err))
	assert.Contains(t, err.Error(), "lots")
	assert.Contains(t, err.Error(), "2019")
}

func TestDuplicateCountryIsRejected(t *testing.T) {
	err := load(t, "Country Name,Country Code,Indicator Name,Indicator Code,2018\n"+
		"A,AAA,X,X.Y,1\n"+
		"A,AAB,X,X.Y,2\n")

	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaMismatch, errors.GetCode(err))
	assert.Contains(t, err.Error(), "duplicate")
}

func TestBlankFillerRowsMayRepeat(t *testing.T) {
	body := "Country Name,Country Code,Indicator Name,Indicator Code,2018,2019\n" +
		"A,AAA,X,X.Y,1,2\n" +
		",,,,,\n" +
		",,,,,\n" +
		"B,BBB,X,X.Y,,\n" +
		"B,BBB,X,X.Y,,\n"

	byYear, _, err := newTestReader().LoadFromReader(strings.NewReader(preamble + body))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, byYear.Countries())
}

func TestEveryObservationMissingIsNoData(t *testing.T) {
	err := load(t, "Country Name,Country Code,Indicator Name,Indicator Code,2018\n"+
		"A,AAA,X,X.Y,\n")

	require.Error(t, err)
	assert.Equal(t, errors.CodeNoData, errors.GetCode(err))
}

func TestMissingFileIsIOFailure(t *testing.T) {
	_, _, err := newTestReader().Load(filepath.Join(t.TempDir(), "absent.csv"))

	require.Error(t, err)
	assert.Equal(t, errors.CodeIO, errors.GetCode(err))
	assert.True(t, errors.IsBadFile(err))
}

func TestLoadIsDeterministic(t *testing.T) {
	path, err := testkit.Generate(testkit.ElectricityConfig("India", "China", "Brazil")).Write(t.TempDir(), "elec.csv")
	require.NoError(t, err)

	reader := newTestReader()
	first, firstT, err := reader.Load(path)
	require.NoError(t, err)
	second, secondT, err := reader.Load(path)
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
	assert.Equal(t, firstT.Fingerprint(), secondT.Fingerprint())
}

func TestLoadedTablesAreTransposes(t *testing.T) {
	path, err := testkit.Generate(testkit.EmissionsConfig("India", "China")).Write(t.TempDir(), "co2.csv")
	require.NoError(t, err)

	byYear, byCountry, err := newTestReader().Load(path)
	require.NoError(t, err)

	r, c := byYear.Dims()
	cr, cc := byCountry.Dims()
	require.Equal(t, r, cc)
	require.Equal(t, c, cr)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			assert.Equal(t, math.Float64bits(byYear.At(i, j)), math.Float64bits(byCountry.At(j, i)))
		}
	}
	assert.Equal(t, byYear.Fingerprint(), byCountry.T().Fingerprint())

	// 1988, 2020 and 2021 are reported by nobody in the emissions fixture.
	years := byYear.Years()
	assert.Equal(t, 1989, years[0])
	assert.Equal(t, 2019, years[len(years)-1])
}

func TestNoFullyMissingRowOrColumnSurvives(t *testing.T) {
	body := "Country Name,Country Code,Indicator Name,Indicator Code,2017,2018,2019\n" +
		"A,AAA,X,X.Y,,1,\n" +
		"B,BBB,X,X.Y,,,2\n" +
		"C,CCC,X,X.Y,,,\n"

	byYear, _, err := newTestReader().LoadFromReader(strings.NewReader(preamble + body))
	require.NoError(t, err)

	r, c := byYear.Dims()
	for i := 0; i < r; i++ {
		present := false
		for j := 0; j < c; j++ {
			present = present || !math.IsNaN(byYear.At(i, j))
		}
		assert.True(t, present, "row %d", i)
	}
	for j := 0; j < c; j++ {
		present := false
		for i := 0; i < r; i++ {
			present = present || !math.IsNaN(byYear.At(i, j))
		}
		assert.True(t, present, "column %d", j)
	}
}

func TestParseYear(t *testing.T) {
	year, err := ParseYear("1990")
	require.NoError(t, err)
	assert.Equal(t, 1990, year)

	for _, label := range []string{"", "90", "19900", "year", "Unnamed: 67"} {
		_, err := ParseYear(label)
		assert.Error(t, err, label)
	}
}
