// Package worldbank reads World Bank indicator exports into indicator tables.
//
// An export has a fixed preamble ("Data Source", "Last Updated Date" and blank
// lines), then a header row
//
//	Country Name,Country Code,Indicator Name,Indicator Code,1960,1961,...
//
// and one row per country.
package worldbank

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"indicatorlab/domain/indicator"
	"indicatorlab/internal"
	"indicatorlab/internal/errors"
)

// Column names of a World Bank export
const (
	ColumnCountryName   = "Country Name"
	ColumnCountryCode   = "Country Code"
	ColumnIndicatorName = "Indicator Name"
	ColumnIndicatorCode = "Indicator Code"
)

// MetadataColumns are present in every export and discarded on load.
var MetadataColumns = []string{ColumnCountryCode, ColumnIndicatorName, ColumnIndicatorCode}

// Options controls parsing of an export.
type Options struct {
	PreambleLines int      // raw lines before the header row
	MissingTokens []string // cell texts read as a missing observation
}

// DefaultOptions matches the layout of the World Development Indicators download.
func DefaultOptions() *Options {
	return &Options{
		PreambleLines: 4,
		MissingTokens: []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "#N/A", ".."},
	}
}

// Reader loads indicator files.
type Reader struct {
	opts    *Options
	missing map[string]bool
	logger  *internal.Logger
}

// NewReader creates a reader. A nil opts means DefaultOptions, a nil logger
// means internal.DefaultLogger.
func NewReader(opts *Options, logger *internal.Logger) *Reader {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	missing := make(map[string]bool, len(opts.MissingTokens))
	for _, token := range opts.MissingTokens {
		missing[token] = true
	}
	return &Reader{opts: opts, missing: missing, logger: logger}
}

// Load reads path with the default options.
func Load(path string) (*indicator.CountryYearTable, *indicator.YearCountryTable, error) {
	return NewReader(nil, nil).Load(path)
}

// Load reads an export and returns the years x countries table and its transpose.
func (r *Reader) Load(path string) (*indicator.CountryYearTable, *indicator.YearCountryTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.IOFailure(path, err)
	}
	defer file.Close()

	start := time.Now()
	byYear, byCountry, err := r.LoadFromReader(file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "load %s", path)
	}

	years, countries := byYear.Dims()
	r.logger.Info("[Reshaper] %s loaded in %.2fms (%d years, %d countries)",
		path, float64(time.Since(start).Nanoseconds())/1e6, years, countries)
	return byYear, byCountry, nil
}

// LoadFromReader parses an export from src.
func (r *Reader) LoadFromReader(src io.Reader) (*indicator.CountryYearTable, *indicator.YearCountryTable, error) {
	buffered := bufio.NewReader(src)
	if err := r.skipPreamble(buffered); err != nil {
		return nil, nil, err
	}

	raw, err := r.readRaw(buffered)
	if err != nil {
		return nil, nil, err
	}

	before := len(raw.countries)
	raw.dropEmptyCountries()
	raw.dropEmptyYears()
	r.logger.Debug("[Reshaper] kept %d of %d countries and %d year columns", len(raw.countries), before, len(raw.labels))

	if len(raw.countries) == 0 || len(raw.labels) == 0 {
		return nil, nil, errors.NoData("every observation is missing")
	}

	byYear, err := raw.countryYearTable()
	if err != nil {
		return nil, nil, err
	}
	return byYear, byYear.T(), nil
}

// skipPreamble consumes raw lines, blank ones included. csv.Reader would skip
// blank lines on its own and miscount.
func (r *Reader) skipPreamble(src *bufio.Reader) error {
	for i := 0; i < r.opts.PreambleLines; i++ {
		if _, err := src.ReadString('\n'); err != nil {
			if err == io.EOF {
				return errors.SchemaMismatch(fmt.Sprintf("file ends inside the %d-line preamble", r.opts.PreambleLines))
			}
			return errors.WithCode(errors.CodeIO, err)
		}
	}
	return nil
}

// rawTable is the parsed export before cleaning: one row of cells per country,
// one label per year column.
type rawTable struct {
	labels    []string
	countries []string
	cells     [][]float64
}

func (r *Reader) readRaw(src io.Reader) (*rawTable, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.SchemaMismatch("no header row after the preamble")
	}
	if err != nil {
		return nil, csvError(err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	position := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := position[name]; !dup {
			position[name] = i
		}
	}
	nameIdx, ok := position[ColumnCountryName]
	if !ok {
		return nil, errors.SchemaMismatch(fmt.Sprintf("missing column %q", ColumnCountryName))
	}
	metadata := map[int]bool{nameIdx: true}
	for _, column := range MetadataColumns {
		idx, ok := position[column]
		if !ok {
			return nil, errors.SchemaMismatch(fmt.Sprintf("missing column %q", column))
		}
		metadata[idx] = true
	}

	raw := &rawTable{}
	var yearIdx []int
	for i, name := range header {
		if !metadata[i] {
			yearIdx = append(yearIdx, i)
			raw.labels = append(raw.labels, name)
		}
	}

	seen := make(map[string]bool)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if len(record) > len(header) {
			for _, extra := range record[len(header):] {
				if strings.TrimSpace(extra) != "" {
					return nil, errors.SchemaMismatch(fmt.Sprintf("data row %d has %d fields, header has %d", line, len(record), len(header)))
				}
			}
		}

		country := field(record, nameIdx)
		cells := make([]float64, len(yearIdx))
		for k, idx := range yearIdx {
			value, err := r.parseCell(field(record, idx))
			if err != nil {
				return nil, errors.MalformedCell(country, raw.labels[k], field(record, idx))
			}
			cells[k] = value
		}

		// Rows without observations are dropped later and may repeat freely.
		if anyPresent(cells) {
			if seen[country] {
				return nil, errors.SchemaMismatch(fmt.Sprintf("duplicate country name %q", country))
			}
			seen[country] = true
		}
		raw.countries = append(raw.countries, country)
		raw.cells = append(raw.cells, cells)
	}
	return raw, nil
}

func (r *Reader) parseCell(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if r.missing[trimmed] {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(trimmed, 64)
}

func (t *rawTable) dropEmptyCountries() {
	countries := t.countries[:0]
	cells := t.cells[:0]
	for i, row := range t.cells {
		if anyPresent(row) {
			countries = append(countries, t.countries[i])
			cells = append(cells, row)
		}
	}
	t.countries, t.cells = countries, cells
}

func (t *rawTable) dropEmptyYears() {
	var keep []int
	for j := range t.labels {
		for _, row := range t.cells {
			if !indicator.IsMissing(row[j]) {
				keep = append(keep, j)
				break
			}
		}
	}

	labels := make([]string, len(keep))
	for k, j := range keep {
		labels[k] = t.labels[j]
	}
	for i, row := range t.cells {
		kept := make([]float64, len(keep))
		for k, j := range keep {
			kept[k] = row[j]
		}
		t.cells[i] = kept
	}
	t.labels = labels
}

func (t *rawTable) countryYearTable() (*indicator.CountryYearTable, error) {
	years := make([]int, len(t.labels))
	for i, label := range t.labels {
		year, err := ParseYear(label)
		if err != nil {
			return nil, err
		}
		years[i] = year
	}

	values := mat.NewDense(len(years), len(t.countries), nil)
	for j, row := range t.cells {
		values.SetCol(j, row)
	}

	table, err := indicator.NewCountryYearTable(years, t.countries, values)
	if err != nil {
		return nil, errors.Wrap(errors.SchemaMismatch(err.Error()), "build year table")
	}
	return table, nil
}

// ParseYear parses a 4-digit year column label.
func ParseYear(label string) (int, error) {
	parsed, err := time.Parse("2006", label)
	if err != nil {
		return 0, errors.SchemaMismatch(fmt.Sprintf("column %q is not a 4-digit year", label))
	}
	return parsed.Year(), nil
}

func anyPresent(row []float64) bool {
	for _, v := range row {
		if !indicator.IsMissing(v) {
			return true
		}
	}
	return false
}

// field returns record[i], or "" for a short record.
func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func csvError(err error) error {
	return &errors.AppError{Code: errors.CodeSchemaMismatch, Message: "malformed CSV", Cause: err}
}
