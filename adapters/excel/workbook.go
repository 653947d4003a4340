// Package excel exports analysis results as an xlsx workbook.
package excel

import (
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"indicatorlab/domain/indicator"
	"indicatorlab/internal"
	"indicatorlab/internal/analysis"
	"indicatorlab/internal/errors"
	"indicatorlab/internal/profiling"
	"indicatorlab/internal/report"
)

// maxSheetName is the longest sheet name Excel accepts
const maxSheetName = 31

const runSheet = "Run"

// WorkbookWriter lays a report out as one sheet per table
type WorkbookWriter struct {
	logger *internal.Logger
}

// NewWorkbookWriter creates a writer; a nil logger discards output
func NewWorkbookWriter(logger *internal.Logger) *WorkbookWriter {
	if logger == nil {
		logger = internal.Discard
	}
	return &WorkbookWriter{logger: logger}
}

// Write saves r to path, creating parent directories
func (w *WorkbookWriter) Write(r *report.Report, path string) error {
	if path == "" {
		return errors.InvalidInput("workbook path is required")
	}
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", runSheet); err != nil {
		return errors.RenderError(path, err)
	}
	b := &sheetBuilder{f: f}

	b.rows(runSheet, [][]interface{}{
		{"Run ID", r.RunID.String()},
		{"Generated", time.Now().UTC().Format(time.RFC3339)},
	})
	b.rows(runSheet, [][]interface{}{{}})
	b.rows(runSheet, [][]interface{}{{"Indicator", "Source", "Unit", "First year", "Last year", "Countries", "Fingerprint"}})
	for _, s := range r.Indicators {
		b.rows(runSheet, [][]interface{}{{s.Title, s.Source, s.Unit, s.FirstYear, s.LastYear, len(s.ByCountry), s.Fingerprint.String()}})
	}

	for _, s := range r.Indicators {
		b.summaries(sheetName(s.Short+" by country"), "Country", s.ByCountry)
		b.summaries(sheetName(s.Short+" by year"), "Year", s.ByYear)

		selected := sheetName(s.Short + " selected")
		b.sheet(selected)
		b.rows(selected, [][]interface{}{{"Country", "Mean", "Median", "Std Dev"}})
		for _, c := range s.Selected {
			b.rows(selected, [][]interface{}{{c.Country, cell(c.Mean), cell(c.Median), cell(c.Std)}})
		}

		if s.Decades != nil {
			decades := sheetName(s.Short + " by decade")
			b.sheet(decades)
			header := []interface{}{"Country"}
			for _, d := range s.Decades.Decades {
				header = append(header, report.DecadeLabel(d))
			}
			b.rows(decades, [][]interface{}{header})
			for c, country := range s.Decades.Countries {
				row := []interface{}{country}
				for _, v := range s.Decades.Means[c] {
					row = append(row, cell(v))
				}
				b.rows(decades, [][]interface{}{row})
			}
		}
	}

	b.correlations("Correlation over time", "Year", r.OverTime)
	b.correlations("Correlation by country", "Country", r.ByCountry)

	if b.err != nil {
		return errors.RenderError(path, b.err)
	}
	if err := save(f, path); err != nil {
		return err
	}
	w.logger.Info("[Workbook] wrote %s with %d sheets in %.2fms",
		path, len(f.GetSheetList()), float64(time.Since(start).Nanoseconds())/1e6)
	return nil
}

// WriteTable saves one orientation of an indicator table as a single sheet
func (w *WorkbookWriter) WriteTable(t indicator.Table, sheet, path string) error {
	if path == "" {
		return errors.InvalidInput("workbook path is required")
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet = sheetName(sheet)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.RenderError(path, err)
	}
	b := &sheetBuilder{f: f}

	header := []interface{}{""}
	for _, label := range t.ColumnLabels() {
		header = append(header, label)
	}
	b.rows(sheet, [][]interface{}{header})

	rows, cols := t.Dims()
	labels := t.RowLabels()
	for i := 0; i < rows; i++ {
		row := make([]interface{}, 0, cols+1)
		row = append(row, labels[i])
		for j := 0; j < cols; j++ {
			row = append(row, cell(t.At(i, j)))
		}
		b.rows(sheet, [][]interface{}{row})
	}
	if b.err != nil {
		return errors.RenderError(path, b.err)
	}
	if err := save(f, path); err != nil {
		return err
	}
	w.logger.Debug("[Workbook] wrote %dx%d table to %s", rows, cols, path)
	return nil
}

// sheetBuilder appends rows per sheet and keeps the first error
type sheetBuilder struct {
	f    *excelize.File
	next map[string]int
	err  error
}

func (b *sheetBuilder) sheet(name string) {
	if b.err != nil {
		return
	}
	_, b.err = b.f.NewSheet(name)
}

func (b *sheetBuilder) rows(sheet string, rows [][]interface{}) {
	if b.next == nil {
		b.next = make(map[string]int)
	}
	for _, row := range rows {
		if b.err != nil {
			return
		}
		b.next[sheet]++
		var axis string
		axis, b.err = excelize.CoordinatesToCellName(1, b.next[sheet])
		if b.err != nil {
			return
		}
		values := row
		b.err = b.f.SetSheetRow(sheet, axis, &values)
	}
}

func (b *sheetBuilder) summaries(sheet, label string, rows []profiling.ColumnSummary) {
	b.sheet(sheet)
	b.rows(sheet, [][]interface{}{{label, "count", "mean", "std", "min", "25%", "50%", "75%", "max", "skew", "kurtosis"}})
	for _, s := range rows {
		b.rows(sheet, [][]interface{}{{
			s.Label, s.Count, cell(s.Mean), cell(s.Std), cell(s.Min), cell(s.Q25),
			cell(s.Median), cell(s.Q75), cell(s.Max), cell(s.Skewness), cell(s.Kurtosis),
		}})
	}
}

func (b *sheetBuilder) correlations(sheet, label string, rows []analysis.Correlation) {
	b.sheet(sheet)
	b.rows(sheet, [][]interface{}{{label, "r", "n", "p"}})
	for _, c := range rows {
		b.rows(sheet, [][]interface{}{{c.Label, cell(c.Coefficient), c.N, cell(c.PValue)}})
	}
}

// cell leaves missing values as empty cells
func cell(v float64) interface{} {
	if indicator.IsMissing(v) {
		return nil
	}
	return v
}

func sheetName(name string) string {
	if len(name) > maxSheetName {
		return name[:maxSheetName]
	}
	return name
}

func save(f *excelize.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IOFailure(path, err)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.IOFailure(path, err)
	}
	return nil
}
