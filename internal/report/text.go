package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"indicatorlab/internal/analysis"
	"indicatorlab/internal/profiling"
)

// Headings shared by the console and markdown renderings
func wholeWorldHeading(s IndicatorSection) string {
	return fmt.Sprintf("%s summary statistics for whole world:", s.Title)
}

func yearRangeHeading(s IndicatorSection) string {
	return fmt.Sprintf("%s summary statistics from %d to %d:", s.Title, s.FirstYear, s.LastYear)
}

func selectedHeading(s IndicatorSection) string {
	return fmt.Sprintf("%s statistics for a few countries:", s.Title)
}

const (
	overTimeHeading  = "Correlation between electricity access and CO2 emissions over time:"
	byCountryHeading = "Correlation between electricity access and CO2 emissions for world:"
)

var describeColumns = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

func describeRow(s profiling.ColumnSummary) []string {
	return []string{
		s.Label,
		strconv.Itoa(s.Count),
		FormatValue(s.Mean),
		FormatValue(s.Std),
		FormatValue(s.Min),
		FormatValue(s.Q25),
		FormatValue(s.Median),
		FormatValue(s.Q75),
		FormatValue(s.Max),
	}
}

// WriteText prints the report in the order the analysis produces it
func WriteText(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	p := &printer{w: tw}

	for _, s := range r.Indicators {
		p.heading(wholeWorldHeading(s))
		p.describe(s.ByCountry)
		p.heading(yearRangeHeading(s))
		p.describe(s.ByYear)
	}
	for _, s := range r.Indicators {
		p.heading(selectedHeading(s))
		p.selected(s.Selected)
	}
	p.heading(overTimeHeading)
	p.correlations(r.OverTime)
	p.heading(byCountryHeading)
	p.correlations(r.ByCountry)

	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

// WriteDescribe prints the two describe tables of one indicator
func WriteDescribe(w io.Writer, s IndicatorSection) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	p := &printer{w: tw}
	p.heading(wholeWorldHeading(s))
	p.describe(s.ByCountry)
	p.heading(yearRangeHeading(s))
	p.describe(s.ByYear)
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

// printer keeps the first write error so call sites stay linear
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) row(cells ...string) {
	for _, c := range cells {
		p.printf("%s\t", c)
	}
	p.printf("\n")
}

func (p *printer) heading(text string) {
	p.printf("\n%s\n", text)
}

func (p *printer) describe(rows []profiling.ColumnSummary) {
	p.row(append([]string{""}, describeColumns...)...)
	for _, s := range rows {
		p.row(describeRow(s)...)
	}
}

func (p *printer) selected(rows []profiling.CentralTendency) {
	p.row("", "Mean", "Median", "Std Dev")
	for _, s := range rows {
		p.row(s.Country, FormatValue(s.Mean), FormatValue(s.Median), FormatValue(s.Std))
	}
}

func (p *printer) correlations(rows []analysis.Correlation) {
	p.row("", "r", "n", "p")
	for _, c := range rows {
		p.row(c.Label, FormatValue(c.Coefficient), strconv.Itoa(c.N), FormatValue(c.PValue))
	}
}
