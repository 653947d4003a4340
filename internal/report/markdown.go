package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"indicatorlab/internal/analysis"
)

// Markdown renders the report as a standalone document
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Electricity access and CO2 emissions\n\n")
	b.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))

	for _, s := range r.Indicators {
		b.WriteString(fmt.Sprintf("## %s\n\n", s.Title))
		b.WriteString(fmt.Sprintf("Source: `%s` (%s), %d to %d, %d countries, fingerprint `%s`\n\n",
			s.Source, s.Unit, s.FirstYear, s.LastYear, len(s.ByCountry), s.Fingerprint.Short()))

		b.WriteString(fmt.Sprintf("### %s\n\n", strings.TrimSuffix(wholeWorldHeading(s), ":")))
		header := append([]string{"country"}, describeColumns...)
		writeTable(&b, header, describeRows(s))

		b.WriteString(fmt.Sprintf("### %s\n\n", strings.TrimSuffix(yearRangeHeading(s), ":")))
		header[0] = "year"
		var yearRows [][]string
		for _, y := range s.ByYear {
			yearRows = append(yearRows, describeRow(y))
		}
		writeTable(&b, header, yearRows)

		b.WriteString(fmt.Sprintf("### %s\n\n", strings.TrimSuffix(selectedHeading(s), ":")))
		var selected [][]string
		for _, c := range s.Selected {
			selected = append(selected, []string{c.Country, FormatValue(c.Mean), FormatValue(c.Median), FormatValue(c.Std)})
		}
		writeTable(&b, []string{"country", "mean", "median", "std dev"}, selected)

		if s.Decades != nil {
			b.WriteString("### Decade means\n\n")
			header := []string{"country"}
			for _, d := range s.Decades.Decades {
				header = append(header, DecadeLabel(d))
			}
			var rows [][]string
			for c, country := range s.Decades.Countries {
				row := []string{country}
				for _, v := range s.Decades.Means[c] {
					row = append(row, FormatValue(v))
				}
				rows = append(rows, row)
			}
			writeTable(&b, header, rows)
		}
	}

	b.WriteString("## Correlations\n\n")
	b.WriteString(fmt.Sprintf("### %s\n\n", strings.TrimSuffix(overTimeHeading, ":")))
	writeCorrelations(&b, "year", r.OverTime)
	b.WriteString(fmt.Sprintf("### %s\n\n", strings.TrimSuffix(byCountryHeading, ":")))
	writeCorrelations(&b, "country", r.ByCountry)

	return b.String()
}

// HTML converts the markdown rendering into a complete HTML page
func (r *Report) HTML() []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Electricity access and CO2 emissions",
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(r.Markdown()), p, renderer)
}

// DecadeLabel renders 1990 as "1990s"
func DecadeLabel(decade int) string {
	return strconv.Itoa(decade) + "s"
}

func describeRows(s IndicatorSection) [][]string {
	rows := make([][]string, 0, len(s.ByCountry))
	for _, c := range s.ByCountry {
		rows = append(rows, describeRow(c))
	}
	return rows
}

func writeCorrelations(b *strings.Builder, label string, rows []analysis.Correlation) {
	var cells [][]string
	for _, c := range rows {
		cells = append(cells, []string{c.Label, FormatValue(c.Coefficient), strconv.Itoa(c.N), FormatValue(c.PValue)})
	}
	writeTable(b, []string{label, "r", "n", "p"}, cells)
}

func writeTable(b *strings.Builder, header []string, rows [][]string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(escapeCells(header), " | "))
	b.WriteString(" |\n|")
	for range header {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("| ")
		b.WriteString(strings.Join(escapeCells(row), " | "))
		b.WriteString(" |\n")
	}
	b.WriteString("\n")
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(strings.ReplaceAll(c, "\n", " "), "|", "/")
	}
	return out
}
