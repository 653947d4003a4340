package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"indicatorlab/adapters/excel"
	"indicatorlab/adapters/worldbank"
	"indicatorlab/app"
	"indicatorlab/domain/indicator"
	"indicatorlab/internal"
	"indicatorlab/internal/config"
	"indicatorlab/internal/errors"
	"indicatorlab/internal/report"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "indicatorlab",
		Short:         "Exploratory analysis of World Bank indicator exports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (ERROR, WARN, INFO, DEBUG, TRACE); overrides LOG_LEVEL")

	logger := func(cfg *config.Config) *internal.Logger {
		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		return internal.NewLogger(internal.ParseLogLevel(level))
	}

	rootCmd.AddCommand(
		newRunCmd(logger),
		newDescribeCmd(logger),
		newReshapeCmd(logger),
	)
	return rootCmd
}

type loggerFactory func(cfg *config.Config) *internal.Logger

func newRunCmd(logger loggerFactory) *cobra.Command {
	var (
		electricity string
		emissions   string
		countries   string
		outputDir   string
		dpi         int
		workbook    string
		htmlReport  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the electricity access and CO2 emissions analysis",
		Long: `Load both indicator files, print summary statistics and correlations,
and render the time-series and decade charts.

Example: indicatorlab run --countries "India,China" --output-dir out --workbook report.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("electricity") {
				cfg.Data.ElectricityFile = electricity
			}
			if flags.Changed("emissions") {
				cfg.Data.EmissionsFile = emissions
			}
			if flags.Changed("countries") {
				cfg.Data.Countries = config.ParseCountries(countries)
			}
			if flags.Changed("output-dir") {
				cfg.Output.Dir = outputDir
			}
			if flags.Changed("dpi") {
				cfg.Output.DPI = dpi
			}
			if flags.Changed("workbook") {
				cfg.Output.WorkbookFile = workbook
			}
			if flags.Changed("html") {
				cfg.Output.HTMLReport = htmlReport
			}

			result, err := app.Run(cmd.Context(), cfg, logger(cfg), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\nRun %s finished in %dms\n", result.RunID, result.RuntimeMs)
			for _, path := range result.Outputs {
				fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&electricity, "electricity", "", "Access to electricity export (CSV)")
	cmd.Flags().StringVar(&emissions, "emissions", "", "CO2 emissions export (CSV)")
	cmd.Flags().StringVar(&countries, "countries", "", "Comma separated countries to compare")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for charts and reports")
	cmd.Flags().IntVar(&dpi, "dpi", config.DefaultDPI, "Chart resolution")
	cmd.Flags().StringVar(&workbook, "workbook", "", "Write an xlsx workbook with this name")
	cmd.Flags().StringVar(&htmlReport, "html", "", "Write an HTML report with this name")

	return cmd
}

func newDescribeCmd(logger loggerFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [file]",
		Short: "Print summary statistics of one indicator export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := app.NewAnalysisService(logger(config.Default()), nil).Describe(args[0])
			if err != nil {
				return err
			}
			return report.WriteDescribe(cmd.OutOrStdout(), *section)
		},
	}
}

func newReshapeCmd(logger loggerFactory) *cobra.Command {
	var orientation string
	var xlsx string

	cmd := &cobra.Command{
		Use:   "reshape [file]",
		Short: "Print the cleaned indicator table as CSV",
		Long: `Load one export, drop empty countries and years, and print it in the
requested orientation: "years" puts one year per row, "countries" one country per row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger(config.Default())
			byCountry, byYear, err := worldbank.NewReader(nil, log).Load(args[0])
			if err != nil {
				return err
			}

			var table indicator.Table
			switch orientation {
			case "years":
				table = byCountry
			case "countries":
				table = byYear
			default:
				return errors.InvalidInput(`orientation must be "years" or "countries", got ` + strconv.Quote(orientation))
			}

			if xlsx != "" {
				return excel.NewWorkbookWriter(log).WriteTable(table, orientation, xlsx)
			}
			return writeCSV(cmd.OutOrStdout(), table)
		},
	}

	cmd.Flags().StringVar(&orientation, "orientation", "years", `Row orientation: "years" or "countries"`)
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Write the table to an xlsx file instead of stdout")
	return cmd
}

func writeCSV(w io.Writer, t indicator.Table) error {
	cw := csv.NewWriter(w)
	rows, cols := t.Dims()
	labels := t.RowLabels()

	record := append([]string{""}, t.ColumnLabels()...)
	if err := cw.Write(record); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		record = record[:0]
		record = append(record, labels[i])
		for j := 0; j < cols; j++ {
			v := t.At(i, j)
			if indicator.IsMissing(v) {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
