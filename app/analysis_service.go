package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"indicatorlab/adapters/charts"
	"indicatorlab/adapters/excel"
	"indicatorlab/adapters/worldbank"
	"indicatorlab/domain/core"
	"indicatorlab/domain/indicator"
	"indicatorlab/internal"
	"indicatorlab/internal/analysis"
	"indicatorlab/internal/config"
	"indicatorlab/internal/errors"
	"indicatorlab/internal/profiling"
	"indicatorlab/internal/report"
	"indicatorlab/ports"
)

// AnalysisService runs the electricity and emissions analysis end to end
type AnalysisService struct {
	loader   ports.IndicatorLoader
	profiler *profiling.DataProfiler
	workbook ports.ReportWriter
	logger   *internal.Logger
	out      io.Writer
}

// RunResult describes what one run computed and wrote
type RunResult struct {
	RunID       core.RunID           `json:"run_id"`
	Report      *report.Report       `json:"-"`
	Fingerprint map[string]core.Hash `json:"fingerprints"`
	Outputs     []string             `json:"outputs"`
	RuntimeMs   int64                `json:"runtime_ms"`
}

// NewAnalysisService wires the service; out receives the console report and
// may be nil to suppress it
func NewAnalysisService(logger *internal.Logger, out io.Writer) *AnalysisService {
	if logger == nil {
		logger = internal.Discard
	}
	return NewAnalysisServiceWith(worldbank.NewReader(nil, logger), excel.NewWorkbookWriter(logger), logger, out)
}

// NewAnalysisServiceWith wires the service around custom ports
func NewAnalysisServiceWith(loader ports.IndicatorLoader, workbook ports.ReportWriter, logger *internal.Logger, out io.Writer) *AnalysisService {
	if logger == nil {
		logger = internal.Discard
	}
	if out == nil {
		out = io.Discard
	}
	return &AnalysisService{
		loader:   loader,
		profiler: profiling.NewDataProfiler(),
		workbook: workbook,
		logger:   logger,
		out:      out,
	}
}

// Run is the package-level entry point used by the binaries
func Run(ctx context.Context, cfg *config.Config, logger *internal.Logger, out io.Writer) (*RunResult, error) {
	return NewAnalysisService(logger, out).Run(ctx, cfg)
}

// loaded holds both orientations of one indicator file
type loaded struct {
	byCountry *indicator.CountryYearTable
	byYear    *indicator.YearCountryTable
}

// Run loads both files, computes every statistic, renders charts and
// writes the report artifacts. Any failure aborts the run.
func (s *AnalysisService) Run(ctx context.Context, cfg *config.Config) (*RunResult, error) {
	startTime := time.Now()
	if cfg == nil {
		return nil, errors.ConfigInvalid("configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runID := core.NewRunID()
	s.logger.Info("[Run] starting %s", runID)

	electricity, err := s.load(cfg.Data.ElectricityFile)
	if err != nil {
		return nil, err
	}
	emissions, err := s.load(cfg.Data.EmissionsFile)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	electricitySection, err := s.section(electricity, cfg.Data.Countries, "Access to electricity", "Electricity",
		"% of population", cfg.Data.ElectricityFile)
	if err != nil {
		return nil, errors.Wrap(err, "electricity statistics")
	}
	emissionsSection, err := s.section(emissions, cfg.Data.Countries, "CO2 emissions", "Emissions",
		"metric tons per capita", cfg.Data.EmissionsFile)
	if err != nil {
		return nil, errors.Wrap(err, "emissions statistics")
	}

	rep := &report.Report{
		RunID:      runID,
		Indicators: []report.IndicatorSection{*electricitySection, *emissionsSection},
		OverTime:   analysis.CorrWith(electricity.byYear, emissions.byYear),
		ByCountry:  analysis.CorrWith(electricity.byCountry, emissions.byCountry),
	}
	if best, ok := analysis.Strongest(rep.ByCountry); ok {
		s.logger.Debug("[Run] strongest country correlation: %s r=%.3f", best.Label, best.Coefficient)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &RunResult{
		RunID:  runID,
		Report: rep,
		Fingerprint: map[string]core.Hash{
			cfg.Data.ElectricityFile: electricity.byCountry.Fingerprint(),
			cfg.Data.EmissionsFile:   emissions.byCountry.Fingerprint(),
		},
	}

	if err := report.WriteText(s.out, rep); err != nil {
		return nil, errors.RenderError("console report", err)
	}

	renderer := charts.NewRenderer(cfg.Output.DPI, s.logger)
	if path := cfg.OutputPath(cfg.Output.TimeSeriesChart); path != "" {
		err := renderer.TimeSeriesPanel(
			charts.ElectricitySeries(electricity.byCountry),
			charts.EmissionsSeries(emissions.byCountry),
			cfg.Data.Countries,
			path,
		)
		if err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, path)
	}

	bars := []struct {
		name    string
		section *report.IndicatorSection
	}{
		{cfg.Output.ElectricityBarsChart, electricitySection},
		{cfg.Output.EmissionsBarsChart, emissionsSection},
	}
	for _, b := range bars {
		path := cfg.OutputPath(b.name)
		if path == "" {
			continue
		}
		if err := renderer.GroupedBars(decadeBars(b.section), path); err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, path)
	}

	if path := cfg.OutputPath(cfg.Output.WorkbookFile); path != "" {
		if err := s.workbook.Write(rep, path); err != nil {
			return nil, err
		}
		result.Outputs = append(result.Outputs, path)
	}

	if path := cfg.OutputPath(cfg.Output.HTMLReport); path != "" {
		if err := writeFile(path, rep.HTML()); err != nil {
			return nil, err
		}
		s.logger.Info("[Run] wrote HTML report %s", path)
		result.Outputs = append(result.Outputs, path)
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	s.logger.Info("[Run] %s finished in %dms with %d outputs", runID, result.RuntimeMs, len(result.Outputs))
	return result, nil
}

// Describe loads one file and returns its section without correlations
func (s *AnalysisService) Describe(path string) (*report.IndicatorSection, error) {
	tables, err := s.load(path)
	if err != nil {
		return nil, err
	}
	title := filepath.Base(path)
	return s.section(tables, nil, title, title, "", path)
}

func (s *AnalysisService) load(path string) (*loaded, error) {
	byCountry, byYear, err := s.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return &loaded{byCountry: byCountry, byYear: byYear}, nil
}

// section computes every per-indicator statistic. A nil country list skips
// the subset tables.
func (s *AnalysisService) section(t *loaded, countries []string, title, short, unit, source string) (*report.IndicatorSection, error) {
	byCountry, err := s.profiler.Describe(t.byCountry)
	if err != nil {
		return nil, err
	}
	byYear, err := s.profiler.Describe(t.byYear)
	if err != nil {
		return nil, err
	}

	years := t.byCountry.Years()
	section := &report.IndicatorSection{
		Title:       title,
		Short:       short,
		Unit:        unit,
		Source:      source,
		FirstYear:   years[0],
		LastYear:    years[len(years)-1],
		Fingerprint: t.byCountry.Fingerprint(),
		ByCountry:   byCountry,
		ByYear:      byYear,
	}
	if len(countries) == 0 {
		return section, nil
	}

	if section.Selected, err = s.profiler.CentralTendency(t.byCountry, countries); err != nil {
		return nil, err
	}
	if section.Decades, err = analysis.DecadeMeans(t.byCountry, countries); err != nil {
		return nil, err
	}
	return section, nil
}

// decadeBars turns decade means into one bar series per country
func decadeBars(s *report.IndicatorSection) charts.BarGroups {
	groups := charts.BarGroups{
		Title:  s.Title + " by decade",
		YLabel: s.Unit,
		Series: s.Decades.Countries,
		Values: s.Decades.Means,
	}
	for _, d := range s.Decades.Decades {
		groups.Categories = append(groups.Categories, report.DecadeLabel(d))
	}
	return groups
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.IOFailure(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.IOFailure(path, err)
	}
	return nil
}
