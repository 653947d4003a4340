package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"indicatorlab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig
	Output  OutputConfig
	Logging LoggingConfig
}

// DataConfig holds the input files and the country subset under study
type DataConfig struct {
	ElectricityFile string
	EmissionsFile   string
	Countries       []string
}

// OutputConfig holds where rendered artifacts go. Empty file names disable
// the corresponding artifact.
type OutputConfig struct {
	Dir                  string
	DPI                  int
	TimeSeriesChart      string
	ElectricityBarsChart string
	EmissionsBarsChart   string
	WorkbookFile         string
	HTMLReport           string
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string
}

// Defaults used when the environment does not say otherwise
const (
	DefaultElectricityFile = "access to electricity.csv"
	DefaultEmissionsFile   = "co2 emissions.csv"
	DefaultDPI             = 300
)

// DefaultCountries is the country subset compared in the per-country sections
var DefaultCountries = []string{"United States", "India", "China", "Brazil"}

// Default returns the stock configuration: the two World Bank exports and four countries
func Default() *Config {
	return &Config{
		Data: DataConfig{
			ElectricityFile: DefaultElectricityFile,
			EmissionsFile:   DefaultEmissionsFile,
			Countries:       append([]string(nil), DefaultCountries...),
		},
		Output: OutputConfig{
			Dir:                  ".",
			DPI:                  DefaultDPI,
			TimeSeriesChart:      "timeseries.png",
			ElectricityBarsChart: "electricity_by_decade.png",
			EmissionsBarsChart:   "emissions_by_decade.png",
		},
		Logging: LoggingConfig{Level: "INFO"},
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := Default()

	config.Data.ElectricityFile = getEnvOrDefault("ELECTRICITY_FILE", config.Data.ElectricityFile)
	config.Data.EmissionsFile = getEnvOrDefault("EMISSIONS_FILE", config.Data.EmissionsFile)
	if countries := os.Getenv("COUNTRIES"); countries != "" {
		config.Data.Countries = ParseCountries(countries)
	}

	config.Output.Dir = getEnvOrDefault("OUTPUT_DIR", config.Output.Dir)
	config.Output.DPI = getEnvIntOrDefault("CHART_DPI", config.Output.DPI)
	config.Output.TimeSeriesChart = getEnvOrDefault("TIMESERIES_CHART", config.Output.TimeSeriesChart)
	config.Output.ElectricityBarsChart = getEnvOrDefault("ELECTRICITY_BARS_CHART", config.Output.ElectricityBarsChart)
	config.Output.EmissionsBarsChart = getEnvOrDefault("EMISSIONS_BARS_CHART", config.Output.EmissionsBarsChart)
	config.Output.WorkbookFile = getEnvOrDefault("WORKBOOK_FILE", "")
	config.Output.HTMLReport = getEnvOrDefault("HTML_REPORT", "")

	config.Logging.Level = getEnvOrDefault("LOG_LEVEL", config.Logging.Level)

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks the fields a run cannot proceed without
func (c *Config) Validate() error {
	if c.Data.ElectricityFile == "" {
		return errors.ConfigInvalid("electricity file is required")
	}
	if c.Data.EmissionsFile == "" {
		return errors.ConfigInvalid("emissions file is required")
	}
	if len(c.Data.Countries) == 0 {
		return errors.ConfigInvalid("at least one country is required")
	}
	seen := make(map[string]bool, len(c.Data.Countries))
	for _, country := range c.Data.Countries {
		if country == "" {
			return errors.ConfigInvalid("country names must not be empty")
		}
		if seen[country] {
			return errors.ConfigInvalid("country listed twice: " + country)
		}
		seen[country] = true
	}
	if c.Output.DPI <= 0 {
		return errors.ConfigInvalid("chart DPI must be positive")
	}
	if c.Output.Dir == "" {
		return errors.ConfigInvalid("output directory is required")
	}
	return nil
}

// OutputPath resolves an artifact name against the output directory. It
// returns "" for a disabled artifact.
func (c *Config) OutputPath(name string) string {
	if name == "" {
		return ""
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Output.Dir, name)
}

// ParseCountries splits a comma separated country list
func ParseCountries(value string) []string {
	var countries []string
	for _, part := range strings.Split(value, ",") {
		if name := strings.TrimSpace(part); name != "" {
			countries = append(countries, name)
		}
	}
	return countries
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
