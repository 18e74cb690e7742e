package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"expenses/internal/chart"
	"expenses/internal/log"
)

type Config struct {
	// Ledger file
	LedgerFile string

	// Display
	CurrencyUnit string

	// Chart
	ChartFormat string
	ChartOutput string
	ChartWidth  int

	// Logging
	LogLevel string
	LogFile  string
}

func Load() *Config {
	cfg := &Config{
		LedgerFile:   getEnv("EXPENSE_FILE", "expense.json"),
		CurrencyUnit: getEnv("CURRENCY_UNIT", "Rs."),

		ChartFormat: strings.ToLower(getEnv("CHART_FORMAT", chart.FormatText)),
		ChartOutput: getEnv("CHART_OUTPUT", "expenses_by_category.png"),
		ChartWidth:  getEnvInt("CHART_WIDTH", chart.DefaultWidth),

		LogLevel: getEnv("LOG_LEVEL", "warn"),
		LogFile:  getEnv("LOG_FILE", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate ledger file
	if strings.TrimSpace(c.LedgerFile) == "" {
		errors = append(errors, "expense file path cannot be empty")
	} else {
		if info, err := os.Stat(c.LedgerFile); err == nil && info.IsDir() {
			errors = append(errors, fmt.Sprintf("expense file '%s' is a directory", c.LedgerFile))
		}
		// Check if directory exists or can be created
		dir := filepath.Dir(c.LedgerFile)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create expense file directory '%s': %v", dir, err))
				}
			}
		}
	}

	if strings.TrimSpace(c.CurrencyUnit) == "" {
		errors = append(errors, "currency unit cannot be empty")
	}

	// Validate chart configuration
	validFormats := []string{chart.FormatText, chart.FormatPNG, chart.FormatSVG}
	isValidFormat := false
	for _, f := range validFormats {
		if c.ChartFormat == f {
			isValidFormat = true
			break
		}
	}
	if !isValidFormat {
		errors = append(errors, fmt.Sprintf("invalid chart format '%s': must be one of %v", c.ChartFormat, validFormats))
	}

	if c.ChartFormat == chart.FormatPNG || c.ChartFormat == chart.FormatSVG {
		if c.ChartOutput == "" {
			errors = append(errors, fmt.Sprintf("chart output path is required when using %s charts", c.ChartFormat))
		} else if ext := chart.FormatForPath(c.ChartOutput); ext != c.ChartFormat {
			errors = append(errors, fmt.Sprintf("chart output '%s' must have a .%s extension", c.ChartOutput, c.ChartFormat))
		}
	}

	if c.ChartWidth < 10 {
		errors = append(errors, fmt.Sprintf("invalid chart width %d: must be at least 10", c.ChartWidth))
	} else if c.ChartWidth > 200 {
		errors = append(errors, fmt.Sprintf("invalid chart width %d: must be at most 200", c.ChartWidth))
	}

	// Validate logging
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.LogFile != "" {
		dir := filepath.Dir(c.LogFile)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("log file directory does not exist: %s", dir))
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
