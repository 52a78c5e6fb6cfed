package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"upreport/internal/core"
	"upreport/internal/log"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var (
	ReportBackends = []string{"csv", "markdown", "memory", "sheets"}
	SourceBackends = []string{"jsonl", "sqlite"}
	LogFormats     = []string{"json", "text"}
)

type Config struct {
	// Banking API token, handed to the export tooling. Never logged.
	UpToken string

	// Input
	SourceBackend    string
	TransactionsFile string
	SQLiteDBPath     string
	AccountID        string // limits sqlite reports to one account
	InputDir         string
	BudgetFile       string
	PageSize         int

	// Report
	ReportBackend  string
	OutputDir      string
	ReportTimezone string
	ReportCurrency string
	Lookback       string
	VarianceLower  decimal.Decimal
	VarianceUpper  decimal.Decimal

	// AMQP
	AMQPURL         string
	AMQPExchange    string
	AMQPQueue       string
	AMQPEventsQueue string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetPrefix        string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Worker
	ShutdownTimeout time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		UpToken: getEnv("UP_TOKEN", ""),

		SourceBackend:    getEnv("SOURCE_BACKEND", "sqlite"),
		TransactionsFile: getEnv("TRANSACTIONS_FILE", ""),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/upreport.db"),
		AccountID:        getEnv("UP_ACCOUNT_ID", ""),
		InputDir:         getEnv("INPUT_DIR", "./input"),
		BudgetFile:       getEnv("BUDGET_FILE", ""),
		PageSize:         getEnvInt("PAGE_SIZE", 100),

		ReportBackend:  getEnv("REPORT_BACKEND", "csv"),
		OutputDir:      getEnv("OUTPUT_DIR", "./output"),
		ReportTimezone: getEnv("REPORT_TIMEZONE", "Australia/Sydney"),
		ReportCurrency: strings.ToUpper(getEnv("REPORT_CURRENCY", "AUD")),
		Lookback:       getEnv("REPORT_LOOKBACK", "4w"),
		VarianceLower:  getEnvDecimal("VARIANCE_LOWER", decimal.RequireFromString("97.5")),
		VarianceUpper:  getEnvDecimal("VARIANCE_UPPER", decimal.NewFromInt(120)),

		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "upreport"),
		AMQPQueue:       getEnv("AMQP_QUEUE", "report_requests"),
		AMQPEventsQueue: getEnv("AMQP_EVENTS_QUEUE", "report_events"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetPrefix:        getEnv("GOOGLE_SHEET_PREFIX", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	// A relative budget file is looked up in the input directory.
	if cfg.BudgetFile != "" && !filepath.IsAbs(cfg.BudgetFile) && cfg.InputDir != "" {
		if _, err := os.Stat(cfg.BudgetFile); os.IsNotExist(err) {
			cfg.BudgetFile = filepath.Join(cfg.InputDir, cfg.BudgetFile)
		}
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(SourceBackends, c.SourceBackend) {
		errors = append(errors, fmt.Sprintf("invalid source backend '%s': must be one of %v", c.SourceBackend, SourceBackends))
	}
	if c.SourceBackend == "jsonl" && c.TransactionsFile == "" {
		errors = append(errors, "TRANSACTIONS_FILE is required when using jsonl source backend")
	}
	if c.SourceBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite source backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.PageSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be at least 1", c.PageSize))
	} else if c.PageSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid page size %d: must be at most 1000", c.PageSize))
	}

	if !slices.Contains(ReportBackends, c.ReportBackend) {
		errors = append(errors, fmt.Sprintf("invalid report backend '%s': must be one of %v", c.ReportBackend, ReportBackends))
	}
	if (c.ReportBackend == "csv" || c.ReportBackend == "markdown") && c.OutputDir == "" {
		errors = append(errors, "OUTPUT_DIR is required for file report backends")
	}

	if _, err := time.LoadLocation(c.ReportTimezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid report timezone '%s': %v", c.ReportTimezone, err))
	}
	if money.GetCurrency(c.ReportCurrency) == nil {
		errors = append(errors, fmt.Sprintf("unknown report currency '%s'", c.ReportCurrency))
	}
	if _, err := core.Lookback(c.Lookback, time.Now()); err != nil {
		errors = append(errors, err.Error())
	}

	if !c.VarianceLower.IsPositive() || !c.VarianceUpper.IsPositive() {
		errors = append(errors, "variance limits must be positive percentages")
	} else if !c.VarianceLower.LessThan(c.VarianceUpper) {
		errors = append(errors, fmt.Sprintf("invalid variance limits: lower %s must be below upper %s", c.VarianceLower, c.VarianceUpper))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ReportBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, LogFormats))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the report timezone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
