package backend

import (
	"errors"
	"fmt"

	"upreport/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Writer: WriterType(appConfig.ReportBackend),
		Source: SourceType(appConfig.SourceBackend),

		OutputDir:        appConfig.OutputDir,
		TransactionsFile: appConfig.TransactionsFile,
		PageSize:         appConfig.PageSize,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AccountID:    appConfig.AccountID,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetPrefix:        appConfig.GoogleSheetPrefix,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}
	return cfg, cfg.Validate()
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	var errs []error

	if !c.Writer.IsValid() {
		errs = append(errs, fmt.Errorf("invalid report backend: %s", c.Writer))
	}
	switch c.Writer {
	case CSVWriter, MarkdownWriter:
		if c.OutputDir == "" {
			errs = append(errs, fmt.Errorf("output directory is required for %s backend", c.Writer))
		}
	case SheetsWriter:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, errors.New("Google Spreadsheet ID is required for sheets backend"))
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errs = append(errs, errors.New("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets backend"))
		}
	}

	if !c.Source.IsValid() {
		errs = append(errs, fmt.Errorf("invalid source backend: %s", c.Source))
	}
	switch c.Source {
	case SQLiteSource:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("SQLite database path is required for sqlite source"))
		}
	case JSONLSource:
		if c.TransactionsFile == "" {
			errs = append(errs, errors.New("transactions file is required for jsonl source"))
		}
	}

	return errors.Join(errs...)
}

// GetWriterTypes returns all valid writer types
func GetWriterTypes() []WriterType {
	return []WriterType{CSVWriter, MarkdownWriter, SheetsWriter, MemoryWriter}
}
