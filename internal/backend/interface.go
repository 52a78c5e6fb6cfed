package backend

import (
	"context"

	"upreport/internal/services"
	"upreport/internal/sheets"
	"upreport/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// WriterResult contains the report writer and optional cleanup function
type WriterResult struct {
	Writer  sheets.ReportWriter
	Cleanup CleanupFunc
}

// SourceResult contains the transaction source, the run history store when
// one is available, and an optional cleanup function
type SourceResult struct {
	Opener  source.Opener
	Runs    services.RunStore
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateWriter(ctx context.Context, config Config) (*WriterResult, error)
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Writer WriterType
	Source SourceType

	// Files
	OutputDir        string
	TransactionsFile string
	PageSize         int

	// SQLite specific
	SQLiteDBPath string
	AccountID    string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetPrefix        string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// WriterType selects where reports are written
type WriterType string

const (
	CSVWriter      WriterType = "csv"
	MarkdownWriter WriterType = "markdown"
	SheetsWriter   WriterType = "sheets"
	MemoryWriter   WriterType = "memory"
)

// SourceType selects where transactions are read from
type SourceType string

const (
	SQLiteSource SourceType = "sqlite"
	JSONLSource  SourceType = "jsonl"
)

// String implements fmt.Stringer
func (t WriterType) String() string { return string(t) }

// IsValid returns true if the writer type is valid
func (t WriterType) IsValid() bool {
	switch t {
	case CSVWriter, MarkdownWriter, SheetsWriter, MemoryWriter:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer
func (t SourceType) String() string { return string(t) }

// IsValid returns true if the source type is valid
func (t SourceType) IsValid() bool {
	switch t {
	case SQLiteSource, JSONLSource:
		return true
	default:
		return false
	}
}
