package backend

import (
	"context"
	"fmt"

	"upreport/internal/log"
	"upreport/internal/sheets/csvdir"
	gsheet "upreport/internal/sheets/google"
	"upreport/internal/sheets/markdown"
	"upreport/internal/sheets/memory"
	"upreport/internal/source/jsonl"
	"upreport/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateWriter implements Factory.CreateWriter
func (f *DefaultFactory) CreateWriter(ctx context.Context, config Config) (*WriterResult, error) {
	switch config.Writer {
	case CSVWriter:
		f.logger.Info("Initialized CSV report writer", "output_dir", config.OutputDir)
		return &WriterResult{Writer: csvdir.New(config.OutputDir)}, nil
	case MarkdownWriter:
		f.logger.Info("Initialized markdown report writer", "output_dir", config.OutputDir)
		return &WriterResult{Writer: markdown.New(config.OutputDir)}, nil
	case SheetsWriter:
		cli, err := gsheet.NewWithServiceAccount(ctx,
			config.GoogleSpreadsheetID,
			config.GoogleSheetPrefix,
			config.GoogleServiceAccountJSON,
			config.GoogleServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets report writer")
		return &WriterResult{Writer: cli}, nil
	case MemoryWriter:
		f.logger.Info("Initialized memory report writer")
		return &WriterResult{Writer: memory.New()}, nil
	default:
		return nil, fmt.Errorf("unsupported report backend: %s", config.Writer)
	}
}

// CreateSource implements Factory.CreateSource. Run history is kept in the
// SQLite database whenever a path is configured, also for jsonl sources.
func (f *DefaultFactory) CreateSource(_ context.Context, config Config) (*SourceResult, error) {
	if !config.Source.IsValid() {
		return nil, fmt.Errorf("unsupported source backend: %s", config.Source)
	}

	var repo *storage.SQLiteRepository
	if config.SQLiteDBPath != "" {
		var err error
		repo, err = storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
	}

	res := &SourceResult{}
	if repo != nil {
		res.Runs = repo
		res.Cleanup = repo.Close
	}

	switch config.Source {
	case SQLiteSource:
		if repo == nil {
			return nil, fmt.Errorf("SQLite database path is required for sqlite source")
		}
		res.Opener = repo.Opener(config.AccountID, config.PageSize)
		f.logger.Info("Initialized SQLite transaction source",
			"db_path", config.SQLiteDBPath,
			"schema_version", repo.SchemaVersion(),
			log.FieldAccount, config.AccountID)
	case JSONLSource:
		res.Opener = jsonl.Opener(config.TransactionsFile, config.PageSize)
		f.logger.Info("Initialized JSONL transaction source",
			"path", config.TransactionsFile,
			"run_history", repo != nil)
	}
	return res, nil
}
