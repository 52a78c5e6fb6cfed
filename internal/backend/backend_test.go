package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"upreport/internal/config"
	"upreport/internal/core"
	"upreport/internal/source"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		ReportBackend:    "markdown",
		SourceBackend:    "jsonl",
		OutputDir:        "out",
		TransactionsFile: "tx.jsonl",
		PageSize:         25,
		AccountID:        "acc-1",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Writer != MarkdownWriter || cfg.Source != JSONLSource || cfg.PageSize != 25 || cfg.AccountID != "acc-1" {
		t.Errorf("got %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"csv sqlite", Config{Writer: CSVWriter, Source: SQLiteSource, OutputDir: "o", SQLiteDBPath: "db"}, ""},
		{"memory jsonl", Config{Writer: MemoryWriter, Source: JSONLSource, TransactionsFile: "t"}, ""},
		{"unknown writer", Config{Writer: "xlsx", Source: JSONLSource, TransactionsFile: "t"}, "invalid report backend"},
		{"csv without dir", Config{Writer: CSVWriter, Source: JSONLSource, TransactionsFile: "t"}, "output directory"},
		{"sheets without id", Config{Writer: SheetsWriter, Source: JSONLSource, TransactionsFile: "t", GoogleServiceAccountFile: "f"}, "Spreadsheet ID"},
		{"sheets without credentials", Config{Writer: SheetsWriter, Source: JSONLSource, TransactionsFile: "t", GoogleSpreadsheetID: "x"}, "GoogleServiceAccountJSON"},
		{"jsonl without file", Config{Writer: MemoryWriter, Source: JSONLSource}, "transactions file"},
		{"unknown source", Config{Writer: MemoryWriter, Source: "csv"}, "invalid source backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateWriter(t *testing.T) {
	f := NewFactory(nil)
	for _, w := range []WriterType{CSVWriter, MarkdownWriter, MemoryWriter} {
		res, err := f.CreateWriter(context.Background(), Config{Writer: w, OutputDir: t.TempDir()})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", w, err)
		}
		if res.Writer == nil {
			t.Errorf("%s: nil writer", w)
		}
	}

	if _, err := f.CreateWriter(context.Background(), Config{Writer: SheetsWriter}); err == nil {
		t.Error("sheets writer without spreadsheet id should fail")
	}
}

func TestCreateSource_JSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tx.jsonl")
	content := `{"id":"t1","amount":"-5.00","created_at":"2024-01-02T10:00:00Z","tags":["coffee"]}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateSource(context.Background(), Config{Source: JSONLSource, TransactionsFile: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Runs != nil || res.Cleanup != nil {
		t.Error("jsonl source without database should have no run store")
	}

	pager, err := res.Opener.Open(context.Background(), core.Window{})
	if err != nil {
		t.Fatal(err)
	}
	defer source.Close(pager)
	recs, err := source.Collect(context.Background(), pager)
	if err != nil || len(recs) != 1 || recs[0].ID != "t1" {
		t.Errorf("records: %+v, %v", recs, err)
	}
}

func TestCreateSource_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reports.db")
	res, err := NewFactory(nil).CreateSource(context.Background(), Config{Source: SQLiteSource, SQLiteDBPath: dbPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer res.Cleanup()

	if res.Runs == nil || res.Opener == nil {
		t.Fatalf("got %+v", res)
	}
	if err := res.Runs.SaveRun(context.Background(), core.RunRecord{ID: "run-1", Kind: core.ReportTags, Status: core.RunSucceeded}); err != nil {
		t.Errorf("save run: %v", err)
	}
}
