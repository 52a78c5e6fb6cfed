package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"upreport/internal/config"
	"upreport/internal/core"
	"upreport/internal/services"

	"github.com/shopspring/decimal"
)

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing env file should be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("UPREPORT_TEST_VALUE=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("UPREPORT_TEST_VALUE") })
	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("UPREPORT_TEST_VALUE"); got != "from-file" {
		t.Errorf("got %q", got)
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, "cli")
	if logger.Component() != "cli" {
		t.Errorf("component: %s", logger.Component())
	}
	if !logger.Enabled(context.Background(), -4) {
		t.Error("debug level should be enabled")
	}
}

func TestServiceConfig(t *testing.T) {
	cfg := &config.Config{
		ReportCurrency: "AUD",
		ReportTimezone: "UTC",
		VarianceLower:  decimal.NewFromInt(90),
		VarianceUpper:  decimal.NewFromInt(110),
		BudgetFile:     "budget.csv",
	}
	sc := ServiceConfig(cfg)
	if sc.Currency != "AUD" || sc.BudgetFile != "budget.csv" || !sc.Lower.Equal(decimal.NewFromInt(90)) || sc.Location != time.UTC {
		t.Errorf("got %+v", sc)
	}
}

func TestNewReportService(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tx.jsonl")
	content := `{"id":"t1","amount":"-5.00","created_at":"2024-01-02T10:00:00Z"}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		SourceBackend:    "jsonl",
		TransactionsFile: path,
		ReportBackend:    "memory",
		ReportCurrency:   "AUD",
		ReportTimezone:   "UTC",
		LogLevel:         "info",
		LogFormat:        "text",
	}
	logger := SetupLogger(cfg, "test")

	svc, cleanup, err := NewReportService(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := svc.Run(context.Background(), services.Request{
		Kind:   core.ReportUntagged,
		Window: core.Window{Start: start, End: start.AddDate(0, 0, 7)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, ok := res.Workbook.Sheet(services.SheetUntagged)
	if !ok || len(s.Rows) != 1 {
		t.Errorf("untagged sheet: %+v", s)
	}
}
