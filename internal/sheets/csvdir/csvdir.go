// Package csvdir writes each workbook as a folder with one CSV file per
// sheet.
package csvdir

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"upreport/internal/core"
	"upreport/internal/sheets"
)

type Writer struct {
	dir string
}

var _ sheets.ReportWriter = (*Writer)(nil)

func New(dir string) *Writer { return &Writer{dir: dir} }

// WriteReport creates <dir>/<name>_<stamp>/ and returns its path.
func (w *Writer) WriteReport(ctx context.Context, wb core.Workbook) (string, error) {
	out := filepath.Join(w.dir, sheets.OutputName(wb))
	if err := os.MkdirAll(out, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}
	for i, s := range wb.Sheets {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		name := fmt.Sprintf("%02d_%s.csv", i+1, sheets.SafeName(s.Name))
		if err := writeSheet(filepath.Join(out, name), s); err != nil {
			return "", fmt.Errorf("write sheet %s: %w", s.Name, err)
		}
	}
	slog.InfoContext(ctx, "Report written", "backend", "csv", "path", out, "sheets", len(wb.Sheets))
	return out, nil
}

func writeSheet(path string, s *core.Sheet) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	if len(s.Header) > 0 {
		if err := cw.Write(s.Header); err != nil {
			f.Close()
			return err
		}
	}
	if err := cw.WriteAll(s.Rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
