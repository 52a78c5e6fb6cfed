// Package markdown writes workbooks as a single markdown document with one
// table per sheet.
package markdown

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"upreport/internal/core"
	"upreport/internal/sheets"
)

type Writer struct {
	dir string
}

var _ sheets.ReportWriter = (*Writer)(nil)

func New(dir string) *Writer { return &Writer{dir: dir} }

// WriteReport writes <dir>/<name>_<stamp>.md and returns its path.
func (w *Writer) WriteReport(ctx context.Context, wb core.Workbook) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(w.dir, sheets.OutputName(wb)+".md")
	if err := os.WriteFile(path, []byte(Render(wb)), 0o644); err != nil {
		return "", fmt.Errorf("write markdown report: %w", err)
	}
	slog.InfoContext(ctx, "Report written", "backend", "markdown", "path", path, "sheets", len(wb.Sheets))
	return path, nil
}

// Render formats the workbook as markdown.
func Render(wb core.Workbook) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", wb.Name)
	if !wb.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "\n_Generated %s_\n", wb.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}
	for _, s := range wb.Sheets {
		fmt.Fprintf(&b, "\n## %s\n\n", s.Name)
		header := s.Header
		if len(header) == 0 && len(s.Rows) > 0 {
			header = make([]string, len(s.Rows[0]))
		}
		if len(header) == 0 {
			b.WriteString("_empty_\n")
			continue
		}
		writeRow(&b, header)
		sep := make([]string, len(header))
		for i := range sep {
			sep[i] = "---"
		}
		writeRow(&b, sep)
		for _, row := range s.Rows {
			writeRow(&b, pad(row, len(header)))
		}
		if len(s.Rows) == 0 {
			b.WriteString("\n_no rows_\n")
		}
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escape(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
