package sheets

import (
	"context"
	"strings"
	"time"
	"unicode"

	"upreport/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter persists a finished workbook and returns a reference to
	// where it went (a directory, a file path or a spreadsheet URL).
	ReportWriter interface {
		WriteReport(ctx context.Context, wb core.Workbook) (ref string, err error)
	}
)

// StampLayout is appended to output names so runs never overwrite each other.
const StampLayout = "20060102-150405"

// OutputName returns "<name>_<stamp>" with the name made safe for file
// systems and sheet tabs.
func OutputName(wb core.Workbook) string {
	at := wb.GeneratedAt
	if at.IsZero() {
		at = time.Now()
	}
	name := SafeName(wb.Name)
	if name == "" {
		name = "report"
	}
	return name + "_" + at.Format(StampLayout)
}

// SafeName keeps letters, digits, '-' and '_' and replaces anything else
// with '_'.
func SafeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
