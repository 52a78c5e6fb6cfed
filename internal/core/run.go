package core

import "time"

const (
	ReportUntagged ReportKind = "untagged"
	ReportTags     ReportKind = "tags"
	ReportBudget   ReportKind = "budget"
)

const (
	RunSucceeded RunStatus = "succeeded"
	RunPartial   RunStatus = "partial" // written, but with a budget or record problem
	RunFailed    RunStatus = "failed"
)

type (
	ReportKind string
	RunStatus  string

	// RunRecord is the history entry of one report run.
	RunRecord struct {
		ID          string
		Kind        ReportKind
		Window      Window
		GeneratedAt time.Time
		OutputRef   string
		Malformed   int
		Status      RunStatus
		Error       string
	}
)

// ParseReportKind accepts the report names used by the CLI and messages.
func ParseReportKind(s string) (ReportKind, bool) {
	switch k := ReportKind(s); k {
	case ReportUntagged, ReportTags, ReportBudget:
		return k, true
	default:
		return "", false
	}
}
