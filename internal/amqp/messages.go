package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"upreport/internal/core"

	"github.com/google/uuid"
)

// ReportRequest asks a worker to run one report. The window is either a
// lookback such as "6w" ending at processing time, or explicit bounds.
type ReportRequest struct {
	RequestID   string          `json:"request_id"`
	Kind        core.ReportKind `json:"kind"`
	Lookback    string          `json:"lookback,omitempty"`
	Start       *time.Time      `json:"start,omitempty"`
	End         *time.Time      `json:"end,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	ExactTags   bool            `json:"exact_tags,omitempty"`
	BudgetFile  string          `json:"budget_file,omitempty"`
	RequestedAt time.Time       `json:"requested_at"`
}

// ReportCompleted is published after a requested report has run.
type ReportCompleted struct {
	RequestID   string          `json:"request_id"`
	RunID       string          `json:"run_id"`
	Kind        core.ReportKind `json:"kind"`
	Status      core.RunStatus  `json:"status"`
	OutputRef   string          `json:"output_ref,omitempty"`
	Malformed   int             `json:"malformed_records"`
	Error       string          `json:"error,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}

// NewReportRequest creates a request with a fresh id.
func NewReportRequest(kind core.ReportKind, lookback string) *ReportRequest {
	return &ReportRequest{
		RequestID:   uuid.NewString(),
		Kind:        kind,
		Lookback:    lookback,
		RequestedAt: time.Now(),
	}
}

// Validate checks that the request can be turned into a report run.
func (r *ReportRequest) Validate() error {
	if r.RequestID == "" {
		return errors.New("missing request_id")
	}
	if _, ok := core.ParseReportKind(string(r.Kind)); !ok {
		return fmt.Errorf("unknown report kind %q", r.Kind)
	}
	hasRange := r.Start != nil || r.End != nil
	switch {
	case hasRange && r.Lookback != "":
		return errors.New("lookback and start/end are mutually exclusive")
	case hasRange && (r.Start == nil || r.End == nil):
		return errors.New("both start and end are required")
	case !hasRange && r.Lookback == "":
		return errors.New("either lookback or start/end is required")
	}
	return nil
}

// Window resolves the report window relative to now.
func (r *ReportRequest) Window(now time.Time) (core.Window, error) {
	if r.Lookback != "" {
		return core.Lookback(r.Lookback, now)
	}
	return core.NewWindow(*r.Start, *r.End)
}

// ToJSON converts the message to JSON bytes
func (r *ReportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ReportRequestFromJSON decodes and validates a request.
func ReportRequestFromJSON(data []byte) (*ReportRequest, error) {
	var msg ReportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report request: %w", err)
	}
	return &msg, nil
}

// NewReportCompleted builds the completion event of run.
func NewReportCompleted(requestID string, run core.RunRecord) *ReportCompleted {
	return &ReportCompleted{
		RequestID:   requestID,
		RunID:       run.ID,
		Kind:        run.Kind,
		Status:      run.Status,
		OutputRef:   run.OutputRef,
		Malformed:   run.Malformed,
		Error:       run.Error,
		CompletedAt: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ReportCompleted) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ReportCompletedFromJSON decodes a completion event.
func ReportCompletedFromJSON(data []byte) (*ReportCompleted, error) {
	var msg ReportCompleted
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
