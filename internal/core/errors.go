package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnreadableRecord  = errors.New("unreadable record")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrMissingAmount     = errors.New("missing amount")
	ErrMissingTimestamp  = errors.New("missing timestamp")
	ErrMissingID         = errors.New("missing transaction id")
	ErrDuplicateID       = errors.New("duplicate transaction id")
	ErrEmptyTag          = errors.New("empty tag")
	ErrUnknownPeriod     = errors.New("unknown budget period")
	ErrMissingRange      = errors.New("custom budget requires start and end")
	ErrUnexpectedRange   = errors.New("only custom budgets take a start and end")
	ErrDuplicateBudget   = errors.New("duplicate budget entry")
	ErrOverlappingBudget = errors.New("overlapping custom budget entries")
)

// InvalidRangeError reports a period whose start is after its end.
type InvalidRangeError struct {
	Start, End time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: start %s is after end %s",
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// MalformedRecordError describes one transaction record that was excluded
// from aggregation. It never aborts a run.
type MalformedRecordError struct {
	Index int    // position in the source stream
	ID    string // may be empty when the id itself is missing
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// BudgetConfigError collects every problem found in a budget configuration.
type BudgetConfigError struct {
	Source   string
	Problems []error
}

func (e *BudgetConfigError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}
	src := e.Source
	if src == "" {
		src = "budget"
	}
	return fmt.Sprintf("%s: invalid budget configuration:\n- %s", src, strings.Join(msgs, "\n- "))
}

// Unwrap exposes the individual problems to errors.Is.
func (e *BudgetConfigError) Unwrap() []error { return e.Problems }
