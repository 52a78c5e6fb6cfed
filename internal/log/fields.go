package log

import (
	"time"

	"upreport/internal/core"
)

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRunID       = "run_id"
	FieldReport      = "report"
	FieldTag         = "tag"
	FieldAccount     = "account"
	FieldWindowStart = "window_start"
	FieldWindowEnd   = "window_end"
	FieldMalformed   = "malformed_records"
	FieldRecords     = "records"
	FieldOutputRef   = "output_ref"
	FieldBackend     = "backend"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldOperation   = "operation"
	FieldMessageID   = "message_id"
	FieldQueue       = "queue"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentReport    = "report"
	ComponentAggregate = "aggregate"
	ComponentBudget    = "budget"
	ComponentSource    = "source"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpImport    = "import"
	OpFetch     = "fetch"
	OpNormalize = "normalize"
	OpAggregate = "aggregate"
	OpWrite     = "write"
	OpRecord    = "record"
	OpNotify    = "notify"
	OpConsume   = "consume"
	OpValidate  = "validate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeBudget        = "budget_error"
	ErrorTypeRange         = "range_error"
	ErrorTypeRecord        = "record_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRun adds the run id and report kind
func (f LogFields) WithRun(runID string, kind core.ReportKind) LogFields {
	f[FieldRunID] = runID
	f[FieldReport] = string(kind)
	return f
}

// WithWindow adds the report window bounds
func (f LogFields) WithWindow(w core.Window) LogFields {
	f[FieldWindowStart] = w.Start.Format(time.RFC3339)
	f[FieldWindowEnd] = w.End.Format(time.RFC3339)
	return f
}

// WithError adds the error and its category
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = ErrorType(err)
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDuration adds the elapsed time in milliseconds
func (f LogFields) WithDuration(d time.Duration) LogFields {
	f[FieldDuration] = d.Milliseconds()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
