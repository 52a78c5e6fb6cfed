// Package services runs reports: it reads transactions from a source,
// aggregates them and hands the resulting workbook to a report writer.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"upreport/internal/aggregate"
	"upreport/internal/budget"
	"upreport/internal/core"
	"upreport/internal/log"
	"upreport/internal/sheets"
	"upreport/internal/source"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RunStore keeps the history of report runs.
type RunStore interface {
	SaveRun(ctx context.Context, run core.RunRecord) error
}

// Notifier is told about every finished run. requestID is empty for runs
// that were not requested through the queue.
type Notifier interface {
	ReportCompleted(ctx context.Context, requestID string, run core.RunRecord) error
}

// Config holds the report settings shared by every run.
type Config struct {
	Currency   string
	Location   *time.Location
	Lower      decimal.Decimal // variance band, percent of budget
	Upper      decimal.Decimal
	BudgetFile string // used when a request names no budget file
}

// Request describes one report run.
type Request struct {
	RequestID  string
	Kind       core.ReportKind
	Window     core.Window
	Tags       []string // tag analysis only; empty means every tag
	ExactTags  bool
	BudgetFile string
}

// Result is the outcome of one run.
type Result struct {
	Run       core.RunRecord
	Workbook  core.Workbook
	Malformed []*core.MalformedRecordError
}

type ReportService struct {
	source   source.Opener
	writer   sheets.ReportWriter
	runs     RunStore
	notifier Notifier
	config   Config
	logger   *log.Logger
	now      func() time.Time
	newID    func() string
}

// Option customises a ReportService.
type Option func(*ReportService)

// WithRunStore records every run in store.
func WithRunStore(store RunStore) Option { return func(s *ReportService) { s.runs = store } }

// WithNotifier announces every finished run.
func WithNotifier(n Notifier) Option { return func(s *ReportService) { s.notifier = n } }

func WithLogger(l *log.Logger) Option { return func(s *ReportService) { s.logger = l } }

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *ReportService) { s.now = now } }

// WithIDGenerator replaces the uuid run ids, for tests.
func WithIDGenerator(gen func() string) Option { return func(s *ReportService) { s.newID = gen } }

func NewReportService(src source.Opener, writer sheets.ReportWriter, config Config, opts ...Option) *ReportService {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Currency == "" {
		config.Currency = "AUD"
	}
	s := &ReportService{
		source: src,
		writer: writer,
		config: config,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentReport),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UntaggedWithdrawals lists every debit without a tag in w.
func (s *ReportService) UntaggedWithdrawals(ctx context.Context, w core.Window) (Result, error) {
	return s.Run(ctx, Request{Kind: core.ReportUntagged, Window: w})
}

// TagAnalysis summarises spend per tag in w. With tags, only the matching
// tags are reported; exact selects whole-tag matching over substrings.
func (s *ReportService) TagAnalysis(ctx context.Context, w core.Window, tags []string, exact bool) (Result, error) {
	return s.Run(ctx, Request{Kind: core.ReportTags, Window: w, Tags: tags, ExactTags: exact})
}

// BudgetVersusSpend compares the spend per tag in w with the budget file.
// An empty budgetFile falls back to the configured one.
func (s *ReportService) BudgetVersusSpend(ctx context.Context, w core.Window, budgetFile string) (Result, error) {
	return s.Run(ctx, Request{Kind: core.ReportBudget, Window: w, BudgetFile: budgetFile})
}

// Run executes one report. A budget problem still writes the report, marks
// the run partial and is returned as the error. Any other error fails the
// run.
func (s *ReportService) Run(ctx context.Context, req Request) (Result, error) {
	start := s.now()
	res := Result{Run: core.RunRecord{
		ID:          s.newID(),
		Kind:        req.Kind,
		Window:      req.Window,
		GeneratedAt: start.In(s.config.Location),
		Status:      core.RunFailed,
	}}
	logger := s.logger.WithFields(log.NewFields().WithRun(res.Run.ID, req.Kind).WithWindow(req.Window))

	reportErr := s.build(ctx, req, &res, logger)

	var budgetErr error
	if reportErr != nil && IsBudgetProblem(reportErr) {
		budgetErr, reportErr = reportErr, nil
	}
	if reportErr == nil {
		ref, err := s.writer.WriteReport(ctx, res.Workbook)
		if err != nil {
			reportErr = fmt.Errorf("write report: %w", err)
		}
		res.Run.OutputRef = ref
	}

	res.Run.Malformed = len(res.Malformed)
	switch {
	case reportErr != nil:
		res.Run.Status = core.RunFailed
		res.Run.Error = reportErr.Error()
	case budgetErr != nil:
		res.Run.Status = core.RunPartial
		res.Run.Error = budgetErr.Error()
	case res.Run.Malformed > 0:
		res.Run.Status = core.RunPartial
	default:
		res.Run.Status = core.RunSucceeded
	}

	s.record(ctx, req, res.Run, logger)

	fields := log.NewFields().WithOperation(log.OpWrite).WithDuration(s.now().Sub(start))
	fields[log.FieldOutputRef] = res.Run.OutputRef
	fields[log.FieldMalformed] = res.Run.Malformed
	if err := errors.Join(reportErr, budgetErr); err != nil {
		logger.ErrorContext(ctx, "Report run finished with errors", fields.WithError(err).ToSlice()...)
		return res, err
	}
	logger.InfoContext(ctx, "Report run finished", fields.ToSlice()...)
	return res, nil
}

// IsBudgetProblem reports whether err came from loading or validating the
// budget, which leaves the report written but partial.
func IsBudgetProblem(err error) bool {
	var budgetErr *core.BudgetConfigError
	return errors.As(err, &budgetErr) || errors.Is(err, errBudgetUnavailable)
}

var errBudgetUnavailable = errors.New("budget unavailable")

func (s *ReportService) build(ctx context.Context, req Request, res *Result, logger *log.Logger) error {
	if _, ok := core.ParseReportKind(string(req.Kind)); !ok {
		return fmt.Errorf("unknown report kind %q", req.Kind)
	}
	if _, err := core.NewWindow(req.Window.Start, req.Window.End); err != nil {
		return err
	}

	txs, err := s.fetch(ctx, req.Window, res, logger)
	if err != nil {
		return err
	}

	b := newBuilder(req.Kind, res.Run.GeneratedAt, req.Window, s.config)
	b.summary(txs, len(res.Malformed))

	var buildErr error
	switch req.Kind {
	case core.ReportUntagged:
		b.untagged(aggregate.UntaggedWithdrawals(txs))
	case core.ReportTags:
		b.tags(txs, req.Tags, req.ExactTags)
	case core.ReportBudget:
		buildErr = s.budget(b, txs, req.BudgetFile, logger)
	}
	b.rejected(res.Malformed)

	res.Workbook = b.wb
	return buildErr
}

// fetch reads, normalizes and window-filters the transactions of w.
func (s *ReportService) fetch(ctx context.Context, w core.Window, res *Result, logger *log.Logger) ([]core.Transaction, error) {
	pager, err := s.source.Open(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	raws, err := source.Collect(ctx, pager)
	if cerr := source.Close(pager); cerr != nil {
		logger.WarnContext(ctx, "Failed to close source", log.FieldError, cerr)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	txs, malformed := aggregate.Normalize(raws, s.config.Currency)
	for _, m := range malformed {
		logger.WarnContext(ctx, "Skipping malformed record",
			log.FieldOperation, log.OpNormalize,
			log.FieldError, m.Error(),
			log.FieldErrorType, log.ErrorTypeRecord)
	}
	res.Malformed = malformed

	txs, err = aggregate.FilterByPeriod(txs, w.Start, w.End)
	if err != nil {
		return nil, err
	}
	logger.DebugContext(ctx, "Fetched transactions",
		log.FieldOperation, log.OpFetch,
		log.FieldRecords, len(raws),
		"in_window", len(txs))
	return txs, nil
}

func (s *ReportService) budget(b *builder, txs []core.Transaction, path string, logger *log.Logger) error {
	summaries := aggregate.GroupByTag(txs)
	b.tagSummary(summaries)

	if path == "" {
		path = s.config.BudgetFile
	}
	if path == "" {
		return fmt.Errorf("%w: no budget file configured", errBudgetUnavailable)
	}
	entries, err := budget.Load(path, s.config.Location)
	if err != nil {
		var budgetErr *core.BudgetConfigError
		if errors.As(err, &budgetErr) {
			return err
		}
		return fmt.Errorf("%w: %w", errBudgetUnavailable, err)
	}

	opts := aggregate.VarianceOptions{Window: b.window, Lower: s.config.Lower, Upper: s.config.Upper}
	report, err := aggregate.ComputeVariance(summaries, entries, opts)
	if err != nil {
		return err
	}
	b.variance(report)
	logger.Debug("Computed variance",
		log.FieldOperation, log.OpAggregate,
		"budgeted_tags", len(report.Results),
		"unbudgeted_tags", len(report.Unbudgeted))
	return nil
}

func (s *ReportService) record(ctx context.Context, req Request, run core.RunRecord, logger *log.Logger) {
	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run); err != nil {
			logger.ErrorContext(ctx, "Failed to record run", log.NewFields().WithOperation(log.OpRecord).WithError(err).ToSlice()...)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.ReportCompleted(ctx, req.RequestID, run); err != nil {
			logger.ErrorContext(ctx, "Failed to publish run notification", log.NewFields().WithOperation(log.OpNotify).WithError(err).ToSlice()...)
		}
	}
}
