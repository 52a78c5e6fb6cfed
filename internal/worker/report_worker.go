package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"upreport/internal/amqp"
	"upreport/internal/core"
	"upreport/internal/log"
	"upreport/internal/services"
)

// ReportRunner runs a single report.
type ReportRunner interface {
	Run(ctx context.Context, req services.Request) (services.Result, error)
}

// ReportWorker turns queued report requests into report runs.
type ReportWorker struct {
	runner ReportRunner
	logger *log.Logger
	now    func() time.Time
}

func NewReportWorker(runner ReportRunner, logger *log.Logger) *ReportWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportWorker{
		runner: runner,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// HandleRequest runs the requested report. Requests that can never succeed
// (bad window, broken budget) are logged and acknowledged by returning nil;
// only errors worth a retry are returned.
func (w *ReportWorker) HandleRequest(ctx context.Context, msg *amqp.ReportRequest) error {
	logger := w.logger.With(log.FieldMessageID, msg.RequestID, log.FieldReport, string(msg.Kind))

	window, err := msg.Window(w.now())
	if err != nil {
		logger.ErrorContext(ctx, "Discarding report request with invalid window",
			log.NewFields().WithOperation(log.OpConsume).WithError(err).ToSlice()...)
		return nil
	}

	res, err := w.runner.Run(ctx, services.Request{
		RequestID:  msg.RequestID,
		Kind:       msg.Kind,
		Window:     window,
		Tags:       msg.Tags,
		ExactTags:  msg.ExactTags,
		BudgetFile: msg.BudgetFile,
	})
	if err != nil {
		if permanent(err) {
			logger.WarnContext(ctx, "Report request completed with a permanent error",
				log.NewFields().WithRun(res.Run.ID, msg.Kind).WithError(err).ToSlice()...)
			return nil
		}
		return fmt.Errorf("run report %s: %w", msg.Kind, err)
	}

	logger.InfoContext(ctx, "Report request completed",
		log.FieldRunID, res.Run.ID,
		log.FieldOutputRef, res.Run.OutputRef,
		log.FieldMalformed, res.Run.Malformed)
	return nil
}

func permanent(err error) bool {
	var rangeErr *core.InvalidRangeError
	return errors.As(err, &rangeErr) || services.IsBudgetProblem(err)
}
