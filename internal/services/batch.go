package services

import (
	"context"
	"fmt"
)

// BatchItem is the outcome of one report of a batch.
type BatchItem struct {
	Request Request
	Result  Result
	Err     error
}

// BatchResult holds the outcome of every report of a batch, in request order.
type BatchResult struct {
	Items []BatchItem
}

// Failed returns the number of reports that returned an error.
func (b BatchResult) Failed() int {
	n := 0
	for _, item := range b.Items {
		if item.Err != nil {
			n++
		}
	}
	return n
}

// Err summarises the failed reports, or returns nil.
func (b BatchResult) Err() error {
	if n := b.Failed(); n > 0 {
		return fmt.Errorf("%d of %d reports failed", n, len(b.Items))
	}
	return nil
}

// RunBatch runs the requests one after the other. A failing report never
// stops the others; only a cancelled context ends the batch early, and the
// remaining requests are reported with the context error.
func (s *ReportService) RunBatch(ctx context.Context, reqs []Request) BatchResult {
	out := BatchResult{Items: make([]BatchItem, 0, len(reqs))}
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			out.Items = append(out.Items, BatchItem{Request: req, Err: err})
			continue
		}
		res, err := s.runSafely(ctx, req)
		out.Items = append(out.Items, BatchItem{Request: req, Result: res, Err: err})
	}
	return out
}

func (s *ReportService) runSafely(ctx context.Context, req Request) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("report %s panicked: %v", req.Kind, r)
			s.logger.ErrorContext(ctx, "Recovered from panic in report run", "report", req.Kind, "panic", r)
		}
	}()
	return s.Run(ctx, req)
}
