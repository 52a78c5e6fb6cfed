// Package memory serves transaction records from fixed pages. It backs tests
// and dry runs.
package memory

import (
	"context"
	"io"
	"sync"

	"upreport/internal/core"
	"upreport/internal/source"
)

type Pager struct {
	mu    sync.Mutex
	pages [][]core.RawTransaction
	next  int
}

// New returns a pager over the given pages.
func New(pages ...[]core.RawTransaction) *Pager {
	return &Pager{pages: pages}
}

// Next returns the next page or io.EOF.
func (p *Pager) Next(ctx context.Context) ([]core.RawTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.next >= len(p.pages) {
		return nil, io.EOF
	}
	page := append([]core.RawTransaction(nil), p.pages[p.next]...)
	p.next++
	return page, nil
}

// Opener returns an opener that replays the same pages on every run.
func Opener(pages ...[]core.RawTransaction) source.Opener {
	return source.OpenerFunc(func(context.Context, core.Window) (source.Pager, error) {
		return New(pages...), nil
	})
}
