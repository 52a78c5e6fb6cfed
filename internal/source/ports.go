// Package source defines how transaction records reach the aggregator.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"upreport/internal/core"
)

// Pager yields transaction records one page at a time. Next returns io.EOF
// once every page has been read; a page may be empty only at the end.
type Pager interface {
	Next(ctx context.Context) ([]core.RawTransaction, error)
}

// Opener starts a new pass over the records of a report window. Sources
// that cannot filter server side may return records outside the window.
type Opener interface {
	Open(ctx context.Context, w core.Window) (Pager, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, w core.Window) (Pager, error)

func (f OpenerFunc) Open(ctx context.Context, w core.Window) (Pager, error) { return f(ctx, w) }

// Collect drains p and returns every record in order.
func Collect(ctx context.Context, p Pager) ([]core.RawTransaction, error) {
	var out []core.RawTransaction
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := p.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", page, err)
		}
		out = append(out, recs...)
	}
}

// Close releases p when it holds resources.
func Close(p Pager) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
