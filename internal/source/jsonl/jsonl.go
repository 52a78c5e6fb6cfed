// Package jsonl reads transaction exports stored as one JSON object per
// line.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"upreport/internal/core"
	"upreport/internal/source"
)

const (
	DefaultPageSize = 100
	maxLineSize     = 1 << 20
)

// Pager reads pageSize records per call. A line that cannot be decoded is
// delivered as a record carrying DecodeErr, so normalization rejects it with
// the decode error without failing the run.
type Pager struct {
	closer   io.Closer
	sc       *bufio.Scanner
	pageSize int
	line     int
	done     bool
}

// Open opens the export at path.
func Open(path string, pageSize int) (*Pager, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transactions file: %w", err)
	}
	p := NewReader(f, pageSize)
	p.closer = f
	return p, nil
}

// NewReader reads records from r.
func NewReader(r io.Reader, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Pager{sc: sc, pageSize: pageSize}
}

// Next returns up to pageSize records, or io.EOF when the file is exhausted.
func (p *Pager) Next(ctx context.Context) ([]core.RawTransaction, error) {
	if p.done {
		return nil, io.EOF
	}
	page := make([]core.RawTransaction, 0, p.pageSize)
	for len(page) < p.pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !p.sc.Scan() {
			p.done = true
			if err := p.sc.Err(); err != nil {
				return nil, fmt.Errorf("line %d: %w", p.line+1, err)
			}
			break
		}
		p.line++
		line := p.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec core.RawTransaction
		if err := json.Unmarshal(line, &rec); err != nil {
			rec = core.RawTransaction{DecodeErr: fmt.Errorf("line %d: %w", p.line, err)}
		}
		page = append(page, rec)
	}
	if len(page) == 0 {
		return nil, io.EOF
	}
	return page, nil
}

// Close closes the underlying file, if any.
func (p *Pager) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Opener reads the same export for every run.
func Opener(path string, pageSize int) source.Opener {
	return source.OpenerFunc(func(context.Context, core.Window) (source.Pager, error) {
		p, err := Open(path, pageSize)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}
