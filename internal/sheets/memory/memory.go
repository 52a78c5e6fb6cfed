package memory

import (
	"context"
	"fmt"
	"sync"

	"upreport/internal/core"
	"upreport/internal/sheets"
)

// Store keeps written workbooks in memory. It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	workbooks []core.Workbook
	failWith  error
}

var _ sheets.ReportWriter = (*Store)(nil)

func New() *Store { return &Store{} }

// WriteReport stores a copy of the workbook and returns a synthetic reference.
func (s *Store) WriteReport(_ context.Context, wb core.Workbook) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return "", s.failWith
	}
	s.workbooks = append(s.workbooks, clone(wb))
	return fmt.Sprintf("mem:%d", len(s.workbooks)), nil
}

// FailWith makes every following write return err. A nil err restores
// normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Workbooks returns everything written so far, oldest first.
func (s *Store) Workbooks() []core.Workbook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Workbook(nil), s.workbooks...)
}

// Last returns the most recent workbook.
func (s *Store) Last() (core.Workbook, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.workbooks) == 0 {
		return core.Workbook{}, false
	}
	return s.workbooks[len(s.workbooks)-1], true
}

func clone(wb core.Workbook) core.Workbook {
	out := wb
	out.Sheets = make([]*core.Sheet, len(wb.Sheets))
	for i, s := range wb.Sheets {
		cp := &core.Sheet{Name: s.Name, Header: append([]string(nil), s.Header...)}
		for _, row := range s.Rows {
			cp.Rows = append(cp.Rows, append([]string(nil), row...))
		}
		out.Sheets[i] = cp
	}
	return out
}
