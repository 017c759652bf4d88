// Package memory is an in-process export sink used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"sync"

	"carteira/internal/sheets"
)

type Sink struct {
	mu   sync.Mutex
	rows []sheets.Row
}

var _ sheets.Sink = (*Sink)(nil)

func New() *Sink {
	return &Sink{}
}

func (s *Sink) AppendRows(_ context.Context, rows []sheets.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *Sink) DeleteRows(_ context.Context, ids []string) (int, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	for _, r := range s.rows {
		if _, ok := drop[r.ID]; !ok {
			kept = append(kept, r)
		}
	}
	n := len(s.rows) - len(kept)
	s.rows = kept
	return n, nil
}

// Rows returns a copy of the exported rows in append order.
func (s *Sink) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...)
}
