// Package history holds the process-wide, lock-free view of committed GhostRegime rows.
package history

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"GhostRegime/internal/domain/models"
	domrepo "GhostRegime/internal/domain/repository"
	applogger "GhostRegime/pkg/logger"
)

// arena is an immutable snapshot: rows ascending by date, one per date.
type arena struct {
	rows   []*models.GhostRegimeRow
	seeded bool
}

func (a *arena) search(d models.Date) int {
	return sort.Search(len(a.rows), func(i int) bool { return !a.rows[i].Date.Before(d) })
}

// Store serves reads from an atomically published arena. Rows handed out are shared and
// must not be mutated; use Clone before changing one.
type Store struct {
	repo    domrepo.HistoryRepository
	l       *applogger.Logger
	current atomic.Pointer[arena]
	// writeMu serialises commits; readers never take it.
	writeMu sync.Mutex
}

func NewStore(repo domrepo.HistoryRepository, l *applogger.Logger) *Store {
	if l == nil {
		l = applogger.Nop()
	}
	s := &Store{repo: repo, l: l}
	s.current.Store(&arena{})
	return s
}

// Load replaces the arena with what the repository holds.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rows, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	seeded, err := s.repo.Seeded(ctx)
	if err != nil {
		return fmt.Errorf("load seeded marker: %w", err)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	dedup := rows[:0]
	for _, r := range rows {
		if n := len(dedup); n > 0 && dedup[n-1].Date.Equal(r.Date) {
			dedup[n-1] = r
			continue
		}
		dedup = append(dedup, r)
	}
	s.current.Store(&arena{rows: dedup, seeded: seeded})

	s.l.Info("history loaded", applogger.Int("rows", len(dedup)), applogger.Bool("seeded", seeded))
	return nil
}

// Commit persists row, then publishes a new arena containing it. A row for the same date
// is replaced in place.
func (s *Store) Commit(ctx context.Context, row *models.GhostRegimeRow) error {
	if row == nil || row.Date.IsZero() {
		return fmt.Errorf("commit: row without date")
	}
	row = row.Clone()
	row.Stale = false

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Upsert(ctx, row); err != nil {
		return fmt.Errorf("commit %s: %w", row.Date, err)
	}

	old := s.current.Load()
	idx := old.search(row.Date)
	replace := idx < len(old.rows) && old.rows[idx].Date.Equal(row.Date)

	size := len(old.rows) + 1
	if replace {
		size--
	}
	rows := make([]*models.GhostRegimeRow, 0, size)
	rows = append(rows, old.rows[:idx]...)
	rows = append(rows, row)
	if replace {
		rows = append(rows, old.rows[idx+1:]...)
	} else {
		rows = append(rows, old.rows[idx:]...)
	}
	s.current.Store(&arena{rows: rows, seeded: old.seeded})
	return nil
}

// MarkSeeded writes the seeded marker and flips it in the arena.
func (s *Store) MarkSeeded(ctx context.Context, source string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.MarkSeeded(ctx, source); err != nil {
		return fmt.Errorf("mark seeded: %w", err)
	}
	old := s.current.Load()
	s.current.Store(&arena{rows: old.rows, seeded: true})
	return nil
}

func (s *Store) Seeded() bool { return s.current.Load().seeded }

func (s *Store) Len() int { return len(s.current.Load().rows) }

// Get is a point lookup.
func (s *Store) Get(d models.Date) (*models.GhostRegimeRow, bool) {
	a := s.current.Load()
	i := a.search(d)
	if i < len(a.rows) && a.rows[i].Date.Equal(d) {
		return a.rows[i], true
	}
	return nil, false
}

// Latest returns the row with the greatest date.
func (s *Store) Latest() (*models.GhostRegimeRow, bool) {
	a := s.current.Load()
	if len(a.rows) == 0 {
		return nil, false
	}
	return a.rows[len(a.rows)-1], true
}

// Before returns the latest row strictly before d.
func (s *Store) Before(d models.Date) (*models.GhostRegimeRow, bool) {
	a := s.current.Load()
	i := a.search(d)
	if i == 0 {
		return nil, false
	}
	return a.rows[i-1], true
}

// OnOrBefore returns the row for d, or the latest one before it.
func (s *Store) OnOrBefore(d models.Date) (*models.GhostRegimeRow, bool) {
	if r, ok := s.Get(d); ok {
		return r, true
	}
	return s.Before(d)
}

// Range returns rows with start <= date <= end, ascending. A zero bound is open.
func (s *Store) Range(start, end models.Date) []*models.GhostRegimeRow {
	a := s.current.Load()
	lo := 0
	if !start.IsZero() {
		lo = a.search(start)
	}
	hi := len(a.rows)
	if !end.IsZero() {
		hi = a.search(end.AddDays(1))
	}
	if lo >= hi {
		return []*models.GhostRegimeRow{}
	}
	out := make([]*models.GhostRegimeRow, hi-lo)
	copy(out, a.rows[lo:hi])
	return out
}

// SampleDates lists up to n of the most recent dates, newest first.
func (s *Store) SampleDates(n int) []string {
	a := s.current.Load()
	if n > len(a.rows) {
		n = len(a.rows)
	}
	out := make([]string, 0, n)
	for i := len(a.rows) - 1; i >= len(a.rows)-n; i-- {
		out = append(out, a.rows[i].Date.String())
	}
	return out
}
