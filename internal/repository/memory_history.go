package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"GhostRegime/internal/domain/models"
	domrepo "GhostRegime/internal/domain/repository"
)

// MemoryHistory keeps rows in process. Used for local runs and tests.
type MemoryHistory struct {
	mu     sync.RWMutex
	rows   map[string]*models.GhostRegimeRow
	seeded bool
	source string
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{rows: make(map[string]*models.GhostRegimeRow)}
}

var _ domrepo.HistoryRepository = (*MemoryHistory)(nil)

func (m *MemoryHistory) Init(ctx context.Context) error { return nil }

func (m *MemoryHistory) LoadAll(ctx context.Context) ([]*models.GhostRegimeRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.GhostRegimeRow, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryHistory) Upsert(ctx context.Context, row *models.GhostRegimeRow) error {
	if row == nil || row.Date.IsZero() {
		return errors.New("upsert: row without date")
	}
	m.mu.Lock()
	m.rows[row.Date.String()] = row.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryHistory) Seeded(ctx context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seeded, nil
}

func (m *MemoryHistory) MarkSeeded(ctx context.Context, source string) error {
	m.mu.Lock()
	m.seeded, m.source = true, source
	m.mu.Unlock()
	return nil
}

func (m *MemoryHistory) Health(ctx context.Context) error { return nil }

func (m *MemoryHistory) Close() error { return nil }
