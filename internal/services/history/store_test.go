package history

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostRegime/internal/domain/models"
	"GhostRegime/internal/repository"
)

func row(date string, regime models.Regime) *models.GhostRegimeRow {
	return &models.GhostRegimeRow{Date: models.MustParseDate(date), Regime: regime}
}

func loadedStore(t *testing.T, dates ...string) (*Store, *repository.MemoryHistory) {
	t.Helper()
	repo := repository.NewMemoryHistory()
	ctx := context.Background()
	for _, d := range dates {
		require.NoError(t, repo.Upsert(ctx, row(d, models.RegimeGoldilocks)))
	}
	require.NoError(t, repo.MarkSeeded(ctx, "test"))
	s := NewStore(repo, nil)
	require.NoError(t, s.Load(ctx))
	return s, repo
}

func TestStoreEmpty(t *testing.T) {
	s := NewStore(repository.NewMemoryHistory(), nil)
	_, ok := s.Latest()
	assert.False(t, ok)
	assert.False(t, s.Seeded())
	assert.Empty(t, s.Range(models.Date{}, models.Date{}))
	assert.NotNil(t, s.Range(models.Date{}, models.Date{}))
	assert.Empty(t, s.SampleDates(10))
}

func TestStoreRangeInclusive(t *testing.T) {
	s, _ := loadedStore(t, "2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05")

	got := s.Range(models.MustParseDate("2024-01-02"), models.MustParseDate("2024-01-04"))
	require.Len(t, got, 3)
	assert.Equal(t, "2024-01-02", got[0].Date.String())
	assert.Equal(t, "2024-01-04", got[2].Date.String())

	assert.Len(t, s.Range(models.Date{}, models.MustParseDate("2024-01-02")), 2)
	assert.Len(t, s.Range(models.MustParseDate("2024-01-04"), models.Date{}), 2)
	assert.Empty(t, s.Range(models.MustParseDate("2024-02-01"), models.MustParseDate("2024-02-05")))
}

func TestStoreLookups(t *testing.T) {
	s, _ := loadedStore(t, "2024-01-02", "2024-01-05", "2024-01-08")
	assert.True(t, s.Seeded())

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "2024-01-08", latest.Date.String())

	_, ok = s.Get(models.MustParseDate("2024-01-03"))
	assert.False(t, ok)

	prev, ok := s.Before(models.MustParseDate("2024-01-05"))
	require.True(t, ok)
	assert.Equal(t, "2024-01-02", prev.Date.String())

	_, ok = s.Before(models.MustParseDate("2024-01-02"))
	assert.False(t, ok)

	onOrBefore, ok := s.OnOrBefore(models.MustParseDate("2024-01-07"))
	require.True(t, ok)
	assert.Equal(t, "2024-01-05", onOrBefore.Date.String())

	assert.Equal(t, []string{"2024-01-08", "2024-01-05"}, s.SampleDates(2))
	assert.Len(t, s.SampleDates(10), 3)
}

func TestStoreCommitInsertsAndReplaces(t *testing.T) {
	s, repo := loadedStore(t, "2024-01-02", "2024-01-04")
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, row("2024-01-03", models.RegimeReflation)))
	assert.Equal(t, 3, s.Len())
	mid, ok := s.Get(models.MustParseDate("2024-01-03"))
	require.True(t, ok)
	assert.Equal(t, models.RegimeReflation, mid.Regime)

	before := s.Range(models.Date{}, models.Date{})

	replacement := row("2024-01-03", models.RegimeDeflation)
	replacement.Stale = true
	require.NoError(t, s.Commit(ctx, replacement))
	assert.Equal(t, 3, s.Len())
	mid, _ = s.Get(models.MustParseDate("2024-01-03"))
	assert.Equal(t, models.RegimeDeflation, mid.Regime)
	assert.False(t, mid.Stale)

	// earlier readers keep their snapshot
	assert.Equal(t, models.RegimeReflation, before[1].Regime)

	persisted, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, 3)
}

type failingRepo struct {
	*repository.MemoryHistory
}

func (failingRepo) Upsert(ctx context.Context, r *models.GhostRegimeRow) error {
	return errors.New("disk full")
}

func TestStoreCommitFailureLeavesArena(t *testing.T) {
	s := NewStore(failingRepo{repository.NewMemoryHistory()}, nil)
	err := s.Commit(context.Background(), row("2024-01-02", models.RegimeGoldilocks))
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestStoreMarkSeeded(t *testing.T) {
	s := NewStore(repository.NewMemoryHistory(), nil)
	require.NoError(t, s.MarkSeeded(context.Background(), "file"))
	assert.True(t, s.Seeded())
}
