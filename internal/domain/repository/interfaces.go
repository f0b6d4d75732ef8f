package repository

import (
	"context"
	"time"

	"GhostRegime/internal/domain/models"
)

// HistoryRepository is the durable home of GhostRegime rows.
type HistoryRepository interface {
	Init(ctx context.Context) error // ensure tables
	LoadAll(ctx context.Context) ([]*models.GhostRegimeRow, error)
	// Upsert replaces any existing row for the same date.
	Upsert(ctx context.Context, row *models.GhostRegimeRow) error
	Seeded(ctx context.Context) (bool, error)
	MarkSeeded(ctx context.Context, source string) error
	Health(ctx context.Context) error // ping
	Close() error
}

// SnapshotPublisher fans committed snapshots out to downstream consumers.
type SnapshotPublisher interface {
	Publish(ctx context.Context, event *models.SnapshotEvent) error
	Close() error
}

// DateLocker serialises writers of one date across processes.
type DateLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// SeriesCache keeps resolved vendor series between runs.
type SeriesCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Metrics interface {
	RecordVendorAttempt(vendor, result string, seconds float64)
	RecordSymbolUnavailable(symbol string, core bool)
	RecordBreakerState(vendor, state string)
	RecordBuild(outcome string, seconds float64)
	RecordSnapshot(row *models.GhostRegimeRow)
	RecordPublishError()
}
