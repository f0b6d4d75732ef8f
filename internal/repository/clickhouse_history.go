package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"GhostRegime/internal/domain/models"
	domrepo "GhostRegime/internal/domain/repository"
	pkgch "GhostRegime/pkg/clickhouse"
	applogger "GhostRegime/pkg/logger"
)

const (
	rowsTable = "ghostregime_rows"
	metaTable = "ghostregime_meta"
	seededKey = "seeded"
)

// HistorySchema is idempotent DDL for the history tables. ReplacingMergeTree keeps the
// highest version per date, so a forced recompute replaces the row in place.
var HistorySchema = []string{
	`CREATE TABLE IF NOT EXISTS ` + rowsTable + ` (
		date Date,
		regime LowCardinality(String),
		risk_regime LowCardinality(String),
		inflation_axis LowCardinality(String),
		stocks_scale Float64,
		gold_scale Float64,
		btc_scale Float64,
		run_id String,
		computed_at DateTime64(3, 'UTC'),
		payload String,
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	ORDER BY date`,
	`CREATE TABLE IF NOT EXISTS ` + metaTable + ` (
		key String,
		value String,
		updated_at DateTime64(3, 'UTC'),
		version UInt64
	) ENGINE = ReplacingMergeTree(version)
	ORDER BY key`,
}

// CHHistory stores rows in ClickHouse. The full row is kept as a JSON payload; the
// scalar columns exist for ad-hoc queries.
type CHHistory struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHHistory(ch *pkgch.Client, l *applogger.Logger) domrepo.HistoryRepository {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHHistory{ch: ch, db: ch.DB(), l: l}
}

func (s *CHHistory) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, HistorySchema)
}

func (s *CHHistory) LoadAll(ctx context.Context) ([]*models.GhostRegimeRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM `+rowsTable+` FINAL ORDER BY date ASC`)
	if err != nil {
		s.l.Error("clickhouse load history query error", applogger.Error(err))
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.GhostRegimeRow, 0, 512)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		var r models.GhostRegimeRow
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("decode history row: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHHistory) Upsert(ctx context.Context, row *models.GhostRegimeRow) error {
	if row == nil || row.Date.IsZero() {
		return errors.New("upsert: row without date")
	}
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row %s: %w", row.Date, err)
	}
	const q = `INSERT INTO ` + rowsTable + ` (date, regime, risk_regime, inflation_axis, stocks_scale, gold_scale, btc_scale, run_id, computed_at, payload, version) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.ch.Exec(ctx, q,
		row.Date.Time(),
		string(row.Regime),
		row.RiskRegime,
		row.InflationAxis,
		float64(row.StocksScale),
		float64(row.GoldScale),
		float64(row.BTCScale),
		row.RunID,
		row.ComputedAt.UTC(),
		string(payload),
		version(row.ComputedAt),
	)
	if err != nil {
		s.l.Error("clickhouse upsert row error",
			applogger.String("date", row.Date.String()),
			applogger.String("run_id", row.RunID),
			applogger.Error(err),
		)
		return fmt.Errorf("upsert row %s: %w", row.Date, err)
	}
	return nil
}

func (s *CHHistory) Seeded(ctx context.Context) (bool, error) {
	var n uint64
	err := s.db.QueryRowContext(ctx, `SELECT count() FROM `+metaTable+` FINAL WHERE key = ?`, seededKey).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("read seeded marker: %w", err)
	}
	return n > 0, nil
}

func (s *CHHistory) MarkSeeded(ctx context.Context, source string) error {
	now := time.Now().UTC()
	_, err := s.ch.Exec(ctx,
		`INSERT INTO `+metaTable+` (key, value, updated_at, version) VALUES (?, ?, ?, ?)`,
		seededKey, source, now, version(now),
	)
	if err != nil {
		return fmt.Errorf("write seeded marker: %w", err)
	}
	return nil
}

func (s *CHHistory) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

// Close releases the connection pool.
func (s *CHHistory) Close() error {
	return s.ch.Close()
}

func version(t time.Time) uint64 {
	if t.IsZero() {
		t = time.Now()
	}
	return uint64(t.UnixNano())
}
