package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostRegime/internal/domain/models"
	pkgch "GhostRegime/pkg/clickhouse"
)

func sampleRow(date string) *models.GhostRegimeRow {
	return &models.GhostRegimeRow{
		Date:          models.MustParseDate(date),
		Regime:        models.RegimeGoldilocks,
		RiskRegime:    models.RiskOn,
		InflationAxis: models.DisinflationLabel,
		StocksScale:   models.ScaleFull,
		GoldScale:     models.ScaleHalf,
		BTCScale:      models.ScaleHalf,
		ComputedAt:    time.Date(2024, 1, 2, 22, 30, 0, 0, time.UTC),
		RunID:         "run-1",
	}
}

func newMockHistory(t *testing.T) (*CHHistory, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCHHistory(pkgch.NewClientFromDB(db), nil).(*CHHistory), mock
}

func TestCHHistoryInitCreatesTables(t *testing.T) {
	s, mock := newMockHistory(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ghostregime_rows").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS ghostregime_meta").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHHistoryUpsert(t *testing.T) {
	s, mock := newMockHistory(t)
	row := sampleRow("2024-01-02")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ghostregime_rows")).
		WithArgs(row.Date.Time(), "GOLDILOCKS", "RISK ON", "DISINFLATION", 1.0, 0.5, 0.5, "run-1", row.ComputedAt, sqlmock.AnyArg(), uint64(row.ComputedAt.UnixNano())).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Upsert(context.Background(), row))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCHHistoryUpsertRejectsMissingDate(t *testing.T) {
	s, _ := newMockHistory(t)
	assert.Error(t, s.Upsert(context.Background(), &models.GhostRegimeRow{}))
}

func TestCHHistoryLoadAllDecodesPayload(t *testing.T) {
	s, mock := newMockHistory(t)
	a, err := json.Marshal(sampleRow("2024-01-02"))
	require.NoError(t, err)
	b, err := json.Marshal(sampleRow("2024-01-03"))
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM ghostregime_rows FINAL ORDER BY date ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(string(a)).AddRow(string(b)))

	rows, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-03", rows[1].Date.String())
	assert.Equal(t, models.RegimeGoldilocks, rows[0].Regime)
	assert.Equal(t, models.ScaleHalf, rows[0].GoldScale)
}

func TestCHHistoryLoadAllBadPayload(t *testing.T) {
	s, mock := newMockHistory(t)
	mock.ExpectQuery("SELECT payload").WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow("{"))

	_, err := s.LoadAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode history row")
}

func TestCHHistorySeededMarker(t *testing.T) {
	s, mock := newMockHistory(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count() FROM ghostregime_meta FINAL WHERE key = ?")).
		WithArgs("seeded").
		WillReturnRows(sqlmock.NewRows([]string{"count()"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ghostregime_meta")).
		WithArgs("seeded", "history.jsonl", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT count").
		WithArgs("seeded").
		WillReturnRows(sqlmock.NewRows([]string{"count()"}).AddRow(1))

	ctx := context.Background()
	ok, err := s.Seeded(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.MarkSeeded(ctx, "history.jsonl"))

	ok, err = s.Seeded(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryHistoryReplacesSameDate(t *testing.T) {
	m := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, sampleRow("2024-01-03")))
	require.NoError(t, m.Upsert(ctx, sampleRow("2024-01-02")))

	replaced := sampleRow("2024-01-03")
	replaced.Regime = models.RegimeDeflation
	require.NoError(t, m.Upsert(ctx, replaced))

	rows, err := m.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01-02", rows[0].Date.String())
	assert.Equal(t, models.RegimeDeflation, rows[1].Regime)

	// stored copies are isolated from the caller
	replaced.Regime = models.RegimeInflation
	rows, _ = m.LoadAll(ctx)
	assert.Equal(t, models.RegimeDeflation, rows[1].Regime)
}

type recordingProducer struct {
	topic   string
	key     []byte
	value   interface{}
	headers map[string]string
	closed  bool
}

func (r *recordingProducer) Publish(ctx context.Context, topic string, key []byte, value interface{}, headers map[string]string) error {
	r.topic, r.key, r.value, r.headers = topic, key, value, headers
	return nil
}

func (r *recordingProducer) Close() error {
	r.closed = true
	return nil
}

func TestKafkaSnapshotPublisherKeysByDate(t *testing.T) {
	rec := &recordingProducer{}
	p := NewKafkaSnapshotPublisher(rec, "ghostregime.snapshots")
	e := &models.SnapshotEvent{Type: models.EventSnapshotCommitted, Date: models.MustParseDate("2024-01-02"), RunID: "run-1"}

	require.NoError(t, p.Publish(context.Background(), e))
	assert.Equal(t, "ghostregime.snapshots", rec.topic)
	assert.Equal(t, []byte("2024-01-02"), rec.key)
	assert.Equal(t, e, rec.value)
	assert.Equal(t, "snapshot.committed", rec.headers["event"])

	require.NoError(t, p.Close())
	assert.True(t, rec.closed)
}
