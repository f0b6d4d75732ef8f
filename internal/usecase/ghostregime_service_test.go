package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostRegime/internal/domain/models"
)

func TestReadsBeforeSeedingAreNotSeeded(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	_, err := env.svc.Latest(ctx)
	assert.True(t, models.IsKind(err, models.KindNotSeeded))
	_, err = env.svc.Health(ctx)
	assert.True(t, models.IsKind(err, models.KindNotSeeded))
	_, err = env.svc.Today(ctx, models.TodayRequest{})
	assert.True(t, models.IsKind(err, models.KindNotSeeded))
	_, err = env.svc.History(ctx, models.HistoryRequest{})
	assert.True(t, models.IsKind(err, models.KindNotSeeded))
	_, err = env.svc.Explain(ctx, models.ExplainRequest{Date: "2024-01-02"})
	assert.True(t, models.IsKind(err, models.KindNotSeeded))
}

func TestLatestSeededWithoutRowsIsNotReady(t *testing.T) {
	env := newTestEnv(t, true)
	_, err := env.svc.Latest(context.Background())
	assert.True(t, models.IsKind(err, models.KindNotReady))

	h, err := env.svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.HealthNotReady, h.Status)
	assert.Nil(t, h.Latest)
}

func TestLatestStripsVotes(t *testing.T) {
	env := newTestEnv(t, true)
	_, err := env.builder.Build(context.Background(), buildDate, false)
	require.NoError(t, err)

	row, err := env.svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, row.Votes)
	assert.Equal(t, buildDate, row.Date)
}

func TestHealthFreshnessBoundary(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedRow(t, "2024-03-28", models.RegimeGoldilocks)

	env.svc.SetClock(func() time.Time { return time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC) })
	h, err := env.svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.HealthOK, h.Status)
	assert.Equal(t, 4, h.Freshness.AgeDays)
	assert.Equal(t, 4, h.Freshness.MaxAgeDays)
	assert.True(t, h.Freshness.IsFresh)

	env.svc.SetClock(func() time.Time { return time.Date(2024, 4, 2, 0, 0, 1, 0, time.UTC) })
	h, err = env.svc.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.HealthWarn, h.Status)
	assert.Equal(t, 5, h.Freshness.AgeDays)
	assert.False(t, h.Freshness.IsFresh)
}

func TestTodayWithoutRowReturnsStalePrior(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedRow(t, "2024-03-26", models.RegimeDeflation)

	res, err := env.svc.Today(context.Background(), models.TodayRequest{})
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.True(t, res.Row.Stale)
	assert.Equal(t, "2024-03-26", res.Row.Date.String())
	assert.Equal(t, 0, env.gw.callCount())
}

func TestTodayWithoutAnyRowIsNotReady(t *testing.T) {
	env := newTestEnv(t, true)
	_, err := env.svc.Today(context.Background(), models.TodayRequest{})
	assert.True(t, models.IsKind(err, models.KindNotReady))
}

func TestTodayForceAndDebug(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	res, err := env.svc.Today(ctx, models.TodayRequest{Force: true})
	require.NoError(t, err)
	assert.Equal(t, buildDate, res.Row.Date)
	assert.Nil(t, res.Row.Votes)
	require.NotNil(t, res.Diagnostics)

	res, err = env.svc.Today(ctx, models.TodayRequest{Debug: true})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Len(t, res.Row.Votes, 12)
	assert.Equal(t, 1, env.gw.callCount())
}

func TestTodayOnWeekendUsesFriday(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedRow(t, "2024-03-29", models.RegimeGoldilocks)
	env.svc.SetClock(func() time.Time { return time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC) })

	res, err := env.svc.Today(context.Background(), models.TodayRequest{})
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.Equal(t, "2024-03-29", res.Row.Date.String())
}

func TestTodayBeforeScheduledRunServesPreviousDay(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedRow(t, "2024-03-27", models.RegimeGoldilocks)
	env.svc.SetClock(func() time.Time { return time.Date(2024, 3, 28, 10, 0, 0, 0, time.UTC) })

	assert.Equal(t, "2024-03-27", env.svc.AsOf().String())
	res, err := env.svc.Today(context.Background(), models.TodayRequest{})
	require.NoError(t, err)
	assert.False(t, res.Stale)
	assert.False(t, res.Row.Stale)
	assert.True(t, res.Cached)
	assert.Equal(t, "2024-03-27", res.Row.Date.String())
	assert.Nil(t, res.Diagnostics)
	assert.Equal(t, 0, env.gw.callCount())
}

func TestTodayAfterScheduledRunWithoutRowIsStale(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedRow(t, "2024-03-27", models.RegimeGoldilocks)
	env.svc.SetClock(func() time.Time { return time.Date(2024, 3, 28, 22, 30, 0, 0, time.UTC) })

	res, err := env.svc.Today(context.Background(), models.TodayRequest{})
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Equal(t, "2024-03-27", res.Row.Date.String())
}

func TestTodayStaleOnlyCarriesDiagnosticsOfAsOfDate(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()
	env.seedRow(t, "2024-03-26", models.RegimeDeflation)

	// the last fetch was for another date
	_, err := env.builder.Build(ctx, models.MustParseDate("2024-03-22"), true)
	require.NoError(t, err)
	require.NotNil(t, env.builder.LastDiagnostics())

	res, err := env.svc.Today(ctx, models.TodayRequest{})
	require.NoError(t, err)
	assert.True(t, res.Stale)
	assert.Nil(t, res.Diagnostics)

	// a failed scheduled run for the as-of date is reported
	env.gw.setMissing("SPY")
	res, err = env.builder.Build(ctx, buildDate, false)
	require.NoError(t, err)
	require.True(t, res.Stale)

	res, err = env.svc.Today(ctx, models.TodayRequest{})
	require.NoError(t, err)
	assert.True(t, res.Stale)
	require.NotNil(t, res.Diagnostics)
	assert.Equal(t, buildDate, res.Diagnostics.AsOfDateAttempted)
	assert.Contains(t, res.Diagnostics.MissingCoreSymbols, "SPY")
}

func TestHistoryInclusiveRange(t *testing.T) {
	env := newTestEnv(t, true)
	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"} {
		env.seedRow(t, d, models.RegimeGoldilocks)
	}

	res, err := env.svc.History(context.Background(), models.HistoryRequest{StartDate: "2024-01-02", EndDate: "2024-01-04"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "2024-01-02", res.Rows[0].Date.String())
	assert.Equal(t, "2024-01-04", res.Rows[2].Date.String())

	all, err := env.svc.History(context.Background(), models.HistoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)

	empty, err := env.svc.History(context.Background(), models.HistoryRequest{StartDate: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Rows)
}

func TestHistoryValidation(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	_, err := env.svc.History(ctx, models.HistoryRequest{StartDate: "2024-13-01"})
	ee, ok := models.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeInvalidDateFormat, ee.Code)
	assert.Equal(t, "startDate", ee.Field)

	_, err = env.svc.History(ctx, models.HistoryRequest{StartDate: "2024-01-05", EndDate: "2024-01-01"})
	ee, ok = models.AsEngineError(err)
	require.True(t, ok)
	assert.Equal(t, models.CodeInvalidDateRange, ee.Code)
}

func TestExplainRoundTrip(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedRow(t, "2024-03-27", models.RegimeDeflation)
	built, err := env.builder.Build(context.Background(), buildDate, false)
	require.NoError(t, err)

	res, err := env.svc.Explain(context.Background(), models.ExplainRequest{Date: "2024-03-28"})
	require.NoError(t, err)
	assert.Equal(t, built.Row.Votes, res.Row.Votes)
	assert.Equal(t, built.Row.Regime, res.Row.Regime)
	require.NotNil(t, res.PreviousDate)
	assert.Equal(t, "2024-03-27", res.PreviousDate.String())
	assert.Equal(t, "regime", res.Changes[0].Field)
}

func TestExplainErrors(t *testing.T) {
	env := newTestEnv(t, true)
	env.seedRow(t, "2024-03-27", models.RegimeDeflation)
	ctx := context.Background()

	_, err := env.svc.Explain(ctx, models.ExplainRequest{})
	ee, _ := models.AsEngineError(err)
	require.NotNil(t, ee)
	assert.Equal(t, models.CodeMissingDateParameter, ee.Code)

	_, err = env.svc.Explain(ctx, models.ExplainRequest{Date: "2024-02-30"})
	ee, _ = models.AsEngineError(err)
	require.NotNil(t, ee)
	assert.Equal(t, models.CodeInvalidDateFormat, ee.Code)
	assert.Equal(t, models.KindInvalidInput, ee.Kind)

	_, err = env.svc.Explain(ctx, models.ExplainRequest{Date: "2024-03-01"})
	ee, _ = models.AsEngineError(err)
	require.NotNil(t, ee)
	assert.Equal(t, models.CodeDateNotFound, ee.Code)
	assert.Equal(t, []string{"2024-03-27"}, ee.Details["sample_dates"])
}

func TestRecompute(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	_, err := env.svc.Recompute(ctx, models.RecomputeRequest{Date: "28-03-2024"})
	assert.True(t, models.IsKind(err, models.KindInvalidInput))

	// Saturday rolls back to Friday 2024-03-22
	res, err := env.svc.Recompute(ctx, models.RecomputeRequest{Date: "2024-03-23"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-22", res.Row.Date.String())

	res, err = env.svc.Recompute(ctx, models.RecomputeRequest{})
	require.NoError(t, err)
	assert.Equal(t, buildDate, res.Row.Date)
	assert.Equal(t, 2, env.store.Len())
}

func TestRecomputeDefaultBeforeScheduledRunBuildsPreviousDay(t *testing.T) {
	env := newTestEnv(t, true)
	env.svc.SetClock(func() time.Time { return time.Date(2024, 3, 28, 9, 15, 0, 0, time.UTC) })

	res, err := env.svc.Recompute(context.Background(), models.RecomputeRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-27", res.Row.Date.String())
	_, ok := env.store.Get(buildDate)
	assert.False(t, ok)
}
