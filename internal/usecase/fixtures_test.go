package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"GhostRegime/internal/domain/models"
	"GhostRegime/internal/repository"
	"GhostRegime/internal/services/history"
	"GhostRegime/internal/services/signals"
	"GhostRegime/pkg/config"
)

var buildDate = models.MustParseDate("2024-03-28")

// trending returns daily bars around buildDate moving linearly by step per day.
func trending(symbol string, start, step float64) models.Series {
	first := buildDate.AddDays(-399)
	bars := make([]models.Bar, 0, 406)
	for i := 0; i < 406; i++ {
		bars = append(bars, models.Bar{Date: first.AddDays(i), Close: start + float64(i)*step})
	}
	return models.NewSeries(symbol, bars, models.Provenance{Vendor: "stooq", ResolvedID: strings.ToLower(symbol)})
}

// reflationSeries votes risk-on and inflationary on every signal.
func reflationSeries() map[string]models.Series {
	return map[string]models.Series{
		"SPY": trending("SPY", 400, 0.5),
		"VIX": trending("VIX", 15, 0),
		"HYG": trending("HYG", 70, 0.05),
		"LQD": trending("LQD", 100, 0),
		"BTC": trending("BTC", 20000, 50),
		"UUP": trending("UUP", 30, -0.02),
		"DBC": trending("DBC", 20, 0.02),
		"TIP": trending("TIP", 100, 0.02),
		"IEF": trending("IEF", 100, 0),
		"GLD": trending("GLD", 170, 0.1),
		"TNX": trending("TNX", 3.5, 0.005),
		"USO": trending("USO", 60, 0.1),
	}
}

type fakeGateway struct {
	mu      sync.Mutex
	series  map[string]models.Series
	missing map[string]bool
	calls   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{series: reflationSeries(), missing: map[string]bool{}}
}

func (f *fakeGateway) setMissing(symbols ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing = map[string]bool{}
	for _, s := range symbols {
		f.missing[s] = true
	}
}

func (f *fakeGateway) FetchSeries(ctx context.Context, symbol string, asOf models.Date) models.FetchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := strings.ToLower(symbol)
	s, ok := f.series[symbol]
	if !ok || f.missing[symbol] {
		return models.Unavailable(symbol, []models.FetchAttempt{{Vendor: "stooq", ID: id, Error: "no data"}})
	}
	return models.Resolved(symbol, s.Truncate(asOf), []models.FetchAttempt{{Vendor: "stooq", ID: id}}, false)
}

func (f *fakeGateway) FetchAll(ctx context.Context, symbols []string, asOf models.Date) (map[string]models.FetchResult, models.ProviderDiagnostics) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	out := make(map[string]models.FetchResult, len(symbols))
	pd := models.NewProviderDiagnostics()
	for _, sym := range symbols {
		r := f.FetchSeries(ctx, sym, asOf)
		out[sym] = r
		if r.OK() {
			pd.ResolvedIDs[sym] = r.Series.Provenance.Key()
			continue
		}
		for _, a := range r.Attempts {
			pd.Errors[sym] = append(pd.Errors[sym], models.VendorError{Vendor: a.Vendor, Error: a.Error})
		}
	}
	return out, pd
}

func (f *fakeGateway) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.SnapshotEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e *models.SnapshotEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type countingMetrics struct {
	mu       sync.Mutex
	builds   map[string]int
	publish  int
	snapshot int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{builds: map[string]int{}}
}

func (m *countingMetrics) RecordVendorAttempt(string, string, float64) {}
func (m *countingMetrics) RecordSymbolUnavailable(string, bool)        {}
func (m *countingMetrics) RecordBreakerState(string, string)           {}

func (m *countingMetrics) RecordBuild(outcome string, _ float64) {
	m.mu.Lock()
	m.builds[outcome]++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordSnapshot(*models.GhostRegimeRow) {
	m.mu.Lock()
	m.snapshot++
	m.mu.Unlock()
}

func (m *countingMetrics) RecordPublishError() {
	m.mu.Lock()
	m.publish++
	m.mu.Unlock()
}

type testEnv struct {
	cfg     config.GhostRegime
	repo    *repository.MemoryHistory
	store   *history.Store
	gw      *fakeGateway
	pub     *recordingPublisher
	metrics *countingMetrics
	builder *SnapshotBuilder
	svc     *GhostRegimeService
}

func newTestEnv(t *testing.T, seeded bool, opts ...BuilderOption) *testEnv {
	t.Helper()
	env := &testEnv{
		cfg:     config.Default().GhostRegime,
		repo:    repository.NewMemoryHistory(),
		gw:      newFakeGateway(),
		pub:     &recordingPublisher{},
		metrics: newCountingMetrics(),
	}
	ctx := context.Background()
	if seeded {
		require.NoError(t, env.repo.MarkSeeded(ctx, "test"))
	}
	env.store = history.NewStore(env.repo, nil)
	require.NoError(t, env.store.Load(ctx))

	n := 0
	base := []BuilderOption{
		WithPublisher(env.pub),
		WithBuilderMetrics(env.metrics),
		WithClock(func() time.Time { return time.Date(2024, 3, 28, 22, 30, 0, 0, time.UTC) }),
		WithRunIDs(func() string { n++; return fmt.Sprintf("run-%d", n) }),
	}
	env.builder = NewSnapshotBuilder(env.cfg, env.gw, signals.NewBank(), env.store, append(base, opts...)...)
	env.svc = NewGhostRegimeService(env.cfg, env.store, env.builder)
	env.svc.SetClock(func() time.Time { return time.Date(2024, 3, 28, 23, 0, 0, 0, time.UTC) })
	return env
}

// seedRow commits a minimal historical row directly.
func (e *testEnv) seedRow(t *testing.T, date string, r models.Regime) *models.GhostRegimeRow {
	t.Helper()
	row := &models.GhostRegimeRow{
		Date:        models.MustParseDate(date),
		Regime:      r,
		StocksScale: models.ScaleHalf,
		GoldScale:   models.ScaleHalf,
		BTCScale:    models.ScaleOff,
		RunID:       "seed",
	}
	row.RiskRegime, row.InflationAxis = models.RiskOff, models.DisinflationLabel
	require.NoError(t, e.store.Commit(context.Background(), row))
	return row
}

var errBoom = errors.New("boom")
