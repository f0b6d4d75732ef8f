package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"GhostRegime/internal/domain/models"
	domrepo "GhostRegime/internal/domain/repository"
	"GhostRegime/internal/domain/service"
	"GhostRegime/internal/services/history"
	"GhostRegime/internal/services/regime"
	"GhostRegime/internal/services/signals"
	"GhostRegime/pkg/config"
	applogger "GhostRegime/pkg/logger"
)

// Build outcomes, used as the metrics label.
const (
	OutcomeCommitted = "committed"
	OutcomeCached    = "cached"
	OutcomeStale     = "stale"
	OutcomeNotReady  = "not_ready"
	OutcomeBusy      = "busy"
	OutcomeError     = "error"
)

const publishTimeout = 5 * time.Second

// SnapshotBuilder computes, persists and publishes the row of one date. It is the only
// writer of the history store.
type SnapshotBuilder struct {
	gw      service.Gateway
	bank    *signals.Bank
	agg     *regime.Aggregator
	store   *history.Store
	locker  domrepo.DateLocker
	pub     domrepo.SnapshotPublisher
	metrics domrepo.Metrics
	l       *applogger.Logger

	symbols []string
	core    []string
	targets models.SleeveWeights
	lockTTL time.Duration

	now   func() time.Time
	runID func() string

	locksMu sync.Mutex
	locks   map[string]*dateLock

	lastDiag atomic.Pointer[models.Diagnostics]
}

type BuilderOption func(*SnapshotBuilder)

// WithDateLocker adds a cross-process lock per date (Redis in production).
func WithDateLocker(l domrepo.DateLocker) BuilderOption {
	return func(b *SnapshotBuilder) { b.locker = l }
}

func WithPublisher(p domrepo.SnapshotPublisher) BuilderOption {
	return func(b *SnapshotBuilder) { b.pub = p }
}

func WithBuilderMetrics(m domrepo.Metrics) BuilderOption {
	return func(b *SnapshotBuilder) { b.metrics = m }
}

func WithBuilderLogger(l *applogger.Logger) BuilderOption {
	return func(b *SnapshotBuilder) { b.l = l }
}

// WithClock overrides the wall clock used for computed_at.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *SnapshotBuilder) { b.now = now }
}

// WithRunIDs overrides run id generation.
func WithRunIDs(f func() string) BuilderOption {
	return func(b *SnapshotBuilder) { b.runID = f }
}

func NewSnapshotBuilder(cfg config.GhostRegime, gw service.Gateway, bank *signals.Bank, store *history.Store, opts ...BuilderOption) *SnapshotBuilder {
	policy := regime.ConvictionPolicy{
		AgreementWeight: cfg.Conviction.AgreementWeight,
		CoverageWeight:  cfg.Conviction.CoverageWeight,
	}
	b := &SnapshotBuilder{
		gw:      gw,
		bank:    bank,
		agg:     regime.NewAggregator(policy, bank.AxisTotals()),
		store:   store,
		pub:     noopPublisher{},
		l:       applogger.Nop(),
		symbols: cfg.SymbolNames(),
		core:    append([]string(nil), cfg.CoreSymbols...),
		targets: targetWeights(cfg.TargetWeights),
		lockTTL: cfg.BuildLockTTL,
		now:     time.Now,
		runID:   func() string { return uuid.NewString() },
		locks:   make(map[string]*dateLock),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.lockTTL <= 0 {
		b.lockTTL = 5 * time.Minute
	}
	return b
}

func targetWeights(w config.SleeveWeights) models.SleeveWeights {
	return models.SleeveWeights{Stocks: w.Stocks, Gold: w.Gold, BTC: w.BTC}
}

// LastDiagnostics returns the diagnostics of the most recent fetch, or nil.
func (b *SnapshotBuilder) LastDiagnostics() *models.Diagnostics {
	return b.lastDiag.Load()
}

type dateLock struct {
	mu   sync.Mutex
	refs int
}

// lockDate serialises builds of one date within the process. The returned func releases
// the lock and drops the entry once no build holds or waits on it.
func (b *SnapshotBuilder) lockDate(d models.Date) func() {
	key := d.String()
	b.locksMu.Lock()
	l, ok := b.locks[key]
	if !ok {
		l = &dateLock{}
		b.locks[key] = l
	}
	l.refs++
	b.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		b.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(b.locks, key)
		}
		b.locksMu.Unlock()
	}
}

// Build produces the snapshot for date. Without force an existing row is returned as is.
// Missing core symbols never write: the caller gets the latest row on or before date
// marked stale, or NOT_READY when there is none or force is set.
func (b *SnapshotBuilder) Build(ctx context.Context, date models.Date, force bool) (*models.BuildResult, error) {
	start := time.Now()
	outcome := OutcomeError
	defer func() {
		if b.metrics != nil {
			b.metrics.RecordBuild(outcome, time.Since(start).Seconds())
		}
	}()

	if date.IsZero() {
		return nil, models.ErrInvalidInput(models.CodeInvalidDateFormat, "date", "date is required")
	}

	unlock := b.lockDate(date)
	defer unlock()

	if !force {
		if row, ok := b.store.Get(date); ok {
			outcome = OutcomeCached
			return b.cachedResult(row), nil
		}
	}

	if b.locker != nil {
		key := "build:" + date.String()
		acquired, lockErr := b.locker.TryLock(ctx, key, b.lockTTL)
		switch {
		case lockErr != nil:
			// lock backend down: the in-process mutex still holds for this instance
			b.l.Warn("build lock unavailable", applogger.String("date", date.String()), applogger.Error(lockErr))
		case !acquired:
			outcome = OutcomeBusy
			return nil, models.ErrNotReady("snapshot build for "+date.String()+" is running elsewhere", nil)
		default:
			defer func() {
				unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
				defer cancel()
				if err := b.locker.Unlock(unlockCtx, key); err != nil {
					b.l.Warn("build lock release failed", applogger.String("date", date.String()), applogger.Error(err))
				}
			}()
		}
	}

	results, pd := b.gw.FetchAll(ctx, b.symbols, date)
	diag := b.diagnose(date, results, pd)
	b.lastDiag.Store(diag)

	if len(diag.MissingCoreSymbols) > 0 {
		b.l.Warn("core symbols unavailable",
			applogger.String("date", date.String()),
			applogger.Strings("missing", diag.MissingCoreSymbols),
			applogger.Bool("force", force),
		)
		if force {
			outcome = OutcomeNotReady
			return nil, models.ErrNotReady("core symbols unavailable, forced recompute refused", diag)
		}
		prior, ok := b.store.OnOrBefore(date)
		if !ok {
			outcome = OutcomeNotReady
			return nil, models.ErrNotReady("core symbols unavailable and no prior snapshot", diag)
		}
		outcome = OutcomeStale
		return &models.BuildResult{
			Row:         prior.MarkStale(),
			Stale:       true,
			Diagnostics: diag,
			Changes:     []models.Change{models.NoChange},
		}, nil
	}

	series := make(map[string]models.Series, len(results))
	for sym, r := range results {
		if r.OK() {
			series[sym] = *r.Series
		}
	}

	prev, _ := b.store.Before(date)
	row := b.compute(date, series, prev)

	if err := b.store.Commit(ctx, row); err != nil {
		b.l.Error("snapshot commit failed",
			applogger.String("date", date.String()),
			applogger.String("run_id", row.RunID),
			applogger.Error(err),
		)
		return nil, models.ErrInternal(err)
	}
	outcome = OutcomeCommitted
	if b.metrics != nil {
		b.metrics.RecordSnapshot(row)
	}

	changes := history.Diff(row, prev)
	b.publish(ctx, row, force, changes)

	b.l.Info("snapshot committed",
		applogger.String("date", date.String()),
		applogger.String("run_id", row.RunID),
		applogger.String("regime", string(row.Regime)),
		applogger.Bool("force", force),
		applogger.Duration("elapsed", time.Since(start)),
	)
	return &models.BuildResult{Row: row, Diagnostics: diag, Changes: changes}, nil
}

func (b *SnapshotBuilder) cachedResult(row *models.GhostRegimeRow) *models.BuildResult {
	prev, _ := b.store.Before(row.Date)
	return &models.BuildResult{Row: row, Changes: history.Diff(row, prev), Cached: true}
}

func (b *SnapshotBuilder) diagnose(date models.Date, results map[string]models.FetchResult, pd models.ProviderDiagnostics) *models.Diagnostics {
	diag := &models.Diagnostics{
		AsOfDateAttempted:   date,
		MissingCoreSymbols:  []string{},
		CoreSymbolStatus:    make(map[string]string, len(b.core)),
		ProviderDiagnostics: pd,
	}
	for _, sym := range b.core {
		if r, ok := results[sym]; ok && r.OK() {
			diag.CoreSymbolStatus[sym] = models.CoreStatusOK
			continue
		}
		diag.CoreSymbolStatus[sym] = models.CoreStatusMissing
		diag.MissingCoreSymbols = append(diag.MissingCoreSymbols, sym)
	}
	return diag
}

// compute is deterministic in (date, series, prev) apart from computed_at and run_id.
func (b *SnapshotBuilder) compute(date models.Date, series map[string]models.Series, prev *models.GhostRegimeRow) *models.GhostRegimeRow {
	votes := b.bank.Evaluate(series, date)

	priorRisk, priorInfl := priorSigns(prev)
	risk := b.agg.Aggregate(models.AxisRisk, votes, priorRisk)
	infl := b.agg.Aggregate(models.AxisInflation, votes, priorInfl)

	quadrant := regime.Classify(risk.Sign, infl.Sign)
	riskLabel, inflLabel := regime.Labels(quadrant)
	scales := regime.Scale(quadrant, risk)

	return &models.GhostRegimeRow{
		Date:          date,
		Regime:        quadrant,
		RiskRegime:    riskLabel,
		InflationAxis: inflLabel,
		StocksScale:   scales.Stocks,
		GoldScale:     scales.Gold,
		BTCScale:      scales.BTC,
		ScaleLabels:   scales.Labels(),
		Risk:          risk,
		Inflation:     infl,
		Crowded:       risk.Crowded,
		Weights:       regime.Weights(b.targets, scales),
		Votes:         votes,
		ComputedAt:    b.now().UTC(),
		RunID:         b.runID(),
	}
}

// priorSigns are the axis signs of prev, falling back to its regime for rows that carry
// no axis state.
func priorSigns(prev *models.GhostRegimeRow) (risk, inflation int) {
	if prev == nil {
		return 0, 0
	}
	risk, inflation = prev.Risk.Sign, prev.Inflation.Sign
	if risk == 0 || inflation == 0 {
		rs, is := prev.Regime.Signs()
		if risk == 0 {
			risk = rs
		}
		if inflation == 0 {
			inflation = is
		}
	}
	return risk, inflation
}

// publish is best effort; a failed event never fails the build.
func (b *SnapshotBuilder) publish(ctx context.Context, row *models.GhostRegimeRow, forced bool, changes []models.Change) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := &models.SnapshotEvent{
		Type:        models.EventSnapshotCommitted,
		Date:        row.Date,
		Regime:      row.Regime,
		RunID:       row.RunID,
		Forced:      forced,
		Changes:     changes,
		Row:         row.WithoutVotes(),
		CommittedAt: b.now().UTC(),
	}
	if err := b.pub.Publish(pctx, event); err != nil {
		b.l.Warn("snapshot publish failed",
			applogger.String("date", row.Date.String()),
			applogger.String("run_id", row.RunID),
			applogger.Error(err),
		)
		if b.metrics != nil {
			b.metrics.RecordPublishError()
		}
	}
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, *models.SnapshotEvent) error { return nil }

func (noopPublisher) Close() error { return nil }
