// Package gateway resolves market symbols through ordered vendor fallback chains.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"GhostRegime/internal/domain/models"
	"GhostRegime/internal/domain/repository"
	"GhostRegime/internal/domain/service"
	"GhostRegime/internal/services/ratelimit"
	"GhostRegime/internal/services/vendors"
	"GhostRegime/pkg/cache"
	"GhostRegime/pkg/config"
	xhttp "GhostRegime/pkg/http"
	applogger "GhostRegime/pkg/logger"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
)

// Gateway implements service.Gateway.
type Gateway struct {
	chains         map[string][]config.ChainEntry
	core           map[string]bool
	vendors        map[string]service.Vendor
	breakers       map[string]*gobreaker.CircuitBreaker
	limiter        *ratelimit.Limiter
	cache          repository.SeriesCache
	cacheTTL       time.Duration
	metrics        repository.Metrics
	l              *applogger.Logger
	lookbackDays   int
	attemptTimeout time.Duration
	maxConcurrency int
}

// Option configures Gateway.
type Option func(*Gateway)

// WithCache keeps resolved series in c for ttl.
func WithCache(c repository.SeriesCache, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.cache = c
		g.cacheTTL = ttl
	}
}

func WithMetrics(m repository.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

func WithLogger(l *applogger.Logger) Option {
	return func(g *Gateway) {
		g.l = l
	}
}

// WithLimiter replaces the limiter built from vendor settings.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(g *Gateway) {
		g.limiter = l
	}
}

// New builds a gateway over the given vendor registry.
func New(cfg config.GhostRegime, vcfg config.Vendors, registry map[string]service.Vendor, opts ...Option) *Gateway {
	g := &Gateway{
		chains:         make(map[string][]config.ChainEntry, len(cfg.Symbols)),
		core:           make(map[string]bool, len(cfg.CoreSymbols)),
		vendors:        registry,
		breakers:       make(map[string]*gobreaker.CircuitBreaker, len(registry)),
		l:              applogger.Nop(),
		lookbackDays:   cfg.LookbackDays,
		attemptTimeout: cfg.FetchTimeout,
		maxConcurrency: cfg.MaxConcurrency,
	}
	for _, s := range cfg.Symbols {
		chain, _ := cfg.Chain(s.Symbol)
		g.chains[s.Symbol] = chain
	}
	for _, s := range cfg.CoreSymbols {
		g.core[s] = true
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.limiter == nil {
		g.limiter = ratelimit.New(ratelimit.Limit{RPS: 1, Burst: 1})
		for name := range registry {
			if vc, ok := vcfg.Lookup(name); ok {
				g.limiter.Configure(name, ratelimit.Limit{RPS: vc.RPS, Burst: vc.Burst})
			}
		}
	}
	for name := range registry {
		bc := config.Breaker{ConsecutiveFailures: 3, Timeout: 30 * time.Second, Interval: time.Minute, MaxRequests: 1}
		if vc, ok := vcfg.Lookup(name); ok {
			bc = vc.Breaker
		}
		g.breakers[name] = g.newBreaker(name, bc)
	}
	if g.lookbackDays <= 0 {
		g.lookbackDays = 420
	}
	if g.attemptTimeout <= 0 {
		g.attemptTimeout = 15 * time.Second
	}
	if g.maxConcurrency <= 0 {
		g.maxConcurrency = 4
	}
	return g
}

func (g *Gateway) newBreaker(name string, bc config.Breaker) *gobreaker.CircuitBreaker {
	threshold := bc.ConsecutiveFailures
	if threshold == 0 {
		threshold = 3
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// an empty answer or a missing key says nothing about vendor health
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, vendors.ErrNoData) ||
				errors.Is(err, vendors.ErrNoAPIKey) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.l.Warn("vendor breaker state change",
				applogger.String("vendor", name),
				applogger.String("from", from.String()),
				applogger.String("to", to.String()),
			)
			if g.metrics != nil {
				g.metrics.RecordBreakerState(name, to.String())
			}
		},
	})
}

// FetchSeries walks the symbol's chain until one vendor yields a non-empty series ≤ asOf.
func (g *Gateway) FetchSeries(ctx context.Context, symbol string, asOf models.Date) models.FetchResult {
	chain, ok := g.chains[symbol]
	if !ok || len(chain) == 0 {
		return models.Unavailable(symbol, []models.FetchAttempt{{ID: symbol, Error: "no vendor chain configured"}})
	}

	from := asOf.AddDays(-g.lookbackDays)
	attempts := make([]models.FetchAttempt, 0, len(chain))
	for i, entry := range chain {
		attempt := models.FetchAttempt{Vendor: entry.Vendor, ID: entry.ID}

		series, err := g.attempt(ctx, symbol, entry, from, asOf)
		if err != nil {
			attempt.Error = err.Error()
			attempts = append(attempts, attempt)
			g.l.Warn("vendor attempt failed",
				applogger.String("symbol", symbol),
				applogger.String("vendor", entry.Vendor),
				applogger.String("id", entry.ID),
				applogger.Error(err),
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		attempts = append(attempts, attempt)
		return models.Resolved(symbol, series, attempts, i > 0)
	}

	return models.Unavailable(symbol, attempts)
}

func (g *Gateway) attempt(ctx context.Context, symbol string, entry config.ChainEntry, from, asOf models.Date) (models.Series, error) {
	vendor, ok := g.vendors[entry.Vendor]
	if !ok {
		return models.Series{}, fmt.Errorf("vendor %s not enabled", entry.Vendor)
	}

	key := seriesKey(entry, asOf)
	if cached, ok := g.cached(ctx, key); ok {
		return cached, nil
	}

	actx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
	defer cancel()

	if err := g.limiter.Wait(actx, entry.Vendor); err != nil {
		g.record(entry.Vendor, "rate_limited", 0)
		return models.Series{}, g.describe(err)
	}

	start := time.Now()
	out, err := g.breakers[entry.Vendor].Execute(func() (interface{}, error) {
		return vendor.FetchDaily(actx, entry.ID, from, asOf)
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		result := "error"
		var se *xhttp.StatusError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			result = "breaker_open"
		case errors.As(err, &se) && se.Throttled():
			result = "throttled"
		}
		g.record(entry.Vendor, result, elapsed)
		return models.Series{}, g.describe(err)
	}

	bars, _ := out.([]models.Bar)
	series := models.NewSeries(symbol, bars, models.Provenance{Vendor: entry.Vendor, ResolvedID: entry.ID}).Truncate(asOf)
	if series.Len() == 0 {
		g.record(entry.Vendor, "empty", elapsed)
		return models.Series{}, fmt.Errorf("%s %s: %w", entry.Vendor, entry.ID, vendors.ErrNoData)
	}
	g.record(entry.Vendor, "ok", elapsed)
	g.store(ctx, key, series)
	return series, nil
}

func (g *Gateway) describe(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timeout after %s: %w", g.attemptTimeout, err)
	}
	return err
}

func (g *Gateway) record(vendor, result string, seconds float64) {
	if g.metrics != nil {
		g.metrics.RecordVendorAttempt(vendor, result, seconds)
	}
}

func seriesKey(entry config.ChainEntry, asOf models.Date) string {
	return cache.GenerateKeyWithParams("series", entry.Vendor, entry.ID, asOf.String())
}

func (g *Gateway) cached(ctx context.Context, key string) (models.Series, bool) {
	if g.cache == nil {
		return models.Series{}, false
	}
	data, err := g.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			g.l.Debug("series cache read failed", applogger.String("key", key), applogger.Error(err))
		}
		return models.Series{}, false
	}
	var s models.Series
	if err := json.Unmarshal(data, &s); err != nil || s.Len() == 0 {
		return models.Series{}, false
	}
	return s, true
}

func (g *Gateway) store(ctx context.Context, key string, s models.Series) {
	if g.cache == nil {
		return
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, key, data, g.cacheTTL); err != nil {
		g.l.Debug("series cache write failed", applogger.String("key", key), applogger.Error(err))
	}
}

// FetchAll resolves symbols concurrently. Failures are per symbol and end up in the diagnostics.
func (g *Gateway) FetchAll(ctx context.Context, symbols []string, asOf models.Date) (map[string]models.FetchResult, models.ProviderDiagnostics) {
	results := make(map[string]models.FetchResult, len(symbols))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.maxConcurrency)
	for _, sym := range symbols {
		sym := sym
		eg.Go(func() error {
			res := g.FetchSeries(egCtx, sym, asOf)
			mu.Lock()
			results[sym] = res
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	diag := models.NewProviderDiagnostics()
	for _, sym := range symbols {
		res := results[sym]
		for _, a := range res.Attempts {
			if a.Error != "" {
				diag.Errors[sym] = append(diag.Errors[sym], models.VendorError{Vendor: a.Vendor, Error: a.Error})
			}
		}
		if !res.OK() {
			if g.metrics != nil {
				g.metrics.RecordSymbolUnavailable(sym, g.core[sym])
			}
			continue
		}
		key := res.Series.Provenance.Key()
		diag.ResolvedIDs[sym] = key
		if res.Proxy {
			diag.Proxies[sym] = key
		}
	}
	return results, diag
}
