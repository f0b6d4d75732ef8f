package metrics

import (
	"GhostRegime/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	vendorAttempts    *prometheus.CounterVec
	vendorLatency     *prometheus.HistogramVec
	symbolUnavailable *prometheus.CounterVec
	breakerState      *prometheus.GaugeVec
	builds            *prometheus.CounterVec
	buildLatency      *prometheus.HistogramVec
	regime            *prometheus.GaugeVec
	conviction        *prometheus.GaugeVec
	scale             *prometheus.GaugeVec
	publishErrors     prometheus.Counter
}

// New creates a recorder on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder on reg. Tests pass a fresh prometheus.NewRegistry().
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		vendorAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostregime_vendor_attempts_total",
				Help: "Vendor fetch attempts by outcome",
			},
			[]string{"vendor", "result"},
		),
		vendorLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghostregime_vendor_fetch_duration_seconds",
				Help:    "Duration of vendor fetch attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"vendor"},
		),
		symbolUnavailable: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostregime_symbol_unavailable_total",
				Help: "Symbols that no vendor in the chain could resolve",
			},
			[]string{"symbol", "core"},
		),
		breakerState: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ghostregime_vendor_breaker_open",
				Help: "1 when the vendor circuit breaker is open, 0.5 half-open, 0 closed",
			},
			[]string{"vendor"},
		),
		builds: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostregime_snapshot_builds_total",
				Help: "Snapshot builds by outcome (fresh, cached, stale, not_ready, error)",
			},
			[]string{"outcome"},
		),
		buildLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghostregime_snapshot_build_duration_seconds",
				Help:    "Duration of snapshot builds in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		regime: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ghostregime_current_regime",
				Help: "1 for the regime of the latest committed snapshot",
			},
			[]string{"regime"},
		),
		conviction: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ghostregime_conviction_index",
				Help: "Conviction index of the latest snapshot per axis (-1 when undefined)",
			},
			[]string{"axis"},
		),
		scale: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ghostregime_sleeve_scale",
				Help: "Exposure scale of the latest snapshot per sleeve",
			},
			[]string{"sleeve"},
		),
		publishErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "ghostregime_publish_errors_total",
			Help: "Snapshot events that could not be published",
		}),
	}
}

// RecordVendorAttempt records one vendor try and its latency.
func (r *Recorder) RecordVendorAttempt(vendor, result string, seconds float64) {
	r.vendorAttempts.WithLabelValues(vendor, result).Inc()
	r.vendorLatency.WithLabelValues(vendor).Observe(seconds)
}

func (r *Recorder) RecordSymbolUnavailable(symbol string, core bool) {
	c := "false"
	if core {
		c = "true"
	}
	r.symbolUnavailable.WithLabelValues(symbol, c).Inc()
}

func (r *Recorder) RecordBreakerState(vendor, state string) {
	v := 0.0
	switch state {
	case "open":
		v = 1
	case "half-open":
		v = 0.5
	}
	r.breakerState.WithLabelValues(vendor).Set(v)
}

func (r *Recorder) RecordBuild(outcome string, seconds float64) {
	r.builds.WithLabelValues(outcome).Inc()
	r.buildLatency.WithLabelValues(outcome).Observe(seconds)
}

// RecordSnapshot publishes the gauges of the latest committed row.
func (r *Recorder) RecordSnapshot(row *models.GhostRegimeRow) {
	if row == nil {
		return
	}
	for _, reg := range []models.Regime{models.RegimeGoldilocks, models.RegimeReflation, models.RegimeInflation, models.RegimeDeflation} {
		v := 0.0
		if reg == row.Regime {
			v = 1
		}
		r.regime.WithLabelValues(string(reg)).Set(v)
	}
	r.conviction.WithLabelValues(string(models.AxisRisk)).Set(convictionValue(row.Risk.ConvictionIndex))
	r.conviction.WithLabelValues(string(models.AxisInflation)).Set(convictionValue(row.Inflation.ConvictionIndex))
	r.scale.WithLabelValues("stocks").Set(float64(row.StocksScale))
	r.scale.WithLabelValues("gold").Set(float64(row.GoldScale))
	r.scale.WithLabelValues("btc").Set(float64(row.BTCScale))
}

func (r *Recorder) RecordPublishError() {
	r.publishErrors.Inc()
}

func convictionValue(p *int) float64 {
	if p == nil {
		return -1
	}
	return float64(*p)
}
