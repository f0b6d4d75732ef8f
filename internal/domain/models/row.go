package models

import "time"

// SleeveWeights holds one weight per sleeve.
type SleeveWeights struct {
	Stocks float64 `json:"stocks" yaml:"stocks"`
	Gold   float64 `json:"gold" yaml:"gold"`
	BTC    float64 `json:"btc" yaml:"btc"`
}

// Weights reports the house-model targets next to target × scale.
type Weights struct {
	Targets   SleeveWeights `json:"targets"`
	Effective SleeveWeights `json:"effective"`
}

// ScaleLabels are the presentation labels of the three scales.
type ScaleLabels struct {
	Stocks string `json:"stocks"`
	Gold   string `json:"gold"`
	BTC    string `json:"btc"`
}

// GhostRegimeRow is the persisted daily snapshot. One per date.
type GhostRegimeRow struct {
	Date          Date         `json:"date"`
	Regime        Regime       `json:"regime"`
	RiskRegime    string       `json:"risk_regime"`
	InflationAxis string       `json:"inflation_axis"`
	StocksScale   Scale        `json:"stocks_scale"`
	GoldScale     Scale        `json:"gold_scale"`
	BTCScale      Scale        `json:"btc_scale"`
	ScaleLabels   ScaleLabels  `json:"scale_labels"`
	Risk          AxisState    `json:"risk"`
	Inflation     AxisState    `json:"inflation"`
	Crowded       bool         `json:"crowded"`
	Weights       Weights      `json:"weights"`
	Stale         bool         `json:"stale"`
	Votes         []SignalVote `json:"votes,omitempty"`
	ComputedAt    time.Time    `json:"computed_at"`
	RunID         string       `json:"run_id"`
}

// Clone returns a copy that shares nothing mutable with r.
func (r *GhostRegimeRow) Clone() *GhostRegimeRow {
	if r == nil {
		return nil
	}
	c := *r
	c.Risk.AgreementPct = cloneInt(r.Risk.AgreementPct)
	c.Risk.ConvictionIndex = cloneInt(r.Risk.ConvictionIndex)
	c.Inflation.AgreementPct = cloneInt(r.Inflation.AgreementPct)
	c.Inflation.ConvictionIndex = cloneInt(r.Inflation.ConvictionIndex)
	if r.Votes != nil {
		c.Votes = make([]SignalVote, len(r.Votes))
		copy(c.Votes, r.Votes)
	}
	return &c
}

// WithoutVotes returns a copy with the debug vote list removed.
func (r *GhostRegimeRow) WithoutVotes() *GhostRegimeRow {
	c := r.Clone()
	if c != nil {
		c.Votes = nil
	}
	return c
}

// MarkStale returns a copy flagged stale.
func (r *GhostRegimeRow) MarkStale() *GhostRegimeRow {
	c := r.Clone()
	if c != nil {
		c.Stale = true
	}
	return c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
