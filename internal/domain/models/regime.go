package models

type Regime string

const (
	RegimeGoldilocks Regime = "GOLDILOCKS"
	RegimeReflation  Regime = "REFLATION"
	RegimeInflation  Regime = "INFLATION"
	RegimeDeflation  Regime = "DEFLATION"
)

// Valid reports whether r is one of the four quadrants.
func (r Regime) Valid() bool {
	switch r {
	case RegimeGoldilocks, RegimeReflation, RegimeInflation, RegimeDeflation:
		return true
	}
	return false
}

// RiskOn reports whether the quadrant sits on the risk-on side.
func (r Regime) RiskOn() bool {
	return r == RegimeGoldilocks || r == RegimeReflation
}

// Inflationary reports whether the quadrant sits on the inflation side.
func (r Regime) Inflationary() bool {
	return r == RegimeReflation || r == RegimeInflation
}

// Signs are the axis signs that classify into r: +1 for risk on and inflation.
func (r Regime) Signs() (risk, inflation int) {
	risk, inflation = -1, -1
	if r.RiskOn() {
		risk = 1
	}
	if r.Inflationary() {
		inflation = 1
	}
	return risk, inflation
}

const (
	RiskOn  = "RISK ON"
	RiskOff = "RISK OFF"

	InflationLabel    = "INFLATION"
	DisinflationLabel = "DISINFLATION"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// Scale is an exposure multiplier restricted to 0, 0.5 and 1.
type Scale float64

const (
	ScaleOff  Scale = 0
	ScaleHalf Scale = 0.5
	ScaleFull Scale = 1
)

func (s Scale) Valid() bool {
	return s == ScaleOff || s == ScaleHalf || s == ScaleFull
}

// Label is the human form of a scale. Presentation only.
func (s Scale) Label() string {
	switch s {
	case ScaleFull:
		return "full size"
	case ScaleHalf:
		return "half size"
	default:
		return "off"
	}
}

// AxisState is the aggregated view of one axis.
type AxisState struct {
	Axis            Axis       `json:"axis"`
	Score           int        `json:"score"`
	Sign            int        `json:"sign"`
	Positive        int        `json:"positive"`
	Negative        int        `json:"negative"`
	Neutral         int        `json:"neutral"`
	Abstained       int        `json:"abstained"`
	NonNeutral      int        `json:"non_neutral"`
	Total           int        `json:"total"`
	AgreementPct    *int       `json:"agreement_pct"`
	CoveragePct     int        `json:"coverage_pct"`
	Confidence      Confidence `json:"confidence"`
	ConvictionIndex *int       `json:"conviction_index"`
	Crowded         bool       `json:"crowded"`
	TieBroken       bool       `json:"tie_broken,omitempty"`
}
