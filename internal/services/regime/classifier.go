package regime

import "GhostRegime/internal/domain/models"

// Classify maps the two axis signs onto a quadrant. A zero sign falls on the defensive
// side: risk off, disinflation.
func Classify(riskSign, inflationSign int) models.Regime {
	switch on, infl := riskSign > 0, inflationSign > 0; {
	case on && infl:
		return models.RegimeReflation
	case on:
		return models.RegimeGoldilocks
	case infl:
		return models.RegimeInflation
	default:
		return models.RegimeDeflation
	}
}

// Labels returns the risk_regime and inflation_axis strings for a quadrant.
func Labels(r models.Regime) (risk, inflation string) {
	risk, inflation = models.RiskOff, models.DisinflationLabel
	if r.RiskOn() {
		risk = models.RiskOn
	}
	if r.Inflationary() {
		inflation = models.InflationLabel
	}
	return risk, inflation
}
