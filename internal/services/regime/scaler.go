package regime

import "GhostRegime/internal/domain/models"

// Scales are the three sleeve multipliers.
type Scales struct {
	Stocks models.Scale
	Gold   models.Scale
	BTC    models.Scale
}

// Scale derives sleeve scales from the quadrant and the risk axis.
func Scale(r models.Regime, risk models.AxisState) Scales {
	var s Scales

	switch {
	case r.RiskOn():
		s.Stocks = models.ScaleFull
	case risk.Confidence == models.ConfidenceHigh && risk.Crowded:
		s.Stocks = models.ScaleOff
	default:
		s.Stocks = models.ScaleHalf
	}

	s.Gold = models.ScaleHalf
	if r.Inflationary() {
		s.Gold = models.ScaleFull
	}

	switch {
	case r.RiskOn() && risk.Confidence == models.ConfidenceHigh:
		s.BTC = models.ScaleFull
	case r.RiskOn():
		s.BTC = models.ScaleHalf
	case risk.Confidence == models.ConfidenceLow:
		s.BTC = models.ScaleHalf
	default:
		s.BTC = models.ScaleOff
	}
	return s
}

// Weights reports targets alongside target × scale.
func Weights(targets models.SleeveWeights, s Scales) models.Weights {
	return models.Weights{
		Targets: targets,
		Effective: models.SleeveWeights{
			Stocks: targets.Stocks * float64(s.Stocks),
			Gold:   targets.Gold * float64(s.Gold),
			BTC:    targets.BTC * float64(s.BTC),
		},
	}
}

// Labels returns the presentation labels for s.
func (s Scales) Labels() models.ScaleLabels {
	return models.ScaleLabels{Stocks: s.Stocks.Label(), Gold: s.Gold.Label(), BTC: s.BTC.Label()}
}
