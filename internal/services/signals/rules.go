package signals

import "GhostRegime/internal/domain/models"

var (
	riskOnly      = []models.Axis{models.AxisRisk}
	inflationOnly = []models.Axis{models.AxisInflation}
	bothAxes      = []models.Axis{models.AxisRisk, models.AxisInflation}
)

// DefaultSignals is the production signal set: six per axis, dollar counted on both.
func DefaultSignals() []Signal {
	return []Signal{
		{Name: "spy_trend_200d", Axes: riskOnly, Symbols: []string{"SPY"}, Rule: TrendRule(200)},
		{Name: "spy_momentum_63d", Axes: riskOnly, Symbols: []string{"SPY"}, Rule: MomentumRule(63, 0.01, false)},
		{Name: "vix_level", Axes: riskOnly, Symbols: []string{"VIX"}, Rule: LevelRule(20, 25)},
		{Name: "credit_appetite", Axes: riskOnly, Symbols: []string{"HYG", "LQD"}, Rule: RatioTrendRule(50)},
		{Name: "btc_trend_100d", Axes: riskOnly, Symbols: []string{"BTC"}, Rule: TrendRule(100)},
		{Name: "dollar_trend_63d", Axes: bothAxes, Symbols: []string{"UUP"}, Rule: MomentumRule(63, 0.01, true)},
		{Name: "commodity_momentum_63d", Axes: inflationOnly, Symbols: []string{"DBC"}, Rule: MomentumRule(63, 0.02, false)},
		{Name: "breakeven_proxy", Axes: inflationOnly, Symbols: []string{"TIP", "IEF"}, Rule: RatioTrendRule(50)},
		{Name: "gold_trend_200d", Axes: inflationOnly, Symbols: []string{"GLD"}, Rule: TrendRule(200)},
		{Name: "yield_change_63d", Axes: inflationOnly, Symbols: []string{"TNX"}, Rule: ChangeRule(63, 0.15)},
		{Name: "oil_momentum_63d", Axes: inflationOnly, Symbols: []string{"USO"}, Rule: MomentumRule(63, 0.05, false)},
	}
}

// TrendRule votes +1 when the last close is above its window-day SMA, −1 below.
func TrendRule(window int) Rule {
	return func(in []models.Series) Outcome {
		closes := in[0].Closes()
		sma, ok := SMA(closes, window)
		if !ok {
			return abstain("insufficient history: %d of %d bars", len(closes), window)
		}
		last := closes[len(closes)-1]
		return Outcome{Vote: Compare(last, sma, sma), Value: last, Threshold: sma}
	}
}

// MomentumRule votes on the lookback return against ±threshold. inverse flips the vote,
// for assets whose strength is read as risk-off (the dollar).
func MomentumRule(lookback int, threshold float64, inverse bool) Rule {
	return func(in []models.Series) Outcome {
		closes := in[0].Closes()
		r, ok := PctReturn(closes, lookback)
		if !ok {
			return abstain("insufficient history: %d of %d bars", len(closes), lookback+1)
		}
		vote := Compare(r, -threshold, threshold)
		if inverse {
			vote = -vote
		}
		return Outcome{Vote: vote, Value: r, Threshold: threshold}
	}
}

// LevelRule votes +1 below calm, −1 above stress, 0 in between. Used for VIX.
func LevelRule(calm, stress float64) Rule {
	return func(in []models.Series) Outcome {
		last, _ := in[0].Last()
		vote := 0
		switch {
		case last.Close < calm:
			vote = 1
		case last.Close > stress:
			vote = -1
		}
		return Outcome{Vote: vote, Value: last.Close, Threshold: calm}
	}
}

// RatioTrendRule compares in[0]/in[1] against its window-day SMA on shared dates.
func RatioTrendRule(window int) Rule {
	return func(in []models.Series) Outcome {
		ratio := Ratio(in[0], in[1])
		sma, ok := SMA(ratio, window)
		if !ok {
			return abstain("insufficient aligned history: %d of %d points", len(ratio), window)
		}
		last := ratio[len(ratio)-1]
		return Outcome{Vote: Compare(last, sma, sma), Value: last, Threshold: sma}
	}
}

// ChangeRule votes on the absolute lookback change against ±threshold.
func ChangeRule(lookback int, threshold float64) Rule {
	return func(in []models.Series) Outcome {
		values := in[0].Closes()
		d, ok := Change(values, lookback)
		if !ok {
			return abstain("insufficient history: %d of %d bars", len(values), lookback+1)
		}
		return Outcome{Vote: Compare(d, -threshold, threshold), Value: d, Threshold: threshold}
	}
}
