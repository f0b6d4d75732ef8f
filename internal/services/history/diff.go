package history

import (
	"fmt"
	"math"

	"GhostRegime/internal/domain/models"
)

// ScaleEpsilon is the smallest scale move reported as a change.
const ScaleEpsilon = 0.01

// Diff lists what moved from previous to current. When nothing did, or there is no
// previous row, it returns the NoChange sentinel.
func Diff(current, previous *models.GhostRegimeRow) []models.Change {
	if current == nil || previous == nil {
		return []models.Change{models.NoChange}
	}
	var out []models.Change
	label := func(field, from, to string) {
		if from != to {
			out = append(out, models.Change{
				Field:       field,
				From:        from,
				To:          to,
				Description: fmt.Sprintf("%s changed from %s to %s", field, from, to),
			})
		}
	}
	scale := func(field string, from, to models.Scale) {
		if math.Abs(float64(to)-float64(from)) > ScaleEpsilon {
			out = append(out, models.Change{
				Field:       field,
				From:        float64(from),
				To:          float64(to),
				Description: fmt.Sprintf("%s moved from %s to %s", field, from.Label(), to.Label()),
			})
		}
	}

	label("regime", string(previous.Regime), string(current.Regime))
	label("risk_regime", previous.RiskRegime, current.RiskRegime)
	label("inflation_axis", previous.InflationAxis, current.InflationAxis)
	scale("stocks_scale", previous.StocksScale, current.StocksScale)
	scale("gold_scale", previous.GoldScale, current.GoldScale)
	scale("btc_scale", previous.BTCScale, current.BTCScale)

	if len(out) == 0 {
		return []models.Change{models.NoChange}
	}
	return out
}
