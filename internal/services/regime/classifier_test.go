package regime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GhostRegime/internal/domain/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		risk, infl int
		want       models.Regime
		riskLabel  string
		inflLabel  string
	}{
		{1, -1, models.RegimeGoldilocks, models.RiskOn, models.DisinflationLabel},
		{1, 1, models.RegimeReflation, models.RiskOn, models.InflationLabel},
		{-1, 1, models.RegimeInflation, models.RiskOff, models.InflationLabel},
		{-1, -1, models.RegimeDeflation, models.RiskOff, models.DisinflationLabel},
		{0, 0, models.RegimeDeflation, models.RiskOff, models.DisinflationLabel},
		{1, 0, models.RegimeGoldilocks, models.RiskOn, models.DisinflationLabel},
		{0, 1, models.RegimeInflation, models.RiskOff, models.InflationLabel},
	}
	for _, tc := range cases {
		got := Classify(tc.risk, tc.infl)
		assert.Equal(t, tc.want, got, "risk=%d infl=%d", tc.risk, tc.infl)
		risk, infl := Labels(got)
		assert.Equal(t, tc.riskLabel, risk)
		assert.Equal(t, tc.inflLabel, infl)
	}
}
