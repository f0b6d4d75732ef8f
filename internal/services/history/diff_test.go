package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostRegime/internal/domain/models"
)

func fullRow() *models.GhostRegimeRow {
	return &models.GhostRegimeRow{
		Date:          models.MustParseDate("2024-01-02"),
		Regime:        models.RegimeGoldilocks,
		RiskRegime:    models.RiskOn,
		InflationAxis: models.DisinflationLabel,
		StocksScale:   models.ScaleFull,
		GoldScale:     models.ScaleHalf,
		BTCScale:      models.ScaleFull,
	}
}

func TestDiffSameRowIsNoChange(t *testing.T) {
	a := fullRow()
	assert.Equal(t, []models.Change{models.NoChange}, Diff(a, a))
	assert.True(t, models.IsNoChange(Diff(a, a)))
}

func TestDiffIgnoresFloatNoise(t *testing.T) {
	a, b := fullRow(), fullRow()
	a.GoldScale = 0.30000001
	b.GoldScale = 0.3
	assert.True(t, models.IsNoChange(Diff(a, b)))
}

func TestDiffReportsMoves(t *testing.T) {
	prev := fullRow()
	cur := fullRow()
	cur.Regime = models.RegimeReflation
	cur.InflationAxis = models.InflationLabel
	cur.GoldScale = models.ScaleFull

	changes := Diff(cur, prev)
	require.Len(t, changes, 3)
	assert.Equal(t, "regime", changes[0].Field)
	assert.Equal(t, "GOLDILOCKS", changes[0].From)
	assert.Equal(t, "REFLATION", changes[0].To)
	assert.Equal(t, "inflation_axis", changes[1].Field)
	assert.Equal(t, "gold_scale", changes[2].Field)
	assert.Equal(t, "gold_scale moved from half size to full size", changes[2].Description)
}

func TestDiffWithoutPrevious(t *testing.T) {
	assert.True(t, models.IsNoChange(Diff(fullRow(), nil)))
}
