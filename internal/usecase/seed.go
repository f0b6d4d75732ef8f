package usecase

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"GhostRegime/internal/domain/models"
	"GhostRegime/internal/services/history"
	"GhostRegime/internal/services/regime"
	applogger "GhostRegime/pkg/logger"
)

const maxSeedLine = 1 << 20

// Seeder loads historical rows from JSON lines and writes the seeded marker.
type Seeder struct {
	store *history.Store
	l     *applogger.Logger
}

func NewSeeder(store *history.Store, l *applogger.Logger) *Seeder {
	if l == nil {
		l = applogger.Nop()
	}
	return &Seeder{store: store, l: l}
}

// Seed commits every row of r and then marks the history seeded with source. Blank lines
// are skipped; any malformed line aborts before the marker is written.
func (s *Seeder) Seed(ctx context.Context, r io.Reader, source string) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxSeedLine)

	n, line := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var row models.GhostRegimeRow
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return n, fmt.Errorf("seed line %d: %w", line, err)
		}
		if err := normalizeSeedRow(&row); err != nil {
			return n, fmt.Errorf("seed line %d: %w", line, err)
		}
		if err := s.store.Commit(ctx, &row); err != nil {
			return n, fmt.Errorf("seed line %d: %w", line, err)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read seed: %w", err)
	}
	if err := s.store.MarkSeeded(ctx, source); err != nil {
		return n, err
	}
	s.l.Info("history seeded", applogger.String("source", source), applogger.Int("rows", n))
	return n, nil
}

// normalizeSeedRow rejects rows outside the row invariants and fills the labels and axis
// signs that older exports may lack. Both are derived from the regime.
func normalizeSeedRow(r *models.GhostRegimeRow) error {
	if r.Date.IsZero() {
		return fmt.Errorf("missing date")
	}
	if !r.Regime.Valid() {
		return fmt.Errorf("%s: unknown regime %q", r.Date, r.Regime)
	}
	for _, sc := range []models.Scale{r.StocksScale, r.GoldScale, r.BTCScale} {
		if !sc.Valid() {
			return fmt.Errorf("%s: scale %v outside {0, 0.5, 1}", r.Date, float64(sc))
		}
	}
	riskLabel, inflLabel := regime.Labels(r.Regime)
	if r.RiskRegime != "" && r.RiskRegime != riskLabel {
		return fmt.Errorf("%s: risk_regime %q contradicts regime %s", r.Date, r.RiskRegime, r.Regime)
	}
	if r.InflationAxis != "" && r.InflationAxis != inflLabel {
		return fmt.Errorf("%s: inflation_axis %q contradicts regime %s", r.Date, r.InflationAxis, r.Regime)
	}
	r.RiskRegime, r.InflationAxis = riskLabel, inflLabel

	riskSign, inflSign := r.Regime.Signs()
	if r.Risk.Sign != 0 && r.Risk.Sign != riskSign {
		return fmt.Errorf("%s: risk sign %d contradicts regime %s", r.Date, r.Risk.Sign, r.Regime)
	}
	if r.Inflation.Sign != 0 && r.Inflation.Sign != inflSign {
		return fmt.Errorf("%s: inflation sign %d contradicts regime %s", r.Date, r.Inflation.Sign, r.Regime)
	}
	r.Risk.Axis, r.Risk.Sign = models.AxisRisk, riskSign
	r.Inflation.Axis, r.Inflation.Sign = models.AxisInflation, inflSign
	if r.ScaleLabels == (models.ScaleLabels{}) {
		r.ScaleLabels = regime.Scales{Stocks: r.StocksScale, Gold: r.GoldScale, BTC: r.BTCScale}.Labels()
	}
	return nil
}
