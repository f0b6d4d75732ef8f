// Package regime turns signal votes into axis states, a quadrant and sleeve scales.
package regime

import (
	"math"

	"GhostRegime/internal/domain/models"
)

// Thresholds shared by confidence and crowding.
const (
	HighAgreementPct   = 80
	MediumAgreementPct = 60
	MinCoveragePct     = 50
	CrowdedConviction  = 76
)

// ConvictionPolicy weights agreement and coverage in the conviction index.
type ConvictionPolicy struct {
	AgreementWeight float64
	CoverageWeight  float64
}

// DefaultConvictionPolicy is the plain product agreement × coverage.
var DefaultConvictionPolicy = ConvictionPolicy{AgreementWeight: 1, CoverageWeight: 1}

// Aggregator folds the votes of one axis into an AxisState.
type Aggregator struct {
	policy ConvictionPolicy
	totals map[models.Axis]int
}

// NewAggregator takes the number of signals assigned to each axis; coverage is measured
// against that, not against the votes received.
func NewAggregator(policy ConvictionPolicy, totals map[models.Axis]int) *Aggregator {
	if policy.AgreementWeight <= 0 {
		policy.AgreementWeight = DefaultConvictionPolicy.AgreementWeight
	}
	if policy.CoverageWeight <= 0 {
		policy.CoverageWeight = DefaultConvictionPolicy.CoverageWeight
	}
	return &Aggregator{policy: policy, totals: totals}
}

// Aggregate computes the axis state from votes; votes for other axes are ignored.
// priorSign breaks a tie between +1 and −1 counts when it is non-zero.
func (a *Aggregator) Aggregate(axis models.Axis, votes []models.SignalVote, priorSign int) models.AxisState {
	st := models.AxisState{Axis: axis, Total: a.totals[axis]}
	for _, v := range models.VotesFor(votes, axis) {
		switch {
		case v.Abstained:
			st.Abstained++
		case v.Vote > 0:
			st.Positive++
		case v.Vote < 0:
			st.Negative++
		default:
			st.Neutral++
		}
	}
	if st.Total == 0 {
		st.Total = st.Positive + st.Negative + st.Neutral + st.Abstained
	}
	st.NonNeutral = st.Positive + st.Negative
	st.Score = st.Positive - st.Negative
	st.Sign = sign(st.Score)
	if st.Sign == 0 && priorSign != 0 {
		st.Sign = sign(priorSign)
		st.TieBroken = true
	}

	if st.Total > 0 {
		st.CoveragePct = roundPct(float64(st.NonNeutral) / float64(st.Total))
	}
	if st.NonNeutral > 0 {
		agreement := roundPct(float64(max(st.Positive, st.Negative)) / float64(st.NonNeutral))
		st.AgreementPct = &agreement
		conviction := a.conviction(agreement, st.CoveragePct)
		st.ConvictionIndex = &conviction
	}
	st.Confidence = Confidence(st.AgreementPct, st.CoveragePct)
	st.Crowded = Crowded(st)
	return st
}

func (a *Aggregator) conviction(agreementPct, coveragePct int) int {
	v := 100 * math.Pow(float64(agreementPct)/100, a.policy.AgreementWeight) *
		math.Pow(float64(coveragePct)/100, a.policy.CoverageWeight)
	c := int(math.Round(v))
	return min(max(c, 0), 100)
}

// Confidence buckets an axis. A null agreement only reaches Medium through coverage.
func Confidence(agreementPct *int, coveragePct int) models.Confidence {
	agr := -1
	if agreementPct != nil {
		agr = *agreementPct
	}
	switch {
	case agr >= HighAgreementPct && coveragePct >= MinCoveragePct:
		return models.ConfidenceHigh
	case agr >= MediumAgreementPct || coveragePct >= MinCoveragePct:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Crowded requires every condition at once: conviction, High confidence, agreement and coverage.
func Crowded(st models.AxisState) bool {
	if st.ConvictionIndex == nil || st.AgreementPct == nil {
		return false
	}
	return *st.ConvictionIndex >= CrowdedConviction &&
		st.Confidence == models.ConfidenceHigh &&
		*st.AgreementPct >= HighAgreementPct &&
		st.CoveragePct >= MinCoveragePct
}

func roundPct(f float64) int {
	return int(math.Round(100 * f))
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
