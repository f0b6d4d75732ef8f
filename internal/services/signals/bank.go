// Package signals holds the fixed bank of interpretable rules that vote on the two macro axes.
package signals

import (
	"fmt"
	"sort"

	"GhostRegime/internal/domain/models"
)

// MaxStaleDays is how far the last bar may lag asOf before a signal abstains.
const MaxStaleDays = 10

// Outcome is what a rule decides. Abstain non-empty means "no opinion possible".
type Outcome struct {
	Vote      int
	Value     float64
	Threshold float64
	Abstain   string
}

func abstain(format string, args ...interface{}) Outcome {
	return Outcome{Abstain: fmt.Sprintf(format, args...)}
}

// Rule evaluates a signal on series already truncated to asOf, one per declared symbol.
type Rule func(in []models.Series) Outcome

// Signal is one named rule and the axes its vote applies to.
type Signal struct {
	Name    string
	Axes    []models.Axis
	Symbols []string
	Rule    Rule
}

// Bank evaluates a fixed signal set.
type Bank struct {
	signals []Signal
}

func NewBank(signals ...Signal) *Bank {
	if len(signals) == 0 {
		signals = DefaultSignals()
	}
	return &Bank{signals: signals}
}

func (b *Bank) Signals() []Signal { return b.signals }

// AxisTotals counts the signals assigned to each axis.
func (b *Bank) AxisTotals() map[models.Axis]int {
	out := map[models.Axis]int{models.AxisRisk: 0, models.AxisInflation: 0}
	for _, s := range b.signals {
		for _, a := range s.Axes {
			out[a]++
		}
	}
	return out
}

// Symbols lists every symbol the bank reads, sorted.
func (b *Bank) Symbols() []string {
	seen := map[string]bool{}
	for _, s := range b.signals {
		for _, sym := range s.Symbols {
			seen[sym] = true
		}
	}
	out := make([]string, 0, len(seen))
	for sym := range seen {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Evaluate runs every signal against series as of asOf. It never fails: missing, short or
// stale inputs produce abstentions. One vote is emitted per (signal, axis).
func (b *Bank) Evaluate(series map[string]models.Series, asOf models.Date) []models.SignalVote {
	votes := make([]models.SignalVote, 0, len(b.signals)+2)
	for _, s := range b.signals {
		out := b.evaluateOne(s, series, asOf)
		for _, axis := range s.Axes {
			v := models.SignalVote{Signal: s.Name, Axis: axis}
			if out.Abstain != "" {
				v.Abstained = true
				v.Reason = out.Abstain
			} else {
				value, threshold := out.Value, out.Threshold
				v.Vote = out.Vote
				v.Value = &value
				v.Threshold = &threshold
			}
			votes = append(votes, v)
		}
	}
	return votes
}

func (b *Bank) evaluateOne(s Signal, series map[string]models.Series, asOf models.Date) Outcome {
	in := make([]models.Series, 0, len(s.Symbols))
	for _, sym := range s.Symbols {
		ser, ok := series[sym]
		if !ok {
			return abstain("no data for %s", sym)
		}
		ser = ser.Truncate(asOf)
		last, ok := ser.Last()
		if !ok {
			return abstain("no data for %s", sym)
		}
		if lag := last.Date.DaysUntil(asOf); lag > MaxStaleDays {
			return abstain("%s last bar %s is %d days old", sym, last.Date, lag)
		}
		in = append(in, ser)
	}
	return s.Rule(in)
}
