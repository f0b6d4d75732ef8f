package models

type Axis string

const (
	AxisRisk      Axis = "risk"
	AxisInflation Axis = "inflation"
)

// SignalVote is one signal's opinion on one axis. An abstention always carries Vote 0.
type SignalVote struct {
	Signal    string   `json:"signal"`
	Axis      Axis     `json:"axis"`
	Vote      int      `json:"vote"`
	Abstained bool     `json:"abstained"`
	Reason    string   `json:"reason,omitempty"`
	Value     *float64 `json:"value,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// VotesFor filters votes to one axis, preserving order.
func VotesFor(votes []SignalVote, axis Axis) []SignalVote {
	out := make([]SignalVote, 0, len(votes))
	for _, v := range votes {
		if v.Axis == axis {
			out = append(out, v)
		}
	}
	return out
}
