package models

import "time"

// BuildResult is what the builder and the today/recompute readers hand back.
type BuildResult struct {
	Row         *GhostRegimeRow `json:"row"`
	Stale       bool            `json:"stale"`
	Diagnostics *Diagnostics    `json:"diagnostics,omitempty"`
	Changes     []Change        `json:"changes"`
	// Cached is true when an existing row short-circuited the build.
	Cached bool `json:"cached"`
}

// ExplainResult is a row with its vote breakdown and the moves since the prior row.
type ExplainResult struct {
	Row          *GhostRegimeRow `json:"row"`
	PreviousDate *Date           `json:"previous_date"`
	Changes      []Change        `json:"changes"`
}

const EventSnapshotCommitted = "snapshot.committed"

// SnapshotEvent is published after a row is committed.
type SnapshotEvent struct {
	Type        string          `json:"type"`
	Date        Date            `json:"date"`
	Regime      Regime          `json:"regime"`
	RunID       string          `json:"run_id"`
	Forced      bool            `json:"forced"`
	Changes     []Change        `json:"changes"`
	Row         *GhostRegimeRow `json:"row"`
	CommittedAt time.Time       `json:"committed_at"`
}

// HistoryResult is the history listing, ascending by date.
type HistoryResult struct {
	Rows  []*GhostRegimeRow `json:"rows"`
	Total int               `json:"total"`
}
