package models

type HealthStatus string

const (
	HealthOK       HealthStatus = "OK"
	HealthWarn     HealthStatus = "WARN"
	HealthNotReady HealthStatus = "NOT_READY"
)

type Freshness struct {
	AgeDays    int  `json:"age_days"`
	MaxAgeDays int  `json:"max_age_days"`
	IsFresh    bool `json:"is_fresh"`
}

// Health is derived at read time from the latest row.
type Health struct {
	Status    HealthStatus    `json:"status"`
	Latest    *GhostRegimeRow `json:"latest"`
	Freshness *Freshness      `json:"freshness"`
}
