package models

// Query parameters for the ghostregime HTTP endpoints.

type TodayRequest struct {
	Debug bool `query:"debug" json:"debug"`
	Force bool `query:"force" json:"force"`
}

type HistoryRequest struct {
	StartDate string `query:"startDate" json:"startDate"`
	EndDate   string `query:"endDate" json:"endDate"`
}

type ExplainRequest struct {
	Date string `query:"date" json:"date"`
}

type RecomputeRequest struct {
	Date string `query:"date" json:"date"`
}
