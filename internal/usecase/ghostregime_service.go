package usecase

import (
	"context"
	"time"

	"GhostRegime/internal/domain/models"
	"GhostRegime/internal/services/history"
	"GhostRegime/pkg/config"
	"GhostRegime/pkg/util"
)

// ExplainSampleSize caps the sample dates returned with DATE_NOT_FOUND.
const ExplainSampleSize = 10

// GhostRegimeService is the read path plus the explicit recompute entry point. Reads
// come from the history store only; computation goes through the builder.
type GhostRegimeService struct {
	store   *history.Store
	builder *SnapshotBuilder
	maxAge  int
	now     func() time.Time

	runHour, runMinute int
}

func NewGhostRegimeService(cfg config.GhostRegime, store *history.Store, builder *SnapshotBuilder) *GhostRegimeService {
	maxAge := cfg.FreshnessMaxAgeDays
	if maxAge <= 0 {
		maxAge = 4
	}
	h, m := RunClock(cfg.Schedule)
	return &GhostRegimeService{store: store, builder: builder, maxAge: maxAge, now: time.Now, runHour: h, runMinute: m}
}

// RunClock is the UTC hour and minute of the daily run. An unparsable time falls back
// to the default 22:30; the scheduler rejects it at construction.
func RunClock(sc config.Schedule) (hour, minute int) {
	h, m, err := util.ParseClock(sc.Time)
	if err != nil {
		return config.DefaultRunHour, config.DefaultRunMinute
	}
	return h, m
}

// SetClock overrides "today" for tests.
func (s *GhostRegimeService) SetClock(now func() time.Time) { s.now = now }

// AsOf is the latest business day whose scheduled run time has passed. Before the run
// on a business day it is the previous business day.
func (s *GhostRegimeService) AsOf() models.Date {
	return models.DateOf(util.ExpectedAsOf(s.now(), s.runHour, s.runMinute))
}

func (s *GhostRegimeService) Latest(ctx context.Context) (*models.GhostRegimeRow, error) {
	if !s.store.Seeded() {
		return nil, models.ErrNotSeeded()
	}
	row, ok := s.store.Latest()
	if !ok {
		return nil, models.ErrNotReady("no snapshot has been computed yet", s.builder.LastDiagnostics())
	}
	return row.WithoutVotes(), nil
}

// Health derives freshness from the latest row against today's UTC date.
func (s *GhostRegimeService) Health(ctx context.Context) (*models.Health, error) {
	if !s.store.Seeded() {
		return nil, models.ErrNotSeeded()
	}
	row, ok := s.store.Latest()
	if !ok {
		return &models.Health{Status: models.HealthNotReady}, nil
	}
	age := row.Date.DaysUntil(models.DateOf(s.now()))
	fresh := age <= s.maxAge
	status := models.HealthOK
	if !fresh {
		status = models.HealthWarn
	}
	return &models.Health{
		Status: status,
		Latest: row.WithoutVotes(),
		Freshness: &models.Freshness{
			AgeDays:    age,
			MaxAgeDays: s.maxAge,
			IsFresh:    fresh,
		},
	}, nil
}

// Today returns the row for the current as-of date. Without force nothing is computed:
// a missing row yields the latest earlier one marked stale.
func (s *GhostRegimeService) Today(ctx context.Context, req models.TodayRequest) (*models.BuildResult, error) {
	if !s.store.Seeded() {
		return nil, models.ErrNotSeeded()
	}
	asOf := s.AsOf()

	var res *models.BuildResult
	if req.Force {
		var err error
		res, err = s.builder.Build(ctx, asOf, true)
		if err != nil {
			return nil, err
		}
	} else if row, ok := s.store.Get(asOf); ok {
		prev, _ := s.store.Before(asOf)
		res = &models.BuildResult{Row: row, Changes: history.Diff(row, prev), Cached: true}
	} else {
		prior, ok := s.store.Before(asOf)
		if !ok {
			return nil, models.ErrNotReady("no snapshot for "+asOf.String()+" yet", s.diagnosticsFor(asOf))
		}
		res = &models.BuildResult{
			Row:         prior.MarkStale(),
			Stale:       true,
			Diagnostics: s.diagnosticsFor(asOf),
			Changes:     []models.Change{models.NoChange},
		}
	}

	if !req.Debug {
		out := *res
		out.Row = res.Row.WithoutVotes()
		return &out, nil
	}
	return res, nil
}

// diagnosticsFor returns the last fetch diagnostics only when they belong to date.
func (s *GhostRegimeService) diagnosticsFor(date models.Date) *models.Diagnostics {
	diag := s.builder.LastDiagnostics()
	if diag == nil || !diag.AsOfDateAttempted.Equal(date) {
		return nil
	}
	return diag
}

// History lists rows in [startDate, endDate]; either bound may be empty.
func (s *GhostRegimeService) History(ctx context.Context, req models.HistoryRequest) (*models.HistoryResult, error) {
	start, err := optionalDate(req.StartDate, "startDate")
	if err != nil {
		return nil, err
	}
	end, err := optionalDate(req.EndDate, "endDate")
	if err != nil {
		return nil, err
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return nil, models.ErrInvalidInput(models.CodeInvalidDateRange, "startDate", "startDate must not be after endDate")
	}
	if !s.store.Seeded() {
		return nil, models.ErrNotSeeded()
	}

	rows := s.store.Range(start, end)
	out := make([]*models.GhostRegimeRow, len(rows))
	for i, r := range rows {
		out[i] = r.WithoutVotes()
	}
	return &models.HistoryResult{Rows: out, Total: len(out)}, nil
}

// Explain returns the stored row with its votes and the changes since the row before it.
func (s *GhostRegimeService) Explain(ctx context.Context, req models.ExplainRequest) (*models.ExplainResult, error) {
	if req.Date == "" {
		return nil, models.ErrInvalidInput(models.CodeMissingDateParameter, "date", "date is required")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, models.ErrInvalidInput(models.CodeInvalidDateFormat, "date", "date must be a valid YYYY-MM-DD calendar date")
	}
	if !s.store.Seeded() {
		return nil, models.ErrNotSeeded()
	}

	row, ok := s.store.Get(date)
	if !ok {
		return nil, models.ErrDateNotFound(req.Date, s.store.SampleDates(ExplainSampleSize))
	}
	res := &models.ExplainResult{Row: row.Clone()}
	prev, ok := s.store.Before(date)
	if ok {
		pd := prev.Date
		res.PreviousDate = &pd
	}
	res.Changes = history.Diff(row, prev)
	return res, nil
}

// Recompute forces a build for date, default the current as-of date (see AsOf). Weekend dates roll
// back to the preceding Friday.
func (s *GhostRegimeService) Recompute(ctx context.Context, req models.RecomputeRequest) (*models.BuildResult, error) {
	date := s.AsOf()
	if req.Date != "" {
		d, err := models.ParseDate(req.Date)
		if err != nil {
			return nil, models.ErrInvalidInput(models.CodeInvalidDateFormat, "date", "date must be a valid YYYY-MM-DD calendar date")
		}
		date = models.DateOf(util.BusinessDayOnOrBefore(d.Time()))
	}
	return s.builder.Build(ctx, date, true)
}

func optionalDate(s, field string) (models.Date, error) {
	if s == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, models.ErrInvalidInput(models.CodeInvalidDateFormat, field, field+" must be a valid YYYY-MM-DD calendar date")
	}
	return d, nil
}
