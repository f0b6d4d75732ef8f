package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron"

	"GhostRegime/internal/domain/models"
	"GhostRegime/internal/services/history"
	"GhostRegime/pkg/config"
	applogger "GhostRegime/pkg/logger"
	"GhostRegime/pkg/util"
)

const runTimeout = 10 * time.Minute

// Scheduler runs the daily build on weekdays at a fixed UTC time.
type Scheduler struct {
	cron    *cron.Cron
	builder *SnapshotBuilder
	store   *history.Store
	l       *applogger.Logger

	hour, minute int
	catchUp      bool
	now          func() time.Time

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
	wg      sync.WaitGroup
}

func NewScheduler(cfg config.GhostRegime, builder *SnapshotBuilder, store *history.Store, l *applogger.Logger) (*Scheduler, error) {
	h, m, err := util.ParseClock(cfg.Schedule.Time)
	if err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}
	if l == nil {
		l = applogger.Nop()
	}
	s := &Scheduler{
		cron:    cron.NewWithLocation(time.UTC),
		builder: builder,
		store:   store,
		l:       l,
		hour:    h,
		minute:  m,
		catchUp: cfg.Schedule.CatchUp,
		now:     time.Now,
	}
	if err := s.cron.AddFunc(s.Spec(), s.tick); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", s.Spec(), err)
	}
	return s, nil
}

// Spec is the cron expression (with seconds) for the daily run.
func (s *Scheduler) Spec() string {
	return fmt.Sprintf("0 %d %d * * 1-5", s.minute, s.hour)
}

// Next is the next scheduled run after now.
func (s *Scheduler) Next() time.Time {
	return util.NextBusinessRun(s.now(), s.hour, s.minute)
}

// Start begins scheduling. With catch-up enabled a missed run for the expected as-of
// date is executed immediately.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.stopped = false
	runCtx := s.ctx
	s.mu.Unlock()

	if s.catchUp {
		expected := models.DateOf(util.ExpectedAsOf(s.now(), s.hour, s.minute))
		if _, ok := s.store.Get(expected); !ok && s.begin() {
			s.l.Info("scheduler catch-up", applogger.String("date", expected.String()))
			go func() {
				defer s.wg.Done()
				_, _ = s.RunDate(runCtx, expected)
			}()
		}
	}
	s.cron.Start()
	s.l.Info("scheduler started", applogger.String("spec", s.Spec()), applogger.String("next", s.Next().Format(time.RFC3339)))
}

// Stop halts scheduling and waits for an in-flight run. Ticks arriving after Stop are
// dropped.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.mu.Lock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// begin registers a run unless the scheduler is stopped. wg.Add happens under mu so it
// never races with the Wait in Stop.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Scheduler) tick() {
	if !s.begin() {
		s.l.Warn("scheduler stopped, tick dropped")
		return
	}
	defer s.wg.Done()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	_, _ = s.RunOnce(ctx)
}

// RunOnce builds the as-of date for now (weekends roll back to Friday).
func (s *Scheduler) RunOnce(ctx context.Context) (*models.BuildResult, error) {
	return s.RunDate(ctx, models.DateOf(util.BusinessDayOnOrBefore(s.now())))
}

func (s *Scheduler) RunDate(ctx context.Context, date models.Date) (*models.BuildResult, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	res, err := s.builder.Build(ctx, date, false)
	if err != nil {
		s.l.Error("scheduled build failed", applogger.String("date", date.String()), applogger.Error(err))
		return nil, err
	}
	s.l.Info("scheduled build done",
		applogger.String("date", date.String()),
		applogger.Bool("stale", res.Stale),
		applogger.Bool("cached", res.Cached),
	)
	return res, nil
}
