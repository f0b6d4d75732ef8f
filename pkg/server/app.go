package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GhostRegime/internal/domain/models"
	"GhostRegime/internal/services/history"
	"GhostRegime/internal/usecase"
	"GhostRegime/pkg/config"
	xhttp "GhostRegime/pkg/http"
	applogger "GhostRegime/pkg/logger"
	"GhostRegime/pkg/util"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	scheduler  *usecase.Scheduler
	builder    *usecase.SnapshotBuilder
	seeder     *usecase.Seeder
	store      *history.Store
	now        func() time.Time
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	scheduler *usecase.Scheduler,
	builder *usecase.SnapshotBuilder,
	seeder *usecase.Seeder,
	store *history.Store,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		scheduler:  scheduler,
		builder:    builder,
		seeder:     seeder,
		store:      store,
		now:        time.Now,
	}
}

// Logger returns the application logger.
func (a *App) Logger() *applogger.Logger { return a.l }

// Run serves HTTP and the daily scheduler until ctx is done or a signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !a.store.Seeded() && a.cfg.History.SeedFile != "" {
		n, err := a.Seed(ctx, a.cfg.History.SeedFile)
		if err != nil {
			a.l.Warn("startup seed failed", applogger.String("file", a.cfg.History.SeedFile), applogger.Error(err))
		} else {
			a.l.Info("startup seed loaded", applogger.Int("rows", n))
		}
	}

	if a.cfg.GhostRegime.Schedule.Enabled {
		a.scheduler.Start(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("ghostregime ready",
		applogger.Int("rows", a.store.Len()),
		applogger.Bool("seeded", a.store.Seeded()),
		applogger.String("history", a.cfg.History.Backend),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case <-sigCh:
		a.l.Info("shutdown signal received")
	case <-ctx.Done():
	}
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services. Infrastructure is closed by the injector cleanup.
func (a *App) shutdown(ctx context.Context) error {
	a.l.Info("shutting down...")

	if a.cfg.GhostRegime.Schedule.Enabled {
		a.scheduler.Stop()
	}

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.l.Info("shutdown complete")
	return nil
}

// BuildOnce runs a single snapshot build. An empty date means the latest business day
// whose scheduled run time has passed; weekend dates roll back to the preceding Friday.
func (a *App) BuildOnce(ctx context.Context, date string, force bool) (*models.BuildResult, error) {
	hour, minute := usecase.RunClock(a.cfg.GhostRegime.Schedule)
	d := models.DateOf(util.ExpectedAsOf(a.now(), hour, minute))
	if date != "" {
		parsed, err := models.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("build date: %w", err)
		}
		d = models.DateOf(util.BusinessDayOnOrBefore(parsed.Time()))
	}
	if force {
		return a.builder.Build(ctx, d, true)
	}
	return a.scheduler.RunDate(ctx, d)
}

// Seed loads a JSON-lines history file.
func (a *App) Seed(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return a.seeder.Seed(ctx, f, path)
}
