package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GhostRegime/pkg/config"
)

func TestSchedulerSpec(t *testing.T) {
	env := newTestEnv(t, true)
	s, err := NewScheduler(env.cfg, env.builder, env.store, nil)
	require.NoError(t, err)
	assert.Equal(t, "0 30 22 * * 1-5", s.Spec())

	s.now = func() time.Time { return time.Date(2024, 3, 29, 23, 0, 0, 0, time.UTC) }
	assert.Equal(t, time.Date(2024, 4, 1, 22, 30, 0, 0, time.UTC), s.Next())
}

func TestSchedulerRejectsBadTime(t *testing.T) {
	env := newTestEnv(t, true)
	cfg := env.cfg
	cfg.Schedule.Time = "25:99"
	_, err := NewScheduler(cfg, env.builder, env.store, nil)
	assert.Error(t, err)
}

func TestRunClock(t *testing.T) {
	h, m := RunClock(config.Schedule{Time: "21:05"})
	assert.Equal(t, 21, h)
	assert.Equal(t, 5, m)

	h, m = RunClock(config.Schedule{Time: "late"})
	assert.Equal(t, config.DefaultRunHour, h)
	assert.Equal(t, config.DefaultRunMinute, m)
}

func TestSchedulerRunOnceRollsWeekendBack(t *testing.T) {
	env := newTestEnv(t, true)
	s, err := NewScheduler(env.cfg, env.builder, env.store, nil)
	require.NoError(t, err)
	// Sunday 2024-03-24
	s.now = func() time.Time { return time.Date(2024, 3, 24, 22, 30, 0, 0, time.UTC) }

	res, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-03-22", res.Row.Date.String())
}

func TestSchedulerCatchUp(t *testing.T) {
	env := newTestEnv(t, true)
	cfg := env.cfg
	cfg.Schedule.CatchUp = true
	s, err := NewScheduler(cfg, env.builder, env.store, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 28, 23, 0, 0, 0, time.UTC) }

	s.Start(context.Background())
	require.Eventually(t, func() bool { return env.store.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	s.Stop()

	latest, ok := env.store.Latest()
	require.True(t, ok)
	assert.Equal(t, buildDate, latest.Date)
}

func TestSchedulerTickAfterStopIsDropped(t *testing.T) {
	env := newTestEnv(t, true)
	s, err := NewScheduler(env.cfg, env.builder, env.store, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 28, 22, 30, 0, 0, time.UTC) }

	s.Start(context.Background())
	s.Stop()
	s.tick()

	assert.Equal(t, 0, env.gw.callCount())
	assert.Equal(t, 0, env.store.Len())
}

func TestSchedulerStopWaitsForConcurrentTicks(t *testing.T) {
	env := newTestEnv(t, true)
	s, err := NewScheduler(env.cfg, env.builder, env.store, nil)
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 28, 22, 30, 0, 0, time.UTC) }
	s.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.tick()
		}()
	}
	s.Stop()
	wg.Wait()

	// every tick either ran to completion before Stop returned or was dropped
	assert.LessOrEqual(t, env.store.Len(), 1)
}
