package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheGetSet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "gr")
	ctx := context.Background()

	mock.ExpectSet("gr:series:SPY", []byte("x"), time.Hour).SetVal("OK")
	require.NoError(t, c.Set(ctx, "series:SPY", []byte("x"), time.Hour))

	mock.ExpectGet("gr:series:SPY").SetVal("x")
	got, err := c.Get(ctx, "series:SPY")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	mock.ExpectGet("gr:series:VIX").RedisNil()
	_, err = c.Get(ctx, "series:VIX")
	assert.ErrorIs(t, err, ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheTryLock(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheFromClient(db, "gr")
	c.owner = "proc-1"
	ctx := context.Background()

	mock.ExpectSetNX("gr:build:2024-01-02", "proc-1", time.Minute).SetVal(true)
	ok, err := c.TryLock(ctx, "build:2024-01-02", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectSetNX("gr:build:2024-01-02", "proc-1", time.Minute).SetVal(false)
	ok, err = c.TryLock(ctx, "build:2024-01-02", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}
