package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/apr-engine/cache"
	"github.com/warp/apr-engine/regz"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*cache.Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	r := cache.NewRedis(mr.Addr(), ttl)
	t.Cleanup(func() { r.Close() })
	require.NoError(t, r.Ping(context.Background()))
	return r, mr
}

func TestRedis_MissIsNotAnError(t *testing.T) {
	r, _ := newTestRedis(t, time.Hour)

	val, ok, err := r.Get(context.Background(), "apr:missing")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)
}

func TestRedis_SetAppliesTTL(t *testing.T) {
	// GIVEN: A cache with a one-hour TTL
	// WHEN: Storing a value and moving the clock past the hour
	// THEN: The value is readable with its TTL, then expires into a miss

	ctx := context.Background()
	r, mr := newTestRedis(t, time.Hour)

	require.NoError(t, r.Set(ctx, "apr:k", "v"))

	val, ok, err := r.Get(ctx, "apr:k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
	assert.Equal(t, time.Hour, mr.TTL("apr:k"))

	mr.FastForward(time.Hour + time.Second)

	_, ok, err = r.Get(ctx, "apr:k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedis_ZeroTTLKeepsEntry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t, 0)

	require.NoError(t, r.Set(ctx, "apr:k", "v"))

	assert.Equal(t, time.Duration(0), mr.TTL("apr:k"))
	got, err := mr.Get("apr:k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestRedis_ResultRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t, time.Hour)
	loan := testLoan()
	res, err := regz.Calculate(loan)
	require.NoError(t, err)

	require.NoError(t, cache.PutResult(ctx, r, loan, res))
	got, hit, err := cache.GetResult(ctx, r, loan)

	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, res, got)
}

func TestRedis_ServerDownIsAnError(t *testing.T) {
	r, mr := newTestRedis(t, time.Hour)
	mr.Close()

	_, ok, err := r.Get(context.Background(), "apr:k")

	assert.Error(t, err)
	assert.False(t, ok)
}
