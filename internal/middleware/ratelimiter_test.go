package middleware

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avisgenius/backend-go/internal/config"
)

func testLimiterConfig(t *testing.T, limit, window int64) *config.Config {
	mr := miniredis.RunT(t)

	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.ParseInt(portStr, 10, 64)
	require.NoError(t, err)

	return &config.Config{
		RedisHost:       host,
		RedisPort:       port,
		LoginRateLimit:  limit,
		LoginRateWindow: window,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoginLimiter_AllowsUpToLimit(t *testing.T) {
	cfg := testLimiterConfig(t, 3, 60)
	limiter, err := NewLoginLimiter(cfg, discardLogger())
	require.NoError(t, err)
	defer limiter.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "marie@bistro.fr", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, err := limiter.Allow(ctx, "marie@bistro.fr", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestLoginLimiter_KeyedPerEmailAndIP(t *testing.T) {
	cfg := testLimiterConfig(t, 1, 60)
	limiter, err := NewLoginLimiter(cfg, discardLogger())
	require.NoError(t, err)
	defer limiter.Close()

	ctx := context.Background()
	allowed, err := limiter.Allow(ctx, "marie@bistro.fr", "10.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)

	// The pair is exhausted, but other emails and other ips are not.
	allowed, _ = limiter.Allow(ctx, "marie@bistro.fr", "10.0.0.1")
	assert.False(t, allowed)
	allowed, _ = limiter.Allow(ctx, "other@bistro.fr", "10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "marie@bistro.fr", "10.0.0.2")
	assert.True(t, allowed)
}

func TestLoginLimiter_WindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, _ := strconv.ParseInt(portStr, 10, 64)

	cfg := &config.Config{
		RedisHost:       host,
		RedisPort:       port,
		LoginRateLimit:  1,
		LoginRateWindow: 30,
	}
	limiter, err := NewLoginLimiter(cfg, discardLogger())
	require.NoError(t, err)
	defer limiter.Close()

	ctx := context.Background()
	allowed, _ := limiter.Allow(ctx, "marie@bistro.fr", "10.0.0.1")
	require.True(t, allowed)
	allowed, _ = limiter.Allow(ctx, "marie@bistro.fr", "10.0.0.1")
	require.False(t, allowed)

	mr.FastForward(31 * time.Second)

	allowed, _ = limiter.Allow(ctx, "marie@bistro.fr", "10.0.0.1")
	assert.True(t, allowed)
}

func TestLoginLimiter_ZeroLimitDisablesThrottling(t *testing.T) {
	cfg := testLimiterConfig(t, 0, 60)
	limiter, err := NewLoginLimiter(cfg, discardLogger())
	require.NoError(t, err)
	defer limiter.Close()

	for i := 0; i < 50; i++ {
		allowed, err := limiter.Allow(context.Background(), "marie@bistro.fr", "10.0.0.1")
		require.NoError(t, err)
		require.True(t, allowed)
	}
}

func TestNoOpLoginLimiter(t *testing.T) {
	limiter := NewNoOpLoginLimiter(discardLogger())
	defer limiter.Close()

	for i := 0; i < 100; i++ {
		allowed, err := limiter.Allow(context.Background(), "any@where.fr", "1.2.3.4")
		require.NoError(t, err)
		require.True(t, allowed)
	}
}
