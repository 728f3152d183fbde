package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avisgenius/backend-go/internal/config"
)

// LoginLimiter throttles login attempts using Redis
type LoginLimiter interface {
	// Allow reports whether another login attempt is permitted for this
	// email/ip pair within the current window.
	Allow(ctx context.Context, email, ip string) (bool, error)

	// Close closes the Redis connection
	Close() error
}

type redisLoginLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	logger *slog.Logger
}

// NewLoginLimiter creates a new Redis-based login limiter
func NewLoginLimiter(cfg *config.Config, logger *slog.Logger) (LoginLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       int(cfg.RedisDB),
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("❌ [LoginLimiter] Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("✅ [LoginLimiter] Connected to Redis",
		"host", cfg.RedisHost,
		"port", cfg.RedisPort,
	)

	return &redisLoginLimiter{
		client: client,
		limit:  cfg.LoginRateLimit,
		window: time.Duration(cfg.LoginRateWindow) * time.Second,
		logger: logger,
	}, nil
}

// loginKey generates the Redis key for one email/ip pair.
// Format: rate:login:{email}:{ip}
func loginKey(email, ip string) string {
	return fmt.Sprintf("rate:login:%s:%s", email, ip)
}

func (r *redisLoginLimiter) Allow(ctx context.Context, email, ip string) (bool, error) {
	if r.limit <= 0 {
		return true, nil
	}

	key := loginKey(email, ip)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	// NX keeps the window anchored at the first attempt.
	pipe.ExpireNX(ctx, key, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [LoginLimiter] Failed to count attempt", "error", err, "email", email)
		// On error, allow the request but log it
		return true, err
	}

	count := incr.Val()
	if count > r.limit {
		r.logger.Warn("⚠️ [LoginLimiter] Login attempts throttled",
			"email", email,
			"ip", ip,
			"count", count,
			"limit", r.limit,
		)
		return false, nil
	}

	return true, nil
}

func (r *redisLoginLimiter) Close() error {
	return r.client.Close()
}

// NoOpLoginLimiter is a login limiter that always allows attempts
// Used when Redis is not available
type NoOpLoginLimiter struct {
	logger *slog.Logger
}

// NewNoOpLoginLimiter creates a no-op login limiter
func NewNoOpLoginLimiter(logger *slog.Logger) LoginLimiter {
	logger.Warn("⚠️ [LoginLimiter] Using no-op login limiter - throttling is disabled")
	return &NoOpLoginLimiter{logger: logger}
}

func (r *NoOpLoginLimiter) Allow(ctx context.Context, email, ip string) (bool, error) {
	return true, nil
}

func (r *NoOpLoginLimiter) Close() error {
	return nil
}
