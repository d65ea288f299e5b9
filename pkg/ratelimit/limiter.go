// Package ratelimit gates upstream requests with a fixed-window counter
// kept in Redis, so the politeness budget holds across processes.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	ctgovRequestBudgetRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ctgov_request_budget_remaining",
		Help: "Requests remaining in the current upstream rate limit window",
	})

	ctgovRateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ctgov_rate_limit_blocks_total",
		Help: "Total number of requests blocked by the local rate limiter",
	})
)

// DefaultRatePerMinute is the upstream politeness budget used when no
// explicit rate is configured.
const DefaultRatePerMinute = 50

const window = time.Minute

// Limiter counts upstream requests per fixed window and blocks requests
// once the window budget is spent.
type Limiter struct {
	redis  *redis.Client
	rate   int
	logger zerolog.Logger
}

// NewLimiter creates a limiter allowing rate requests per minute.
// A non-positive rate falls back to DefaultRatePerMinute.
func NewLimiter(redisClient *redis.Client, rate int, logger zerolog.Logger) *Limiter {
	if rate <= 0 {
		rate = DefaultRatePerMinute
	}
	return &Limiter{
		redis:  redisClient,
		rate:   rate,
		logger: logger,
	}
}

// Allow consumes one request from the current window's budget.
// Returns false when the budget is exhausted. The counter key expires
// with the window, so state never needs explicit reset.
func (l *Limiter) Allow(ctx context.Context) (bool, error) {
	key := windowKey(time.Now())

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr window counter: %w", err)
	}

	// First hit in a window sets the expiry.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			l.logger.Warn().Err(err).Msg("Failed to set window expiry")
		}
	}

	remaining := int64(l.rate) - count
	if remaining < 0 {
		remaining = 0
	}
	ctgovRequestBudgetRemaining.Set(float64(remaining))

	if count > int64(l.rate) {
		ctgovRateLimitBlocksTotal.Inc()
		l.logger.Warn().
			Int64("count", count).
			Int("rate", l.rate).
			Msg("Upstream request blocked by rate limiter")
		return false, nil
	}

	return true, nil
}

// windowKey buckets timestamps into minute-aligned counter keys.
func windowKey(t time.Time) string {
	return fmt.Sprintf("ctgov:ratelimit:%d", t.Unix()/int64(window/time.Second))
}
