package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// bucketTTLSeconds is how long an idle bucket survives in Redis.
const bucketTTLSeconds = 60

// tokenBucket refills a Redis hash {last_refill, tokens} and takes one token.
// Returns 1 when the request is allowed, 0 otherwise.
var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local bucket = redis.call('HMGET', key, 'last_refill', 'tokens')
	local last_refill = tonumber(bucket[1]) or now
	local tokens = tonumber(bucket[2]) or capacity

	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)

	local allowed = 0
	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HSET', key, 'last_refill', tostring(now), 'tokens', tostring(tokens))
	redis.call('EXPIRE', key, ttl)
	return allowed
`)

// Config holds configuration for the rate limiter.
type Config struct {
	RequestsPerSecond float64
	BurstCapacity     int
	Enabled           bool
}

// Limiter implements a Redis-backed token bucket shared by all transports.
type Limiter struct {
	client redis.Scripter
	config Config
	log    *zap.Logger
	now    func() time.Time
}

// NewLimiter creates a new token bucket limiter.
// A nil client disables limiting.
func NewLimiter(client redis.Scripter, config Config, log *zap.Logger) *Limiter {
	return &Limiter{
		client: client,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

// Enabled reports whether requests are actually being limited.
func (l *Limiter) Enabled() bool {
	return l != nil && l.config.Enabled && l.client != nil
}

// Allow takes one token from the bucket identified by key.
// Redis failures allow the request (fail open).
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if !l.Enabled() {
		return true
	}

	now := float64(l.now().UnixMicro()) / 1e6
	allowed, err := tokenBucket.Run(ctx, l.client, []string{"ratelimit:tb:" + key},
		l.config.RequestsPerSecond,
		l.config.BurstCapacity,
		now,
		bucketTTLSeconds,
	).Int64()
	if err != nil {
		l.log.Warn("rate limiter redis error, allowing request", zap.String("key", key), zap.Error(err))
		return true
	}

	if allowed == 0 {
		l.log.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Float64("limit", l.config.RequestsPerSecond),
			zap.Int("burst", l.config.BurstCapacity),
		)
		return false
	}
	return true
}

// ExceededMessage describes the limit to rejected clients.
func (l *Limiter) ExceededMessage() string {
	return fmt.Sprintf("Rate limit exceeded: %.2f requests/second (burst capacity: %d)",
		l.config.RequestsPerSecond, l.config.BurstCapacity)
}
