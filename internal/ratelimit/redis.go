package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// Counter increments a key that expires after window. The Redis store implements it.
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisPolicy is a fixed-window counter shared by every process using the same store.
type RedisPolicy struct {
	counter Counter
	name    string
	limits  []Limit
	now     func() time.Time
}

// NewRedisPolicy creates a shared policy. name separates the counters of different routes.
func NewRedisPolicy(counter Counter, name string, limits ...Limit) *RedisPolicy {
	return &RedisPolicy{
		counter: counter,
		name:    name,
		limits:  limits,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (p *RedisPolicy) WithClock(now func() time.Time) *RedisPolicy {
	p.now = now

	return p
}

func (p *RedisPolicy) Allow(ctx context.Context, key string) (Decision, error) {
	now := p.now()
	decision := Decision{Allowed: true, RetryAfter: 0}

	for _, limit := range p.limits {
		windowStart := now.Truncate(limit.Period)
		counterKey := fmt.Sprintf("ratelimit:%s:%s:%d:%d",
			p.name, key, int64(limit.Period/time.Second), windowStart.Unix())

		hits, err := p.counter.Incr(ctx, counterKey, limit.Period)
		if err != nil {
			return Decision{Allowed: true, RetryAfter: 0}, errors.Wrap(err, "failed to count request")
		}

		if hits > int64(limit.Requests) {
			decision.Allowed = false
			if wait := windowStart.Add(limit.Period).Sub(now); wait > decision.RetryAfter {
				decision.RetryAfter = wait
			}
		}
	}

	return decision, nil
}
