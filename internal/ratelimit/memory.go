package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 5 * time.Minute
	minIdleTTL      = time.Hour
)

// MemoryPolicy keeps one token bucket per caller and limit in process memory.
type MemoryPolicy struct {
	limiters sync.Map // map[string]*memoryEntry
	limits   []Limit
	idleTTL  time.Duration
}

type memoryEntry struct {
	mu         sync.Mutex
	buckets    []*rate.Limiter
	lastAccess time.Time
}

// NewMemoryPolicy creates the policy and starts a janitor that drops idle callers
// until ctx is done. A caller is only dropped after staying idle for the longest
// limit period, when all of its buckets are full again.
func NewMemoryPolicy(ctx context.Context, limits ...Limit) *MemoryPolicy {
	ttl := minIdleTTL
	for _, limit := range limits {
		ttl = max(ttl, limit.Period)
	}

	policy := &MemoryPolicy{
		limiters: sync.Map{},
		limits:   limits,
		idleTTL:  ttl,
	}

	go policy.cleanupStale(ctx, cleanupInterval)

	return policy
}

// Allow reserves one token from every bucket of key. If any bucket would make the
// caller wait, all reservations are returned and the request is denied.
func (p *MemoryPolicy) Allow(_ context.Context, key string) (Decision, error) {
	if len(p.limits) == 0 {
		return Decision{Allowed: true, RetryAfter: 0}, nil
	}

	entry := p.getEntry(key)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	entry.lastAccess = now

	reservations := make([]*rate.Reservation, 0, len(entry.buckets))
	var retryAfter time.Duration

	for _, bucket := range entry.buckets {
		reservation := bucket.ReserveN(now, 1)
		reservations = append(reservations, reservation)

		if delay := reservation.DelayFrom(now); delay > retryAfter {
			retryAfter = delay
		}
	}

	if retryAfter == 0 {
		return Decision{Allowed: true, RetryAfter: 0}, nil
	}

	for _, reservation := range reservations {
		reservation.CancelAt(now)
	}

	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}

func (p *MemoryPolicy) getEntry(key string) *memoryEntry {
	if val, ok := p.limiters.Load(key); ok {
		//nolint:forcetypeassert
		return val.(*memoryEntry)
	}

	buckets := make([]*rate.Limiter, 0, len(p.limits))
	for _, limit := range p.limits {
		every := rate.Every(limit.Period / time.Duration(limit.Requests))
		buckets = append(buckets, rate.NewLimiter(every, limit.Requests))
	}

	val, _ := p.limiters.LoadOrStore(key, &memoryEntry{
		mu:         sync.Mutex{},
		buckets:    buckets,
		lastAccess: time.Now(),
	})

	//nolint:forcetypeassert
	return val.(*memoryEntry)
}

func (p *MemoryPolicy) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.evictIdle(time.Now())
		}
	}
}

func (p *MemoryPolicy) evictIdle(now time.Time) {
	threshold := now.Add(-p.idleTTL)

	p.limiters.Range(func(key, value any) bool {
		//nolint:forcetypeassert
		entry := value.(*memoryEntry)
		entry.mu.Lock()
		idle := entry.lastAccess.Before(threshold)
		entry.mu.Unlock()

		if idle {
			p.limiters.Delete(key)
		}

		return true
	})
}
