package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/npavlov/go-luhn-service/internal/ratelimit"
)

var ErrRedisDown = errors.New("redis is down")

// MockRedis is an in-memory stand-in for the Redis store.
type MockRedis struct {
	mu       sync.Mutex
	counters map[string]int64
	windows  map[string]time.Duration
	down     bool
}

func NewMockRedis() *MockRedis {
	return &MockRedis{
		mu:       sync.Mutex{},
		counters: make(map[string]int64),
		windows:  make(map[string]time.Duration),
		down:     false,
	}
}

func (m *MockRedis) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.down {
		return ErrRedisDown
	}

	return nil
}

func (m *MockRedis) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.down {
		return 0, ErrRedisDown
	}

	m.counters[key]++
	if _, found := m.windows[key]; !found {
		m.windows[key] = window
	}

	return m.counters[key], nil
}

// Keys returns the number of distinct counters touched so far.
func (m *MockRedis) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.counters)
}

func (m *MockRedis) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.down = down
}

// StaticPolicy always returns the configured decision and error.
type StaticPolicy struct {
	Decision ratelimit.Decision
	Err      error
}

func (p StaticPolicy) Allow(_ context.Context, _ string) (ratelimit.Decision, error) {
	return p.Decision, p.Err
}
