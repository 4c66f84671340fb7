// Package ratelimit decides whether a caller is still within its request budget.
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrInvalidLimit = errors.New("invalid rate limit")

const day = 24 * time.Hour

var units = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    day,
}

// Limit is a budget of Requests per Period.
type Limit struct {
	Requests int
	Period   time.Duration
}

func (l Limit) String() string {
	return fmt.Sprintf("%d/%s", l.Requests, l.Period)
}

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Policy decides whether the caller identified by key may proceed.
type Policy interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// ParseLimit accepts "10/1m", "10/minute" and "10 per minute".
func ParseLimit(raw string) (Limit, error) {
	value := strings.ToLower(strings.TrimSpace(raw))

	var count, period string
	switch {
	case strings.Contains(value, " per "):
		count, period, _ = strings.Cut(value, " per ")
	case strings.Contains(value, "/"):
		count, period, _ = strings.Cut(value, "/")
	default:
		return Limit{}, errors.Wrapf(ErrInvalidLimit, "%q", raw)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || requests <= 0 {
		return Limit{}, errors.Wrapf(ErrInvalidLimit, "bad request count in %q", raw)
	}

	duration, err := parsePeriod(strings.TrimSpace(period))
	if err != nil {
		return Limit{}, errors.Wrapf(ErrInvalidLimit, "bad period in %q", raw)
	}

	return Limit{Requests: requests, Period: duration}, nil
}

// ParseLimits parses a list of limits separated by commas or semicolons.
// An empty string yields no limits.
func ParseLimits(raw string) ([]Limit, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})

	limits := make([]Limit, 0, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			continue
		}

		limit, err := ParseLimit(field)
		if err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}

	return limits, nil
}

func parsePeriod(period string) (time.Duration, error) {
	if unit, found := units[strings.TrimSuffix(period, "s")]; found {
		return unit, nil
	}

	duration, err := time.ParseDuration(period)
	if err != nil {
		return 0, errors.Wrap(err, "parse duration")
	}

	if duration <= 0 {
		return 0, ErrInvalidLimit
	}

	return duration, nil
}
