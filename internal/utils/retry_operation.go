package utils

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
)

const (
	maxRetries      = 3
	InitialInterval = 200 * time.Millisecond
	Multiplier      = 3
)

type (
	OperationFunc func() error
	// NotifyFunc is called after a failed attempt with the wait before the next one.
	NotifyFunc func(err error, wait time.Duration)
)

// RetryOperation runs operation until it succeeds, returns a permanent error
// (see Permanent), the retries are exhausted or ctx is done.
func RetryOperation(ctx context.Context, operation OperationFunc) error {
	return RetryOperationNotify(ctx, operation, nil)
}

// RetryOperationNotify is RetryOperation reporting every retry to notify.
func RetryOperationNotify(ctx context.Context, operation OperationFunc, notify NotifyFunc) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = InitialInterval
	policy.Multiplier = Multiplier

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = backoff.Notify(notify)
	}

	err := backoff.RetryNotify(
		backoff.Operation(operation),
		backoff.WithContext(backoff.WithMaxRetries(policy, maxRetries), ctx),
		onRetry,
	)
	if err != nil {
		return errors.Wrap(err, "failed to execute operation after retry")
	}

	return nil
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
