package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// MemStorage is the subset of Redis the service relies on.
type MemStorage interface {
	Ping(ctx context.Context) error
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RStorage struct {
	client redis.UniversalClient
}

func NewRStorage(addr string) *RStorage {
	//nolint:exhaustruct
	redisClient := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	return &RStorage{client: redisClient}
}

// NewRStorageWithClient wraps an existing client.
func NewRStorageWithClient(client redis.UniversalClient) *RStorage {
	return &RStorage{client: client}
}

func (rst *RStorage) Ping(ctx context.Context) error {
	err := rst.client.Ping(ctx).Err()

	return errors.Wrap(err, "redis ping")
}

// Incr bumps key and starts its expiry on first use, atomically.
func (rst *RStorage) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	var incr *redis.IntCmd

	_, err := rst.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)

		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to increment counter")
	}

	return incr.Val(), nil
}

func (rst *RStorage) Close() error {
	return errors.Wrap(rst.client.Close(), "redis close")
}
