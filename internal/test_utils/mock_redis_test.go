package testutils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testutils "github.com/npavlov/go-luhn-service/internal/test_utils"
)

func TestMockRedis(t *testing.T) {
	t.Parallel()

	store := testutils.NewMockRedis()
	require.NoError(t, store.Ping(t.Context()))

	for want := int64(1); want <= 3; want++ {
		hits, err := store.Incr(t.Context(), "ratelimit:generate:caller:60:0", 0)
		require.NoError(t, err)
		assert.Equal(t, want, hits)
	}
	assert.Equal(t, 1, store.Keys())

	store.SetDown(true)
	require.ErrorIs(t, store.Ping(t.Context()), testutils.ErrRedisDown)
	_, err := store.Incr(t.Context(), "other", 0)
	require.ErrorIs(t, err, testutils.ErrRedisDown)
}
