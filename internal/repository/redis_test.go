package repository

import (
	"context"
	"testing"
	"time"

	"shareit/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimiter(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	limiter := NewRedisRateLimiter(client)
	ctx := context.Background()

	t.Run("WithinLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := limiter.CheckRateLimit(ctx, "user:1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("OverLimit", func(t *testing.T) {
		allowed, err := limiter.CheckRateLimit(ctx, "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("SeparateKeys", func(t *testing.T) {
		allowed, err := limiter.CheckRateLimit(ctx, "user:2", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("WindowExpires", func(t *testing.T) {
		assert.True(t, s.Exists("rate_limit:user:1"))
		s.FastForward(2 * time.Minute)

		allowed, err := limiter.CheckRateLimit(ctx, "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.SetError("connection refused")
		defer s.SetError("")

		_, err := limiter.CheckRateLimit(ctx, "user:3", 3, time.Minute)
		assert.Error(t, err)
	})
}

func TestRedisRateLimiter_NilClient(t *testing.T) {
	_, err := NewRedisRateLimiter(nil).CheckRateLimit(context.Background(), "k", 1, time.Second)
	assert.Error(t, err)
}

func TestRedisHelpers(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr(), PoolSize: 2})

	assert.NoError(t, Ping(context.Background(), client))
	assert.NoError(t, Close(client))
	assert.Error(t, Ping(context.Background(), client))
	assert.NoError(t, Close(nil))
}
