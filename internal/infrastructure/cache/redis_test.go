package cache

import (
	"context"
	"testing"
	"time"

	"assetfin-backend/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	// non-zero DB to verify it's set
	c, err := OpenRedis(context.Background(), config.RedisConfig{Addr: s.Addr(), DB: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.Equal(t, 2, c.Options().DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.Set(ctx, "k", "v", 0).Err())
	v, err := c.Get(ctx, "k").Result()
	require.NoError(t, err)
	require.Equal(t, "v", v)
}

func TestOpenRedis_Password(t *testing.T) {
	s := miniredis.RunT(t)
	s.RequireAuth("sekret")

	_, err := OpenRedis(context.Background(), config.RedisConfig{Addr: s.Addr()})
	require.Error(t, err)

	c, err := OpenRedis(context.Background(), config.RedisConfig{Addr: s.Addr(), Password: "sekret"})
	require.NoError(t, err)
	_ = c.Close()
}

func TestOpenRedis_Failure(t *testing.T) {
	// unresolvable host → ping fails fast
	_, err := OpenRedis(context.Background(), config.RedisConfig{Addr: "not-a-real-host:6379"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not-a-real-host")
}
