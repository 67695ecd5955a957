package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/wasawasa-bot/pkg/config"
)

func TestMetricsClient_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := New(ctx, config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	kv := NewMetricsClient(client)

	require.NoError(t, kv.Set(ctx, "session:a", "1", time.Minute))
	value, err := kv.Get(ctx, "session:a")
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	stored, err := kv.SetNX(ctx, "session:a", "2", time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)

	stored, err = kv.SetNX(ctx, "session:b", "2", time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	keys, err := kv.ScanKeys(ctx, "session:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"session:a", "session:b"}, keys)

	n, err := kv.Eval(ctx, `return redis.call("DEL", KEYS[1])`, []string{"session:b"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, mr.Exists("session:b"))

	require.NoError(t, kv.Delete(ctx, "session:a"))
	_, err = kv.Get(ctx, "session:a")
	assert.ErrorIs(t, err, Nil)
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := New(ctx, config.RedisConfig{Addr: "127.0.0.1:1", MaxRetries: -1})
	assert.Error(t, err)
}
