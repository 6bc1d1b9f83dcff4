package database

import (
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.example.com", Port: "6380"}
	assert.Equal(t, "redis.example.com:6380", cfg.Addr())
}

func TestNewRedis_ConnectsAndPings(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, ok := strings.Cut(mr.Addr(), ":")
	require.True(t, ok)

	client, err := NewRedis(RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	assert.NotNil(t, client)
}

func TestNewRedis_UnreachableHost(t *testing.T) {
	client, err := NewRedis(RedisConfig{
		Host: "invalid-redis-host-xyz",
		Port: "6379",
	})

	assert.Error(t, err)
	assert.Nil(t, client)
}
