package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := NewRedisCache(client, "lb:", time.Minute)

	properties.Property("stored payloads load back unchanged", prop.ForAll(
		func(payload []byte, key string) bool {
			if key == "" {
				return true
			}
			if err := c.Set(context.Background(), key, payload); err != nil {
				return false
			}
			loaded, err := c.Get(context.Background(), key)
			if err != nil {
				return false
			}
			return string(loaded) == string(payload)
		},
		gen.SliceOf(gen.UInt8()),
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRedisCacheMissReturnsNil(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := NewRedisCache(client, "lb:", time.Minute)
	data, err := c.Get(context.Background(), "never-set")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisCacheExpires(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	c := NewRedisCache(client, "lb:", 30*time.Second)
	require.NoError(t, c.Set(context.Background(), "best", []byte(`[]`)))

	mr.FastForward(31 * time.Second)

	data, err := c.Get(context.Background(), "best")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestRedisCachePrefixIsolation(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	a := NewRedisCache(client, "a:", time.Minute)
	b := NewRedisCache(client, "b:", time.Minute)

	require.NoError(t, a.Set(context.Background(), "k", []byte("from-a")))

	data, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestNoopCache(t *testing.T) {
	var c Noop
	require.NoError(t, c.Set(context.Background(), "k", []byte("x")))
	data, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Nil(t, data)
}
