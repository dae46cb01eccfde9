package preference

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"recipe-finder/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis 只實作 RedisStore 用到的 Get/Set，其餘方法未實作
type fakeRedis struct {
	redis.Cmdable
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return redis.NewStatusResult("", fmt.Errorf("unsupported value type %T", value))
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStoreWithFakeClient(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	cfg := config.StoreConfig{KeyPrefix: "rf:prefs:", TTL: time.Hour}
	store := NewRedisStore(client, cfg)

	_, err := store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	p := New()
	p.Favorites[3] = true
	p.Ratings[3] = 4
	p.Ratings[12] = 1
	require.NoError(t, store.Save(ctx, "abc", p))

	assert.JSONEq(t, `{"favorites":{"3":true},"ratings":{"3":4,"12":1}}`, client.data["rf:prefs:abc"])
	assert.Equal(t, time.Hour, client.ttls["rf:prefs:abc"])

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
}

func TestRedisStoreLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty document", func(t *testing.T) {
		client := newFakeRedis()
		client.data["abc"] = `{}`
		loaded, err := NewRedisStore(client, config.StoreConfig{}).Load(ctx, "abc")
		require.NoError(t, err)
		assert.NotNil(t, loaded.Favorites)
		assert.NotNil(t, loaded.Ratings)
	})

	t.Run("corrupt document", func(t *testing.T) {
		client := newFakeRedis()
		client.data["abc"] = `not json`
		_, err := NewRedisStore(client, config.StoreConfig{}).Load(ctx, "abc")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("connection failure", func(t *testing.T) {
		client := newFakeRedis()
		client.getErr = errors.New("connection reset")
		_, err := NewRedisStore(client, config.StoreConfig{}).Load(ctx, "abc")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

// 需要實際的 Redis，未設定 TEST_REDIS_ADDR 時略過
func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx := context.Background()
	cfg := config.StoreConfig{RedisAddr: addr, KeyPrefix: "recipe-finder:test:", TTL: time.Minute}
	client, err := NewRedisClient(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore(client, cfg)
	id := "session-" + time.Now().Format("150405.000000")
	defer client.Del(ctx, cfg.KeyPrefix+id)

	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	p := New()
	p.Favorites[4] = true
	p.Ratings[4] = 5
	require.NoError(t, store.Save(ctx, id, p))

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	ttl, err := client.TTL(ctx, cfg.KeyPrefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestNewRedisClientUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewRedisClient(ctx, config.StoreConfig{RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}
