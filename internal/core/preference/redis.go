package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"recipe-finder/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)

// RedisStore 以 JSON 字串儲存在 Redis，鍵為 KeyPrefix + sessionID
type RedisStore struct {
	client    redis.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient 依設定建立連線並測試
func NewRedisClient(ctx context.Context, cfg config.StoreConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStore 創建 Redis 儲存
func NewRedisStore(client redis.Cmdable, cfg config.StoreConfig) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
	}
}

// Load 讀取偏好
func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Preferences, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	var p Preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	p.ensure()
	return &p, nil
}

// Save 儲存偏好並刷新 TTL
func (s *RedisStore) Save(ctx context.Context, sessionID string, prefs *Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

func (s *RedisStore) key(sessionID string) string {
	return s.keyPrefix + sessionID
}
