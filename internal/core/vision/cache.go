package vision

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// LabelCache 以圖片內容雜湊為鍵的標籤結果快取
type LabelCache struct {
	maxSize int
	ttl     time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	store map[string]cacheEntry
	stats CacheStats

	done      chan struct{}
	closeOnce sync.Once
}

// cacheEntry 快取條目
type cacheEntry struct {
	labels      []recipe.Label
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// CacheStats 快取統計
type CacheStats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// NewLabelCache 創建快取；停用時回傳 nil，nil 快取的所有方法皆為空操作
func NewLabelCache(cfg config.CacheConfig) *LabelCache {
	if !cfg.Enabled {
		common.LogInfo("標籤快取已停用")
		return nil
	}

	c := &LabelCache{
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		now:     time.Now,
		store:   make(map[string]cacheEntry),
		done:    make(chan struct{}),
	}
	if cfg.CleanupInterval > 0 {
		go c.startCleanup(cfg.CleanupInterval)
	}

	common.LogInfo("標籤快取已初始化",
		zap.Int("max_size", cfg.MaxSize),
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)
	return c
}

// Key 以圖片內容計算快取鍵
func Key(image []byte) string {
	sum := sha256.Sum256(image)
	return hex.EncodeToString(sum[:])
}

// Get 讀取快取
func (c *LabelCache) Get(key string) ([]recipe.Label, bool) {
	if c == nil {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[key]
	if !ok {
		c.stats.Misses++
		common.LogCacheMiss("labels")
		return nil, false
	}
	now := c.now()
	if now.After(entry.expiresAt) {
		delete(c.store, key)
		c.stats.Evictions++
		c.stats.Misses++
		common.LogCacheMiss("labels")
		return nil, false
	}

	entry.lastAccess = now
	entry.accessCount++
	c.store[key] = entry
	c.stats.Hits++
	common.LogCacheHit("labels")
	return append([]recipe.Label(nil), entry.labels...), true
}

// Set 寫入快取，滿了先清過期項再淘汰最少使用者
func (c *LabelCache) Set(key string, labels []recipe.Label) {
	if c == nil || c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxSize {
		c.cleanupLocked()
		for len(c.store) >= c.maxSize {
			c.evictLRULocked()
		}
	}

	now := c.now()
	c.store[key] = cacheEntry{
		labels:     append([]recipe.Label(nil), labels...),
		expiresAt:  now.Add(c.ttl),
		lastAccess: now,
	}
}

// Stats 取得統計
func (c *LabelCache) Stats() CacheStats {
	if c == nil {
		return CacheStats{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.stats
	s.Size = len(c.store)
	s.MaxSize = c.maxSize
	return s
}

// Close 停止清理協程並清空快取
func (c *LabelCache) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		c.store = make(map[string]cacheEntry)
		stats := c.stats
		c.mu.Unlock()
		common.LogInfo("標籤快取已關閉",
			zap.Int64("hits", stats.Hits),
			zap.Int64("misses", stats.Misses),
			zap.Int64("evictions", stats.Evictions),
		)
	})
}

func (c *LabelCache) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			n := c.cleanupLocked()
			c.mu.Unlock()
			if n > 0 {
				common.LogDebug("清理過期標籤快取", zap.Int("count", n))
			}
		case <-c.done:
			return
		}
	}
}

// cleanupLocked 清理過期項目，呼叫端需持有寫鎖
func (c *LabelCache) cleanupLocked() int {
	now := c.now()
	count := 0
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			count++
		}
	}
	c.stats.Evictions += int64(count)
	return count
}

// evictLRULocked 淘汰存取次數最少、最久未存取的項目
func (c *LabelCache) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	lowest := 0

	for key, entry := range c.store {
		if oldestKey == "" ||
			entry.accessCount < lowest ||
			(entry.accessCount == lowest && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowest = entry.accessCount
		}
	}
	if oldestKey != "" {
		delete(c.store, oldestKey)
		c.stats.Evictions++
	}
}
