package preference

import (
	"context"
	"sync"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore 記憶體儲存，可並行存取；重啟後資料消失
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]*Preferences
}

// NewMemoryStore 創建空的記憶體儲存
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]*Preferences)}
}

// Load 讀取偏好，回傳副本
func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// Save 儲存偏好副本，已存在則覆寫
func (s *MemoryStore) Save(ctx context.Context, sessionID string, prefs *Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefs[sessionID] = prefs.Clone()
	return nil
}

// Len 目前的工作階段數
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prefs)
}
