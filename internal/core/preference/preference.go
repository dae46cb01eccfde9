// Package preference 收藏與評分：以可注入的儲存協作者在建立時載入、每次變更後保存
package preference

import (
	"context"
	"errors"
)

// ErrNotFound 找不到對應的偏好紀錄
var ErrNotFound = errors.New("preferences not found")

// MinRating、MaxRating 星等範圍
const (
	MinRating = 1
	MaxRating = 5
)

// Preferences 一個工作階段的收藏與評分
type Preferences struct {
	Favorites map[int]bool `json:"favorites"`
	Ratings   map[int]int  `json:"ratings"`
}

// New 建立空的偏好
func New() *Preferences {
	return &Preferences{
		Favorites: make(map[int]bool),
		Ratings:   make(map[int]int),
	}
}

// Clone 深拷貝
func (p *Preferences) Clone() *Preferences {
	out := New()
	for id, v := range p.Favorites {
		out.Favorites[id] = v
	}
	for id, v := range p.Ratings {
		out.Ratings[id] = v
	}
	return out
}

// ensure 補上 nil map（來自舊資料或手動建構）
func (p *Preferences) ensure() {
	if p.Favorites == nil {
		p.Favorites = make(map[int]bool)
	}
	if p.Ratings == nil {
		p.Ratings = make(map[int]int)
	}
}

// Store 偏好持久化協作者
type Store interface {
	Load(ctx context.Context, sessionID string) (*Preferences, error)
	Save(ctx context.Context, sessionID string, prefs *Preferences) error
}
