// Package vision 圖片標籤偵測：外部標籤服務、結果快取與熔斷
package vision

import (
	"context"
	"errors"

	"recipe-finder/internal/core/recipe"
)

// Labeler 外部圖片標籤服務
type Labeler interface {
	// DetectLabels 回傳圖片標籤，信心值範圍 0..100
	DetectLabels(ctx context.Context, image []byte) ([]recipe.Label, error)
}

// LabelerFunc 讓一般函式滿足 Labeler
type LabelerFunc func(ctx context.Context, image []byte) ([]recipe.Label, error)

// DetectLabels 實作 Labeler
func (f LabelerFunc) DetectLabels(ctx context.Context, image []byte) ([]recipe.Label, error) {
	return f(ctx, image)
}

var (
	// ErrUnauthorized 標籤服務拒絕憑證
	ErrUnauthorized = errors.New("label service rejected credentials")
	// ErrUpstream 標籤服務回傳非成功狀態或無法解析的內容
	ErrUpstream = errors.New("label service error")
	// ErrUnavailable 熔斷器開啟，暫停呼叫標籤服務
	ErrUnavailable = errors.New("label service unavailable")
	// ErrQueueFull 等待中的標籤請求已達上限
	ErrQueueFull = errors.New("label request queue is full")
)
