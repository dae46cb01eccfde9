package vision

import (
	"context"
	"fmt"
	"sync/atomic"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// QueueStatus 佇列狀態
type QueueStatus struct {
	InFlight  int   `json:"in_flight"`
	Waiting   int   `json:"waiting"`
	Workers   int   `json:"workers"`
	MaxQueue  int   `json:"max_queue"`
	Processed int64 `json:"processed"`
}

// QueuedLabeler 限制同時呼叫標籤服務的數量，排隊數超過上限時直接拒絕
type QueuedLabeler struct {
	next     Labeler
	slots    chan struct{}
	maxQueue int

	waiting   atomic.Int32
	processed atomic.Int64
}

// NewQueuedLabeler 創建佇列包裝；workers <= 0 時不限制
func NewQueuedLabeler(next Labeler, workers, maxQueue int) Labeler {
	if workers <= 0 {
		return next
	}
	return &QueuedLabeler{
		next:     next,
		slots:    make(chan struct{}, workers),
		maxQueue: maxQueue,
	}
}

// DetectLabels 實作 Labeler
func (q *QueuedLabeler) DetectLabels(ctx context.Context, image []byte) ([]recipe.Label, error) {
	select {
	case q.slots <- struct{}{}:
	default:
		if int(q.waiting.Add(1)) > q.maxQueue {
			q.waiting.Add(-1)
			common.LogWarn("標籤請求佇列已滿", zap.Int("max_queue", q.maxQueue))
			return nil, fmt.Errorf("%w: %d waiting", ErrQueueFull, q.maxQueue)
		}
		select {
		case q.slots <- struct{}{}:
			q.waiting.Add(-1)
		case <-ctx.Done():
			q.waiting.Add(-1)
			return nil, ctx.Err()
		}
	}
	defer func() {
		<-q.slots
		q.processed.Add(1)
	}()

	return q.next.DetectLabels(ctx, image)
}

// Status 佇列狀態
func (q *QueuedLabeler) Status() QueueStatus {
	return QueueStatus{
		InFlight:  len(q.slots),
		Waiting:   int(q.waiting.Load()),
		Workers:   cap(q.slots),
		MaxQueue:  q.maxQueue,
		Processed: q.processed.Load(),
	}
}
