package vision

import (
	"context"
	"errors"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerLabeler 以熔斷器包裝 Labeler，連續失敗達門檻後快速失敗
type BreakerLabeler struct {
	next Labeler
	cb   *gobreaker.CircuitBreaker[[]recipe.Label]
}

// NewBreakerLabeler 創建熔斷包裝
func NewBreakerLabeler(next Labeler, cfg config.BreakerConfig) *BreakerLabeler {
	name := "label-service"
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// 呼叫端取消不算標籤服務失敗
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
			common.LogWarn("熔斷器狀態變更",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	metrics.BreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	return &BreakerLabeler{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[[]recipe.Label](settings),
	}
}

// DetectLabels 實作 Labeler
func (b *BreakerLabeler) DetectLabels(ctx context.Context, image []byte) ([]recipe.Label, error) {
	labels, err := b.cb.Execute(func() ([]recipe.Label, error) {
		return b.next.DetectLabels(ctx, image)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return labels, err
}

// State 目前狀態字串
func (b *BreakerLabeler) State() string {
	return b.cb.State().String()
}
