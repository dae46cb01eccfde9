package vision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"

	"go.uber.org/zap"
)

// ProviderClarifai Clarifai 標籤服務
const ProviderClarifai = "clarifai"

// NewLabeler 依設定建立標籤服務，未設定憑證時每次呼叫都回傳 ErrUnauthorized
func NewLabeler(cfg config.LabelerConfig) (Labeler, error) {
	switch cfg.Provider {
	case ProviderClarifai, "":
	default:
		return nil, fmt.Errorf("unknown labeler provider %q", cfg.Provider)
	}
	if cfg.APIKey == "" {
		common.LogWarn("未設定標籤服務憑證，圖片辨識將無法使用")
		return LabelerFunc(func(context.Context, []byte) ([]recipe.Label, error) {
			return nil, fmt.Errorf("%w: api key not configured", ErrUnauthorized)
		}), nil
	}
	return NewClarifaiClient(cfg), nil
}

// DetectResult 一次上傳的辨識結果
type DetectResult struct {
	Labels      []recipe.Label `json:"labels"`
	Ingredients []string       `json:"ingredients"`
	Selection   []string       `json:"selection"`
	CacheHit    bool           `json:"cache_hit"`
}

// Service 食材偵測服務：快取、呼叫標籤服務、對應標準食材並併入已選清單
type Service struct {
	provider string
	labeler  Labeler
	cache    *LabelCache
	recipes  *recipe.Service
	opts     recipe.ReconcileOptions
}

// NewService 創建偵測服務；cache 可為 nil
func NewService(cfg *config.Config, labeler Labeler, cache *LabelCache, recipes *recipe.Service) *Service {
	if cfg.Breaker.Enabled {
		labeler = NewBreakerLabeler(labeler, cfg.Breaker)
	}
	// 佇列在熔斷器外層，排隊被拒不計入失敗
	labeler = NewQueuedLabeler(labeler, cfg.Labeler.MaxConcurrent, cfg.Labeler.MaxQueue)
	return &Service{
		provider: cfg.Labeler.Provider,
		labeler:  labeler,
		cache:    cache,
		recipes:  recipes,
		opts: recipe.ReconcileOptions{
			ConfidenceThreshold: recipe.Threshold(cfg.Labeler.MinConfidence),
			MaxResults:          cfg.Labeler.MaxResults,
		},
	}
}

// Detect 偵測圖片中的食材並與 selected 合併；每次呼叫最多呼叫標籤服務一次
func (s *Service) Detect(ctx context.Context, image []byte, selected []string) (*DetectResult, error) {
	key := Key(image)
	labels, hit := s.cache.Get(key)
	if hit {
		metrics.LabelRequestsTotal.WithLabelValues("cache_hit").Inc()
	} else {
		start := time.Now()
		var err error
		labels, err = s.labeler.DetectLabels(ctx, image)
		elapsed := time.Since(start)
		common.LogLabelCall(s.provider, elapsed, len(labels), err)
		if err != nil {
			return nil, s.classify(ctx, err)
		}
		metrics.LabelRequestsTotal.WithLabelValues("ok").Inc()
		metrics.LabelRequestDuration.Observe(elapsed.Seconds())
		s.cache.Set(key, labels)
	}

	ingredients := s.recipes.Reconcile(labels, s.opts)
	metrics.DetectedIngredients.Observe(float64(len(ingredients)))

	return &DetectResult{
		Labels:      labels,
		Ingredients: ingredients,
		Selection:   recipe.MergeDetected(selected, ingredients),
		CacheHit:    hit,
	}, nil
}

// CacheStats 快取統計
func (s *Service) CacheStats() CacheStats {
	return s.cache.Stats()
}

// classify 將標籤服務錯誤對應為 API 錯誤
func (s *Service) classify(ctx context.Context, err error) error {
	var outcome string
	var mapped *common.CustomError
	switch {
	case errors.Is(err, ErrQueueFull):
		outcome, mapped = "queue_full", common.ErrServiceUnavailable
	case errors.Is(err, ErrUnavailable):
		outcome, mapped = "breaker_open", common.ErrLabelServiceDown
	case errors.Is(err, ErrUnauthorized):
		outcome, mapped = "error", common.ErrLabelServiceAuth
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		outcome, mapped = "error", common.ErrGatewayTimeout
	default:
		outcome, mapped = "error", common.ErrLabelServiceError
	}

	metrics.LabelRequestsTotal.WithLabelValues(outcome).Inc()
	common.LogWarn("標籤服務呼叫未成功",
		zap.String("provider", s.provider),
		zap.String("outcome", outcome),
		zap.String("code", mapped.Code),
		zap.Error(err),
	)
	return mapped.Wrap(err)
}
