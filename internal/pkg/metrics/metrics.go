// Package metrics 定義服務的 Prometheus 指標
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal 依路由、方法、狀態碼統計請求數
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_finder_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration 請求延遲
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_finder_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	// FilterRequestsTotal 篩選次數，outcome 為 ok 或 fallback
	FilterRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_finder_filter_requests_total",
			Help: "Total number of recipe filter invocations by outcome",
		},
		[]string{"outcome"},
	)

	// FilterResults 每次篩選回傳的食譜數
	FilterResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_finder_filter_results",
			Help:    "Number of recipes returned per filter invocation",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	// LabelRequestsTotal 標籤服務呼叫結果：ok、error、cache_hit、breaker_open、queue_full
	LabelRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_finder_label_requests_total",
			Help: "Total number of image label requests by outcome",
		},
		[]string{"outcome"},
	)

	// LabelRequestDuration 標籤服務呼叫延遲
	LabelRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_finder_label_request_duration_seconds",
			Help:    "Duration of upstream image label requests in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
	)

	// DetectedIngredients 每張圖片對應出的標準食材數
	DetectedIngredients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipe_finder_detected_ingredients",
			Help:    "Number of canonical ingredients reconciled per image",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 10},
		},
	)

	// BreakerState 熔斷器狀態（0 closed, 1 half-open, 2 open）
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipe_finder_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// PreferenceOpsTotal 收藏/評分儲存操作
	PreferenceOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_finder_preference_ops_total",
			Help: "Total number of preference store operations",
		},
		[]string{"op", "result"},
	)
)

// ObserveHTTP 記錄一次 HTTP 請求
func ObserveHTTP(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObservePreferenceOp 記錄一次儲存操作
func ObservePreferenceOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	PreferenceOpsTotal.WithLabelValues(op, result).Inc()
}
