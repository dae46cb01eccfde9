package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"recipe-finder/internal/core/vision"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 檢查外部依賴是否可用
type Pinger func(ctx context.Context) error

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Version     string                 `json:"version"`
	CatalogSize int                    `json:"catalog_size"`
	StoreDriver string                 `json:"store_driver"`
	LabelCache  *vision.CacheStats     `json:"label_cache,omitempty"`
	Runtime     map[string]interface{} `json:"runtime"`
}

// Handler 健康檢查處理器
type Handler struct {
	cfg         *config.Config
	catalogSize int
	cacheStats  func() vision.CacheStats
	storePing   Pinger
}

// NewHandler 創建健康檢查處理器；cacheStats 與 storePing 可為 nil
func NewHandler(cfg *config.Config, catalogSize int, cacheStats func() vision.CacheStats, storePing Pinger) *Handler {
	return &Handler{
		cfg:         cfg,
		catalogSize: catalogSize,
		cacheStats:  cacheStats,
		storePing:   storePing,
	}
}

// HealthCheck 健康檢查
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now(),
		Version:     h.cfg.App.Version,
		CatalogSize: h.catalogSize,
		StoreDriver: h.cfg.Store.Driver,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.cacheStats != nil {
		stats := h.cacheStats()
		response.LabelCache = &stats
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：目錄已載入且儲存可連線
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.catalogSize == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "catalog empty"})
		return
	}
	if h.storePing != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.storePing(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "preference store unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// LivenessCheck 存活檢查
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}
