package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-finder/internal/pkg/common"
)

// Deduplicator 在時間窗內拒絕相同的 POST 請求（同路徑、同請求體），
// 避免同一次上傳重複觸發外部標籤服務
type Deduplicator struct {
	window time.Duration
	now    func() time.Time

	mu       sync.Mutex
	requests map[string]time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewDeduplicator 創建去重器，window <= 0 時使用 1 秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	return &Deduplicator{
		window:   window,
		now:      time.Now,
		requests: make(map[string]time.Time),
		stop:     make(chan struct{}),
	}
}

// StartCleanup 定期清除過期指紋，直到 Stop
func (d *Deduplicator) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.cleanup()
			case <-d.stop:
				return
			}
		}
	}()
}

func (d *Deduplicator) cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	for k, t := range d.requests {
		if now.Sub(t) > d.window {
			delete(d.requests, k)
		}
	}
}

// Stop 停止清理協程
func (d *Deduplicator) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// seen 記錄指紋，時間窗內已出現過則回傳 true
func (d *Deduplicator) seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Middleware 請求去重中間件
func (d *Deduplicator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.Body == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, common.ErrorResponse{
					Error: "request body too large",
					Code:  common.ErrCodeTooLarge,
				})
				return
			}
			common.LogWarn("Failed to read request body", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
				Error: common.ErrInvalidRequest.Message,
				Code:  common.ErrInvalidRequest.Code,
			})
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(body)
		fingerprint := c.ClientIP() + ":" + c.Request.URL.Path + ":" + hex.EncodeToString(hash[:])

		if d.seen(fingerprint) {
			common.LogInfo("Duplicate request rejected",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusConflict, common.ErrorResponse{
				Error: "duplicate request, please wait before retrying",
				Code:  "DUPLICATE_REQUEST",
			})
			return
		}

		c.Next()
	}
}
