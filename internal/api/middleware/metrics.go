package middleware

import (
	"time"

	"recipe-finder/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 記錄每個路由的請求數與延遲，以路由樣板為標籤
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTP(c.FullPath(), c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
