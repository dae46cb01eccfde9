package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// IsUUID 檢查字串是否為合法 UUID
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// WriteError 將錯誤轉為統一 JSON 錯誤響應並中止請求
func WriteError(c *gin.Context, err error) {
	ce := AsCustomError(err)
	if ce.Status >= 500 {
		LogError("請求處理失敗",
			zap.String("code", ce.Code),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.Writer.Header().Get("X-Request-ID")),
			zap.Error(err),
		)
	}
	resp := ErrorResponse{Error: ce.Message, Code: ce.Code}
	if gin.Mode() == gin.DebugMode && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	c.AbortWithStatusJSON(ce.Status, resp)
}
