package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Error   string `json:"error"`             // 錯誤信息
	Code    string `json:"code"`              // 錯誤代碼
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 可以取得原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，使 Wrap 後的錯誤仍能匹配預定義錯誤
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap 以原始錯誤建立同代碼的新錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{Code: e.Code, Message: e.Message, Status: e.Status, Err: err}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsCustomError 取出錯誤鏈中的 CustomError，沒有時歸類為內部錯誤
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	if IsValidationError(err) {
		return ErrInvalidRequest.Wrap(err)
	}
	return ErrInternalError.Wrap(err)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest   = "INVALID_REQUEST"    // 400
	ErrCodeNotFound         = "NOT_FOUND"          // 404
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED" // 405
	ErrCodeTooLarge         = "PAYLOAD_TOO_LARGE"  // 413
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"  // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest   = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrNotFound         = NewError(ErrCodeNotFound, "resource not found", http.StatusNotFound, nil)
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "method not allowed", http.StatusMethodNotAllowed, nil)
	ErrTooManyRequests  = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "service temporarily unavailable", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "gateway timeout", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrInvalidImageFormat  = NewError("INVALID_IMAGE_FORMAT", "please upload a valid image file (JPG, PNG)", http.StatusBadRequest, nil)
	ErrInvalidImageSize    = NewError("INVALID_IMAGE_SIZE", "image too large, please upload an image under 5MB", http.StatusRequestEntityTooLarge, nil)
	ErrEmptyImage          = NewError("EMPTY_IMAGE", "no image data provided", http.StatusBadRequest, nil)
	ErrRecipeNotFound      = NewError("RECIPE_NOT_FOUND", "recipe not found", http.StatusNotFound, nil)
	ErrSessionNotFound     = NewError("SESSION_NOT_FOUND", "session not found", http.StatusNotFound, nil)
	ErrInvalidRating       = NewError("INVALID_RATING", "rating must be between 1 and 5", http.StatusBadRequest, nil)
	ErrLabelServiceError   = NewError("LABEL_SERVICE_ERROR", "failed to analyze image", http.StatusBadGateway, nil)
	ErrLabelServiceDown    = NewError("LABEL_SERVICE_UNAVAILABLE", "image analysis is temporarily unavailable", http.StatusServiceUnavailable, nil)
	ErrLabelServiceAuth    = NewError("LABEL_SERVICE_AUTH", "image analysis credentials not configured", http.StatusInternalServerError, nil)
	ErrPreferenceStoreFail = NewError("PREFERENCE_STORE_ERROR", "failed to access saved preferences", http.StatusInternalServerError, nil)
)
