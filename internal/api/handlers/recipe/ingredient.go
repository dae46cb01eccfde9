package recipe

import (
	"context"
	"fmt"
	"net/http"

	"recipe-finder/internal/core/image"
	recipeService "recipe-finder/internal/core/recipe"
	"recipe-finder/internal/core/vision"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Detector 圖片食材偵測
type Detector interface {
	Detect(ctx context.Context, img []byte, selected []string) (*vision.DetectResult, error)
}

// DetectRequest 食材偵測請求
type DetectRequest struct {
	ImageBase64         string   `json:"image_base64"`
	SelectedIngredients []string `json:"selected_ingredients"`
}

// DetectResponse 食材偵測響應
type DetectResponse struct {
	Success     bool                  `json:"success"`
	Ingredients []string              `json:"ingredients"`
	Labels      []recipeService.Label `json:"labels"`
	Selection   []string              `json:"selection"`
	Message     string                `json:"message"`
}

// IngredientHandler 食材偵測處理器
type IngredientHandler struct {
	images   *image.Service
	detector Detector
}

// NewIngredientHandler 創建食材偵測處理器
func NewIngredientHandler(images *image.Service, detector Detector) *IngredientHandler {
	return &IngredientHandler{images: images, detector: detector}
}

// HandleDetect 處理食材偵測請求
func (h *IngredientHandler) HandleDetect(c *gin.Context) {
	reqID := requestid.Get(c)

	var req DetectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("Invalid detect request", zap.Error(err), zap.String("request_id", reqID))
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	upload, err := h.images.DecodeBase64(req.ImageBase64)
	if err != nil {
		common.LogWarn("Rejected image upload",
			zap.Error(err),
			zap.Int("encoded_length", len(req.ImageBase64)),
			zap.String("request_id", reqID),
		)
		common.WriteError(c, err)
		return
	}

	result, err := h.detector.Detect(c.Request.Context(), upload.Data, req.SelectedIngredients)
	if err != nil {
		common.WriteError(c, err)
		return
	}

	message := "No ingredients detected. Try a clearer image or add manually."
	if n := len(result.Ingredients); n > 0 {
		message = fmt.Sprintf("Found %d ingredient(s)", n)
	}

	common.LogInfo("Detected ingredients",
		zap.String("request_id", reqID),
		zap.String("mime", upload.MIMEType),
		zap.String("format", upload.Format),
		zap.Int("width", upload.Width),
		zap.Int("height", upload.Height),
		zap.Int("labels", len(result.Labels)),
		zap.Strings("ingredients", result.Ingredients),
		zap.Bool("cache_hit", result.CacheHit),
	)

	c.JSON(http.StatusOK, DetectResponse{
		Success:     true,
		Ingredients: result.Ingredients,
		Labels:      result.Labels,
		Selection:   result.Selection,
		Message:     message,
	})
}
