package session

import (
	"fmt"
	"net/http"
	"strconv"

	"recipe-finder/internal/core/preference"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler 收藏與評分處理器
type Handler struct {
	prefs *preference.Manager
}

// NewHandler 創建處理器
func NewHandler(prefs *preference.Manager) *Handler {
	return &Handler{prefs: prefs}
}

// RatingRequest 評分請求
type RatingRequest struct {
	Stars int `json:"stars"`
}

// FavoriteResponse 切換收藏響應
type FavoriteResponse struct {
	*preference.Session
	RecipeID int  `json:"recipe_id"`
	Favorite bool `json:"favorite"`
}

// RecommendationsResponse 推薦響應
type RecommendationsResponse struct {
	Recipes []recipe.Recipe `json:"recipes"`
}

// HandleCreate 建立工作階段
func (h *Handler) HandleCreate(c *gin.Context) {
	sess, err := h.prefs.Create(c.Request.Context())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// HandleGet 載入工作階段
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	sess, err := h.prefs.Get(c.Request.Context(), id)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// HandleFavorites 收藏的食譜
func (h *Handler) HandleFavorites(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	favs, err := h.prefs.Favorites(c.Request.Context(), id)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, RecommendationsResponse{Recipes: favs})
}

// HandleToggleFavorite 切換收藏
func (h *Handler) HandleToggleFavorite(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	recipeID, ok := recipeIDParam(c)
	if !ok {
		return
	}

	sess, favorite, err := h.prefs.ToggleFavorite(c.Request.Context(), id, recipeID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, FavoriteResponse{Session: sess, RecipeID: recipeID, Favorite: favorite})
}

// HandleSetRating 設定評分
func (h *Handler) HandleSetRating(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	recipeID, ok := recipeIDParam(c)
	if !ok {
		return
	}

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	sess, err := h.prefs.SetRating(c.Request.Context(), id, recipeID, req.Stars)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// HandleRecommendations 依評分推薦；query limit 預設 3
func (h *Handler) HandleRecommendations(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	limit := recipe.DefaultRecommendations
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			common.WriteError(c, common.ErrInvalidRequest.Wrap(fmt.Errorf("invalid limit %q", raw)))
			return
		}
		limit = n
	}

	recs, err := h.prefs.Recommendations(c.Request.Context(), id, limit)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, RecommendationsResponse{Recipes: recs})
}

func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !common.IsUUID(id) {
		common.WriteError(c, common.ErrSessionNotFound)
		return "", false
	}
	return id, true
}

func recipeIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("recipeId"))
	if err != nil {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(fmt.Errorf("invalid recipe id %q", c.Param("recipeId"))))
		return 0, false
	}
	return id, true
}
