package recipe

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	recipeService "recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 食譜查詢處理器
type Handler struct {
	recipes *recipeService.Service
}

// NewHandler 創建食譜處理器
func NewHandler(recipes *recipeService.Service) *Handler {
	return &Handler{recipes: recipes}
}

// flexString 同時接受 JSON 字串與數字（UI 的份量下拉選單傳字串）
type flexString string

// UnmarshalJSON 實作 json.Unmarshaler
func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("servings must be a string or number")
	}
	*f = flexString(n.String())
	return nil
}

// SearchRequest 篩選請求
type SearchRequest struct {
	SelectedIngredients []string   `json:"selected_ingredients"`
	DietaryPrefs        []string   `json:"dietary_prefs"`
	Difficulty          string     `json:"difficulty"`
	MaxCookTime         int        `json:"max_cook_time"`
	Servings            flexString `json:"servings"`
}

// SearchResponse 篩選響應
type SearchResponse struct {
	Recipes []recipeService.SearchResult `json:"recipes"`
	Total   int                          `json:"total"`
}

// ListResponse 目錄響應
type ListResponse struct {
	Recipes []recipeService.Recipe `json:"recipes"`
	Total   int                    `json:"total"`
}

// IngredientsResponse 常用食材與飲食選項
type IngredientsResponse struct {
	CommonIngredients []string `json:"common_ingredients"`
	DietaryOptions    []string `json:"dietary_options"`
	Difficulties      []string `json:"difficulties"`
	MaxCookTime       int      `json:"max_cook_time"`
}

// SubstitutionResponse 替代建議
type SubstitutionResponse struct {
	Ingredient  string   `json:"ingredient"`
	Substitutes []string `json:"substitutes"`
}

// HandleList 回傳完整目錄
func (h *Handler) HandleList(c *gin.Context) {
	recipes := h.recipes.Catalog().Recipes
	c.JSON(http.StatusOK, ListResponse{Recipes: recipes, Total: len(recipes)})
}

// HandleGet 回傳食譜詳情；query ingredients=a,b 為目前已選食材
func (h *Handler) HandleGet(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(fmt.Errorf("invalid recipe id %q", c.Param("id"))))
		return
	}

	detail, err := h.recipes.Detail(id, common.SplitList(c.Query("ingredients")))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// HandleSearch 執行篩選管線
func (h *Handler) HandleSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("Invalid search request", zap.Error(err))
		common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	sel, err := req.toSelection()
	if err != nil {
		common.WriteError(c, err)
		return
	}

	results := h.recipes.Search(sel)
	c.JSON(http.StatusOK, SearchResponse{Recipes: results, Total: len(results)})
}

// HandleIngredients 回傳常用食材與飲食選項
func (h *Handler) HandleIngredients(c *gin.Context) {
	catalog := h.recipes.Catalog()
	c.JSON(http.StatusOK, IngredientsResponse{
		CommonIngredients: catalog.CommonIngredients,
		DietaryOptions:    catalog.DietaryOptions,
		Difficulties: []string{
			string(recipeService.DifficultyEasy),
			string(recipeService.DifficultyMedium),
			string(recipeService.DifficultyHard),
		},
		MaxCookTime: recipeService.MaxCookTimeCeiling,
	})
}

// HandleSubstitutions 查詢替代建議：ingredient=x 查單一食材，ingredients=a,b 批次查詢
func (h *Handler) HandleSubstitutions(c *gin.Context) {
	if list := common.SplitList(c.Query("ingredients")); len(list) > 0 {
		c.JSON(http.StatusOK, gin.H{"substitutions": h.recipes.SelectionSubstitutions(list)})
		return
	}

	ingredient := strings.TrimSpace(c.Query("ingredient"))
	if ingredient == "" {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(fmt.Errorf("ingredient is required")))
		return
	}
	c.JSON(http.StatusOK, SubstitutionResponse{
		Ingredient:  ingredient,
		Substitutes: h.recipes.Substitutes(ingredient),
	})
}

// toSelection 驗證並轉換為篩選狀態；份量字串保持原樣交由篩選管線解析
func (r SearchRequest) toSelection() (recipeService.Selection, error) {
	difficulty := recipeService.Difficulty(r.Difficulty)
	if difficulty != "" && !difficulty.Valid() {
		return recipeService.Selection{}, common.NewValidationError(fmt.Sprintf("unknown difficulty %q", r.Difficulty))
	}
	if r.MaxCookTime < 0 {
		return recipeService.Selection{}, common.NewValidationError("max_cook_time must not be negative")
	}

	return recipeService.Selection{
		SelectedIngredients: recipeService.NormalizeSelection(r.SelectedIngredients),
		DietaryPrefs:        r.DietaryPrefs,
		Difficulty:          difficulty,
		MaxCookTime:         r.MaxCookTime,
		Servings:            string(r.Servings),
	}, nil
}
