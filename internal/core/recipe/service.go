package recipe

import (
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Service 食譜服務：持有唯讀目錄並提供篩選、詳情、替代與推薦
type Service struct {
	catalog *Catalog
}

// NewService 創建新的食譜服務
func NewService(catalog *Catalog) *Service {
	return &Service{catalog: catalog}
}

// Catalog 回傳目錄
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// SearchResult 一道篩選結果及其缺少的食材
type SearchResult struct {
	AnnotatedRecipe
	Missing []string `json:"missing"`
}

// Search 執行篩選管線；失敗時回傳完整目錄並記錄警告
func (s *Service) Search(sel Selection) []SearchResult {
	results, cause := FilterWithFallback(s.catalog.Recipes, sel)
	if cause != nil {
		metrics.FilterRequestsTotal.WithLabelValues("fallback").Inc()
		common.LogWarn("篩選失敗，回傳完整目錄",
			zap.Error(cause),
			zap.Int("catalog_size", len(results)),
		)
	} else {
		metrics.FilterRequestsTotal.WithLabelValues("ok").Inc()
	}
	metrics.FilterResults.Observe(float64(len(results)))

	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			AnnotatedRecipe: r,
			Missing:         Missing(r.Recipe, sel.SelectedIngredients),
		}
	}

	common.LogDebug("篩選完成",
		zap.Int("selected", len(sel.SelectedIngredients)),
		zap.Strings("dietary", sel.DietaryPrefs),
		zap.String("difficulty", string(sel.Difficulty)),
		zap.Int("results", len(out)),
	)
	return out
}

// RecipeDetail 食譜詳情，含已有/缺少食材與每個食材的替代建議
type RecipeDetail struct {
	Recipe        Recipe                    `json:"recipe"`
	Have          []string                  `json:"have"`
	Missing       []string                  `json:"missing"`
	Substitutions []IngredientSubstitutions `json:"substitutions"`
}

// Detail 取得食譜詳情
func (s *Service) Detail(id int, selected []string) (*RecipeDetail, error) {
	r, ok := s.catalog.Get(id)
	if !ok {
		return nil, common.ErrRecipeNotFound
	}
	return &RecipeDetail{
		Recipe:        r,
		Have:          Have(r, selected),
		Missing:       Missing(r, selected),
		Substitutions: SubstitutionsFor(r.Ingredients, s.catalog.Substitutions),
	}, nil
}

// Substitutes 查詢單一食材的替代建議
func (s *Service) Substitutes(ingredient string) []string {
	return SubstitutesFor(ingredient, s.catalog.Substitutions)
}

// SelectionSubstitutions 已選食材的替代建議（只列出有建議者）
func (s *Service) SelectionSubstitutions(selected []string) []IngredientSubstitutions {
	return SubstitutionsFor(NormalizeSelection(selected), s.catalog.Substitutions)
}

// Recommend 依評分推薦
func (s *Service) Recommend(ratings map[int]int, max int) []Recipe {
	return Recommend(s.catalog.Recipes, ratings, max)
}

// Reconcile 以目錄詞彙表對應外部標籤
func (s *Service) Reconcile(labels []Label, opts ReconcileOptions) []string {
	return Reconcile(labels, s.catalog.Vocabulary, opts)
}
