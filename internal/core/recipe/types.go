package recipe

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid 檢查難度是否為已知值
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// MaxCookTimeCeiling 烹調時間上限哨兵值，等於此值時不套用時間篩選
const MaxCookTimeCeiling = 120

// Nutrition 營養資訊（僅透傳，不參與計算）
type Nutrition struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// Recipe 食譜（靜態目錄，載入後不可變）
type Recipe struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	Cuisine      string     `json:"cuisine"`
	Difficulty   Difficulty `json:"difficulty"`
	CookTime     int        `json:"cookTime"`
	Servings     int        `json:"servings"`
	Ingredients  []string   `json:"ingredients"`
	Dietary      []string   `json:"dietary"`
	Instructions []string   `json:"instructions"`
	Nutrition    Nutrition  `json:"nutrition"`
	Image        string     `json:"image"`
}

// HasDietary 檢查食譜是否帶有指定飲食標籤
func (r Recipe) HasDietary(tag string) bool {
	for _, d := range r.Dietary {
		if d == tag {
			return true
		}
	}
	return false
}

// AnnotatedRecipe 帶有匹配資訊的食譜，每次篩選重新計算
type AnnotatedRecipe struct {
	Recipe
	MatchCount      int     `json:"matchCount,omitempty"`
	MatchPercentage float64 `json:"matchPercentage,omitempty"`
}

// Selection 使用者目前的篩選狀態
type Selection struct {
	SelectedIngredients []string   `json:"selectedIngredients"`
	DietaryPrefs        []string   `json:"dietaryPrefs"`
	Difficulty          Difficulty `json:"difficulty"`
	// MaxCookTime 0 視為未設定（等同 MaxCookTimeCeiling）
	MaxCookTime int `json:"maxCookTime"`
	// Servings 保留 UI 傳入的字串形式，篩選時才解析
	Servings string `json:"servings"`
}

// Label 外部圖片標籤服務回傳的單一標籤
type Label struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// KeywordMapping 關鍵字到標準食材的對應
type KeywordMapping struct {
	Keyword   string `json:"keyword"`
	Canonical string `json:"canonical"`
}

// Vocabulary 有序的關鍵字對應表，順序決定先匹配者勝出
type Vocabulary []KeywordMapping

// Substitution 單一食材的替代建議
type Substitution struct {
	Key         string   `json:"key"`
	Substitutes []string `json:"substitutes"`
}

// SubstitutionTable 有序的替代表
type SubstitutionTable []Substitution
