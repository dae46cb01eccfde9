package recipe

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"recipe-finder/internal/pkg/common"
)

//go:embed data/catalog.json
var embeddedCatalog []byte

// Catalog 啟動時載入一次的靜態資料，之後視為唯讀
type Catalog struct {
	Recipes           []Recipe          `json:"recipes"`
	Vocabulary        Vocabulary        `json:"vocabulary"`
	Substitutions     SubstitutionTable `json:"substitutions"`
	CommonIngredients []string          `json:"commonIngredients"`
	DietaryOptions    []string          `json:"dietaryOptions"`

	byID map[int]int
}

// LoadCatalog 從檔案載入目錄，path 為空時使用內嵌資料
func LoadCatalog(path string) (*Catalog, error) {
	data := embeddedCatalog
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
		}
		data = raw
	}
	return ParseCatalog(data)
}

// ParseCatalog 解析並驗證目錄 JSON
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := common.DecodeJSONStrict(bytes.NewReader(data), &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return &c, nil
}

// NewCatalog 以現成資料建立目錄（測試與自訂來源使用）
func NewCatalog(recipes []Recipe, vocab Vocabulary, subs SubstitutionTable) (*Catalog, error) {
	c := &Catalog{Recipes: recipes, Vocabulary: vocab, Substitutions: subs}
	if err := c.normalize(); err != nil {
		return nil, err
	}
	return c, nil
}

// normalize 驗證不變量並將關鍵字轉為小寫
func (c *Catalog) normalize() error {
	var errs []error

	c.byID = make(map[int]int, len(c.Recipes))
	for i, r := range c.Recipes {
		if _, dup := c.byID[r.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate recipe id %d", r.ID))
		}
		c.byID[r.ID] = i
		if strings.TrimSpace(r.Name) == "" {
			errs = append(errs, fmt.Errorf("recipe %d: empty name", r.ID))
		}
		if len(r.Ingredients) == 0 {
			errs = append(errs, fmt.Errorf("recipe %d: %w", r.ID, ErrEmptyIngredients))
		}
		if !r.Difficulty.Valid() {
			errs = append(errs, fmt.Errorf("recipe %d: unknown difficulty %q", r.ID, r.Difficulty))
		}
		if r.CookTime <= 0 {
			errs = append(errs, fmt.Errorf("recipe %d: cook time must be positive", r.ID))
		}
		if r.Servings <= 0 {
			errs = append(errs, fmt.Errorf("recipe %d: servings must be positive", r.ID))
		}
		if c.Recipes[i].Dietary == nil {
			c.Recipes[i].Dietary = []string{}
		}
	}

	for i, m := range c.Vocabulary {
		kw := strings.ToLower(strings.TrimSpace(m.Keyword))
		if kw == "" {
			errs = append(errs, fmt.Errorf("vocabulary entry %d: empty keyword", i))
		}
		c.Vocabulary[i].Keyword = kw
	}

	for i, s := range c.Substitutions {
		if strings.TrimSpace(s.Key) == "" {
			errs = append(errs, fmt.Errorf("substitution entry %d: empty key", i))
		}
	}

	return errors.Join(errs...)
}

// Get 依 ID 取得食譜
func (c *Catalog) Get(id int) (Recipe, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Recipe{}, false
	}
	return c.Recipes[i], true
}

// Len 食譜數量
func (c *Catalog) Len() int {
	return len(c.Recipes)
}
