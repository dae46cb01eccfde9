package recipe

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrEmptyIngredients 食譜沒有任何食材，無法計算匹配比例
var ErrEmptyIngredients = errors.New("recipe has no ingredients")

// Filter 依序套用食材匹配、飲食、難度、烹調時間、份量篩選。
//
// 篩選是 fail-open 的：管線內任何錯誤或 panic 都會回傳完整、未篩選的目錄，
// 而不是部分結果或錯誤，確保使用者永遠看得到食譜。
func Filter(catalog []Recipe, sel Selection) []AnnotatedRecipe {
	out, _ := guardedFilter(catalog, sel)
	return out
}

// FilterWithFallback 與 Filter 相同，但額外回傳觸發 fail-open 的原因（未觸發時為 nil）
func FilterWithFallback(catalog []Recipe, sel Selection) ([]AnnotatedRecipe, error) {
	return guardedFilter(catalog, sel)
}

// runFilter 實際執行的管線，測試可替換
var runFilter = TryFilter

func guardedFilter(catalog []Recipe, sel Selection) (out []AnnotatedRecipe, cause error) {
	defer func() {
		if r := recover(); r != nil {
			out = unfiltered(catalog)
			cause = fmt.Errorf("filter panic: %v", r)
		}
	}()

	filtered, err := runFilter(catalog, sel)
	if err != nil {
		return unfiltered(catalog), err
	}
	return filtered, nil
}

// TryFilter 執行篩選管線並回傳錯誤，不做 fail-open
func TryFilter(catalog []Recipe, sel Selection) ([]AnnotatedRecipe, error) {
	result := unfiltered(catalog)

	// 1. 食材匹配
	selected := NormalizeSelection(sel.SelectedIngredients)
	if len(selected) > 0 {
		annotated, err := matchIngredients(result, selected)
		if err != nil {
			return nil, err
		}
		result = annotated
	}

	// 2. 飲食偏好（全部符合）
	if len(sel.DietaryPrefs) > 0 {
		result = where(result, func(r AnnotatedRecipe) bool {
			for _, pref := range sel.DietaryPrefs {
				if !r.HasDietary(pref) {
					return false
				}
			}
			return true
		})
	}

	// 3. 難度
	if sel.Difficulty != "" {
		result = where(result, func(r AnnotatedRecipe) bool {
			return r.Difficulty == sel.Difficulty
		})
	}

	// 4. 烹調時間
	if sel.MaxCookTime > 0 && sel.MaxCookTime < MaxCookTimeCeiling {
		result = where(result, func(r AnnotatedRecipe) bool {
			return r.CookTime <= sel.MaxCookTime
		})
	}

	// 5. 份量
	if raw := strings.TrimSpace(sel.Servings); raw != "" {
		servings, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid servings filter %q: %w", sel.Servings, err)
		}
		result = where(result, func(r AnnotatedRecipe) bool {
			return r.Servings == servings
		})
	}

	return result, nil
}

// matchIngredients 計算每道食譜的匹配數與比例，去除零匹配並依匹配數穩定排序（降冪）
func matchIngredients(recipes []AnnotatedRecipe, selected []string) ([]AnnotatedRecipe, error) {
	out := make([]AnnotatedRecipe, 0, len(recipes))
	for _, r := range recipes {
		if len(r.Ingredients) == 0 {
			return nil, fmt.Errorf("recipe %d: %w", r.ID, ErrEmptyIngredients)
		}
		count := 0
		for _, ing := range r.Ingredients {
			if matchesAny(ing, selected) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		r.MatchCount = count
		r.MatchPercentage = float64(count) / float64(len(r.Ingredients)) * 100
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchCount > out[j].MatchCount
	})
	return out, nil
}

// unfiltered 以目錄順序包裝成未標註的結果
func unfiltered(catalog []Recipe) []AnnotatedRecipe {
	out := make([]AnnotatedRecipe, len(catalog))
	for i, r := range catalog {
		out[i] = AnnotatedRecipe{Recipe: r}
	}
	return out
}

func where(items []AnnotatedRecipe, fn func(AnnotatedRecipe) bool) []AnnotatedRecipe {
	result := make([]AnnotatedRecipe, 0, len(items))
	for _, item := range items {
		if fn(item) {
			result = append(result, item)
		}
	}
	return result
}
