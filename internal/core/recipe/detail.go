package recipe

// Missing 回傳已選食材未涵蓋的食譜食材，保留食譜原順序。
// 未選任何食材時回傳空清單，不宣稱「全部缺少」。
func Missing(r Recipe, selected []string) []string {
	selected = NormalizeSelection(selected)
	if len(selected) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		if !matchesAny(ing, selected) {
			out = append(out, ing)
		}
	}
	return out
}

// Have 回傳已選食材涵蓋的食譜食材
func Have(r Recipe, selected []string) []string {
	selected = NormalizeSelection(selected)
	out := make([]string, 0, len(r.Ingredients))
	if len(selected) == 0 {
		return out
	}
	for _, ing := range r.Ingredients {
		if matchesAny(ing, selected) {
			out = append(out, ing)
		}
	}
	return out
}

// SubstitutesFor 依替代表順序回傳第一個與 ingredient 匹配的項目，無匹配時回傳空清單
func SubstitutesFor(ingredient string, table SubstitutionTable) []string {
	if NormalizeIngredient(ingredient) == "" {
		return []string{}
	}
	for _, row := range table {
		if Matches(ingredient, row.Key) {
			return append([]string(nil), row.Substitutes...)
		}
	}
	return []string{}
}

// IngredientSubstitutions 一個食材及其替代建議
type IngredientSubstitutions struct {
	Ingredient  string   `json:"ingredient"`
	Substitutes []string `json:"substitutes"`
}

// SubstitutionsFor 批次查詢，僅保留有替代建議的食材
func SubstitutionsFor(ingredients []string, table SubstitutionTable) []IngredientSubstitutions {
	out := make([]IngredientSubstitutions, 0, len(ingredients))
	for _, ing := range ingredients {
		subs := SubstitutesFor(ing, table)
		if len(subs) == 0 {
			continue
		}
		out = append(out, IngredientSubstitutions{Ingredient: ing, Substitutes: subs})
	}
	return out
}
