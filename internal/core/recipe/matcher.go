package recipe

import "strings"

// Matches 判斷兩個食材名稱是否指同一樣東西：
// 忽略大小寫後，任一方為另一方的子字串即視為匹配（"pepper" 匹配 "bell pepper"）。
// 空字串會匹配任何字串，呼叫端需先過濾空白項目。
func Matches(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	return strings.Contains(b, a) || strings.Contains(a, b)
}

// matchesAny 檢查 ingredient 是否被任一已選食材匹配
func matchesAny(ingredient string, selected []string) bool {
	for _, s := range selected {
		if Matches(ingredient, s) {
			return true
		}
	}
	return false
}

// NormalizeIngredient 轉小寫並去除前後空白
func NormalizeIngredient(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeSelection 正規化使用者輸入的食材清單：去空白、轉小寫、丟棄空項並去重，保留原順序
func NormalizeSelection(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		ing := NormalizeIngredient(item)
		if ing == "" || seen[ing] {
			continue
		}
		seen[ing] = true
		out = append(out, ing)
	}
	return out
}

// MaxDetectedMerge 單次上傳最多併入的偵測食材數量
const MaxDetectedMerge = 10

// MergeDetected 將圖片偵測結果的前 MaxDetectedMerge 項併入已選清單，已存在者略過
func MergeDetected(selected, detected []string) []string {
	merged := NormalizeSelection(selected)
	seen := make(map[string]bool, len(merged))
	for _, s := range merged {
		seen[s] = true
	}
	if len(detected) > MaxDetectedMerge {
		detected = detected[:MaxDetectedMerge]
	}
	for _, d := range detected {
		ing := NormalizeIngredient(d)
		if ing == "" || seen[ing] {
			continue
		}
		seen[ing] = true
		merged = append(merged, ing)
	}
	return merged
}
