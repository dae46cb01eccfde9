package recipe

const (
	// DefaultRecommendations 預設推薦數量
	DefaultRecommendations = 3
	// HighRatingThreshold 視為「喜歡」的最低星等
	HighRatingThreshold = 4
)

// Recommend 依使用者高評分（>= 4 星）食譜的菜系與飲食標籤，
// 依目錄順序挑出尚未評分、且菜系相同或飲食標籤有交集的食譜，最多 max 道。
func Recommend(catalog []Recipe, ratings map[int]int, max int) []Recipe {
	if max <= 0 {
		max = DefaultRecommendations
	}

	cuisines := make(map[string]bool)
	tags := make(map[string]bool)
	for _, r := range catalog {
		if ratings[r.ID] < HighRatingThreshold {
			continue
		}
		cuisines[r.Cuisine] = true
		for _, d := range r.Dietary {
			tags[d] = true
		}
	}
	if len(cuisines) == 0 {
		return []Recipe{}
	}

	out := make([]Recipe, 0, max)
	for _, r := range catalog {
		if len(out) >= max {
			break
		}
		if ratings[r.ID] > 0 {
			continue
		}
		if cuisines[r.Cuisine] || sharesTag(r.Dietary, tags) {
			out = append(out, r)
		}
	}
	return out
}

func sharesTag(dietary []string, tags map[string]bool) bool {
	for _, d := range dietary {
		if tags[d] {
			return true
		}
	}
	return false
}
