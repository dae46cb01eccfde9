package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCatalog() []Recipe {
	return []Recipe{
		{ID: 1, Name: "Tomato Onion Salad", Cuisine: "Italian", Difficulty: DifficultyEasy, CookTime: 20, Servings: 2,
			Ingredients: []string{"tomato", "onion"}, Dietary: []string{"vegan"}},
		{ID: 2, Name: "Chicken Rice", Cuisine: "Italian", Difficulty: DifficultyMedium, CookTime: 40, Servings: 4,
			Ingredients: []string{"chicken", "rice"}, Dietary: []string{}},
	}
}

func ids(rs []AnnotatedRecipe) []int {
	out := make([]int, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestFilterSingleIngredient(t *testing.T) {
	got := Filter(sampleCatalog(), Selection{SelectedIngredients: []string{"tomato"}})

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 1, got[0].MatchCount)
	assert.InDelta(t, 50.0, got[0].MatchPercentage, 0.0001)
}

func TestFilterDietaryRequiresEveryTag(t *testing.T) {
	catalog := sampleCatalog()

	got := Filter(catalog, Selection{SelectedIngredients: []string{"tomato"}, DietaryPrefs: []string{"vegan"}})
	assert.Equal(t, []int{1}, ids(got))

	got = Filter(catalog, Selection{SelectedIngredients: []string{"tomato"}, DietaryPrefs: []string{"vegan", "vegetarian"}})
	assert.Empty(t, got)
}

func TestFilterEmptySelectionReturnsCatalog(t *testing.T) {
	got := Filter(sampleCatalog(), Selection{})

	assert.Equal(t, []int{1, 2}, ids(got))
	for _, r := range got {
		assert.Zero(t, r.MatchCount)
		assert.Zero(t, r.MatchPercentage)
	}
}

func TestFilterBlankIngredientsIgnored(t *testing.T) {
	got := Filter(sampleCatalog(), Selection{SelectedIngredients: []string{"", "   "}})
	assert.Equal(t, []int{1, 2}, ids(got))
}

func TestFilterIsCaseInsensitiveAndBidirectional(t *testing.T) {
	catalog := []Recipe{
		{ID: 1, Name: "Stuffed Peppers", Difficulty: DifficultyEasy, CookTime: 10, Servings: 2,
			Ingredients: []string{"bell pepper", "rice"}},
		{ID: 2, Name: "Plain Rice", Difficulty: DifficultyEasy, CookTime: 10, Servings: 2,
			Ingredients: []string{"rice"}},
	}

	got := Filter(catalog, Selection{SelectedIngredients: []string{"PEPPER"}})
	assert.Equal(t, []int{1}, ids(got))

	got = Filter(catalog, Selection{SelectedIngredients: []string{"red bell pepper"}})
	assert.Equal(t, []int{1}, ids(got))
}

func TestFilterSortIsStableDescending(t *testing.T) {
	catalog := []Recipe{
		{ID: 1, Name: "A", Difficulty: DifficultyEasy, CookTime: 10, Servings: 2, Ingredients: []string{"egg", "flour"}},
		{ID: 2, Name: "B", Difficulty: DifficultyEasy, CookTime: 10, Servings: 2, Ingredients: []string{"egg", "milk", "flour"}},
		{ID: 3, Name: "C", Difficulty: DifficultyEasy, CookTime: 10, Servings: 2, Ingredients: []string{"egg", "sugar"}},
		{ID: 4, Name: "D", Difficulty: DifficultyEasy, CookTime: 10, Servings: 2, Ingredients: []string{"egg", "milk"}},
	}

	got := Filter(catalog, Selection{SelectedIngredients: []string{"egg", "milk"}})

	assert.Equal(t, []int{2, 4, 1, 3}, ids(got))
	assert.Equal(t, []int{2, 2, 1, 1}, []int{got[0].MatchCount, got[1].MatchCount, got[2].MatchCount, got[3].MatchCount})
	assert.InDelta(t, 100.0, got[1].MatchPercentage, 0.0001)
}

func TestFilterDifficultyCookTimeServings(t *testing.T) {
	catalog := sampleCatalog()

	tests := []struct {
		name string
		sel  Selection
		want []int
	}{
		{"difficulty", Selection{Difficulty: DifficultyMedium}, []int{2}},
		{"cook time", Selection{MaxCookTime: 30}, []int{1}},
		{"cook time inclusive", Selection{MaxCookTime: 40}, []int{1, 2}},
		{"cook time ceiling disables filter", Selection{MaxCookTime: MaxCookTimeCeiling}, []int{1, 2}},
		{"cook time unset", Selection{MaxCookTime: 0}, []int{1, 2}},
		{"servings", Selection{Servings: "4"}, []int{2}},
		{"servings no match", Selection{Servings: "3"}, []int{}},
		{"combined", Selection{SelectedIngredients: []string{"rice"}, Difficulty: DifficultyMedium, Servings: "4"}, []int{2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(catalog, tt.sel)))
		})
	}
}

func TestFilterFailsOpenOnBadServings(t *testing.T) {
	catalog := sampleCatalog()

	got, cause := FilterWithFallback(catalog, Selection{SelectedIngredients: []string{"tomato"}, Servings: "many"})

	require.Error(t, cause)
	assert.Equal(t, []int{1, 2}, ids(got))
	for _, r := range got {
		assert.Zero(t, r.MatchCount)
	}
}

func TestFilterFailsOpenOnEmptyIngredientRecipe(t *testing.T) {
	catalog := append(sampleCatalog(), Recipe{ID: 3, Name: "Broken", Difficulty: DifficultyEasy, CookTime: 5, Servings: 1})

	got, cause := FilterWithFallback(catalog, Selection{SelectedIngredients: []string{"tomato"}})

	require.ErrorIs(t, cause, ErrEmptyIngredients)
	assert.Equal(t, []int{1, 2, 3}, ids(got))

	// 未選食材時不計算比例，不觸發失敗
	got, cause = FilterWithFallback(catalog, Selection{})
	assert.NoError(t, cause)
	assert.Len(t, got, 3)
}

func TestTryFilterReportsError(t *testing.T) {
	_, err := TryFilter(sampleCatalog(), Selection{Servings: "two"})
	assert.Error(t, err)
}

func TestFilterDoesNotMutateCatalog(t *testing.T) {
	catalog := sampleCatalog()
	_ = Filter(catalog, Selection{SelectedIngredients: []string{"onion"}})
	assert.Equal(t, sampleCatalog(), catalog)
}

func TestFilterFailsOpenOnPanic(t *testing.T) {
	orig := runFilter
	t.Cleanup(func() { runFilter = orig })

	// nil 篩選條件在管線中觸發 panic
	runFilter = func(catalog []Recipe, sel Selection) ([]AnnotatedRecipe, error) {
		var keep func(AnnotatedRecipe) bool
		return where(unfiltered(catalog), keep), nil
	}

	catalog := sampleCatalog()
	got, cause := FilterWithFallback(catalog, Selection{SelectedIngredients: []string{"tomato"}, DietaryPrefs: []string{"vegan"}})

	require.Error(t, cause)
	assert.Contains(t, cause.Error(), "filter panic")
	assert.Equal(t, []int{1, 2}, ids(got))
	for _, r := range got {
		assert.Zero(t, r.MatchCount)
	}

	assert.Equal(t, []int{1, 2}, ids(Filter(catalog, Selection{})))
}
