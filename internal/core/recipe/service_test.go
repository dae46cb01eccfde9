package recipe

import (
	"testing"

	"recipe-finder/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	c, err := LoadCatalog("")
	require.NoError(t, err)
	return NewService(c)
}

func TestServiceSearchAddsMissing(t *testing.T) {
	s := newTestService(t)

	got := s.Search(Selection{SelectedIngredients: []string{"tomato", "pasta"}})

	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0].ID)
	assert.Equal(t, 2, got[0].MatchCount)
	assert.NotContains(t, got[0].Missing, "tomato")
	assert.Contains(t, got[0].Missing, "garlic")
}

func TestServiceSearchFallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	common.SetLogger(zap.New(core))
	t.Cleanup(func() { common.SetLogger(nil) })
	s := newTestService(t)

	got := s.Search(Selection{SelectedIngredients: []string{"tomato"}, Servings: "lots"})
	assert.Len(t, got, s.Catalog().Len())

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(s.Catalog().Len()), entries[0].ContextMap()["catalog_size"])

	logs.TakeAll()
	s.Search(Selection{SelectedIngredients: []string{"tomato"}, Servings: "2"})
	assert.Zero(t, logs.Len(), "a successful filter does not warn")
}

func TestServiceDetail(t *testing.T) {
	s := newTestService(t)

	d, err := s.Detail(1, []string{"tomato"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tomato"}, d.Have)
	assert.Contains(t, d.Missing, "pasta")
	assert.NotEmpty(t, d.Substitutions)

	_, err = s.Detail(404, nil)
	assert.ErrorIs(t, err, common.ErrRecipeNotFound)
}

func TestServiceReconcileWithEmbeddedVocabulary(t *testing.T) {
	s := newTestService(t)

	got := s.Reconcile([]Label{
		{Name: "Fresh Tomato", Confidence: 85},
		{Name: "Tomato Sauce", Confidence: 60},
		{Name: "Garlic", Confidence: 92},
	}, ReconcileOptions{})
	assert.Equal(t, []string{"tomato", "garlic"}, got)
}
