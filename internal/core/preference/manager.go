package preference

import (
	"context"
	"errors"
	"sync"

	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Manager 管理工作階段的收藏與評分，每次變更後立即保存
type Manager struct {
	store   Store
	recipes *recipe.Service

	// 序列化同一程序內的讀-改-寫
	mu sync.Mutex
}

// NewManager 創建偏好管理器
func NewManager(store Store, recipes *recipe.Service) *Manager {
	return &Manager{store: store, recipes: recipes}
}

// Session 工作階段與其偏好
type Session struct {
	ID          string       `json:"id"`
	Preferences *Preferences `json:"preferences"`
}

// Create 建立新工作階段並保存空偏好
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := common.GenerateUUID()
	prefs := New()
	if err := m.save(ctx, id, prefs); err != nil {
		return nil, err
	}
	common.LogInfo("建立偏好工作階段", zap.String("session_id", id))
	return &Session{ID: id, Preferences: prefs}, nil
}

// Get 載入工作階段
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	prefs, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &Session{ID: sessionID, Preferences: prefs}, nil
}

// ToggleFavorite 切換收藏，回傳切換後是否為收藏
func (m *Manager) ToggleFavorite(ctx context.Context, sessionID string, recipeID int) (*Session, bool, error) {
	if _, ok := m.recipes.Catalog().Get(recipeID); !ok {
		return nil, false, common.ErrRecipeNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prefs, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}

	favorite := !prefs.Favorites[recipeID]
	if favorite {
		prefs.Favorites[recipeID] = true
	} else {
		delete(prefs.Favorites, recipeID)
	}

	if err := m.save(ctx, sessionID, prefs); err != nil {
		return nil, false, err
	}
	return &Session{ID: sessionID, Preferences: prefs}, favorite, nil
}

// SetRating 設定 1..5 星評分
func (m *Manager) SetRating(ctx context.Context, sessionID string, recipeID, stars int) (*Session, error) {
	if stars < MinRating || stars > MaxRating {
		return nil, common.ErrInvalidRating
	}
	if _, ok := m.recipes.Catalog().Get(recipeID); !ok {
		return nil, common.ErrRecipeNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prefs, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	prefs.Ratings[recipeID] = stars

	if err := m.save(ctx, sessionID, prefs); err != nil {
		return nil, err
	}
	return &Session{ID: sessionID, Preferences: prefs}, nil
}

// Recommendations 依工作階段評分推薦
func (m *Manager) Recommendations(ctx context.Context, sessionID string, max int) ([]recipe.Recipe, error) {
	prefs, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.recipes.Recommend(prefs.Ratings, max), nil
}

// Favorites 收藏的食譜，依目錄順序
func (m *Manager) Favorites(ctx context.Context, sessionID string) ([]recipe.Recipe, error) {
	prefs, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]recipe.Recipe, 0, len(prefs.Favorites))
	for _, r := range m.recipes.Catalog().Recipes {
		if prefs.Favorites[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Manager) load(ctx context.Context, sessionID string) (*Preferences, error) {
	prefs, err := m.store.Load(ctx, sessionID)
	metrics.ObservePreferenceOp("load", ignoreNotFound(err))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.ErrSessionNotFound
		}
		common.LogError("載入偏好失敗", zap.String("session_id", sessionID), zap.Error(err))
		return nil, common.ErrPreferenceStoreFail.Wrap(err)
	}
	prefs.ensure()
	return prefs, nil
}

func (m *Manager) save(ctx context.Context, sessionID string, prefs *Preferences) error {
	err := m.store.Save(ctx, sessionID, prefs)
	metrics.ObservePreferenceOp("save", err)
	if err != nil {
		common.LogError("保存偏好失敗", zap.String("session_id", sessionID), zap.Error(err))
		return common.ErrPreferenceStoreFail.Wrap(err)
	}
	return nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
