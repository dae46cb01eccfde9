package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-finder/internal/api"
	"recipe-finder/internal/api/handlers/health"
	"recipe-finder/internal/core/image"
	"recipe-finder/internal/core/preference"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/core/vision"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir, cfg.App.Name); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("labeler_provider", cfg.Labeler.Provider),
		zap.String("labeler_api_key", config.MaskAPIKey(cfg.Labeler.APIKey)),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("catalog_path", cfg.Catalog.Path),
	)

	// 食譜目錄
	catalog, err := recipe.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		common.LogFatal("Failed to load recipe catalog", zap.Error(err))
	}
	recipes := recipe.NewService(catalog)
	common.LogInfo("食譜目錄已載入",
		zap.Int("recipes", catalog.Len()),
		zap.Int("vocabulary", len(catalog.Vocabulary)),
		zap.Int("substitutions", len(catalog.Substitutions)),
	)

	// 偏好儲存
	store, storePing, closeStore, err := newStore(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize preference store", zap.Error(err))
	}
	defer closeStore()

	// 圖片辨識
	labeler, err := vision.NewLabeler(cfg.Labeler)
	if err != nil {
		common.LogFatal("Failed to initialize labeler", zap.Error(err))
	}
	labelCache := vision.NewLabelCache(cfg.Cache)
	defer labelCache.Close()
	detector := vision.NewService(cfg, labeler, labelCache, recipes)

	// 設置路由
	router, stopRouter := api.SetupRouter(cfg, api.Dependencies{
		Recipes:     recipes,
		Images:      image.NewService(cfg.Image.MaxSizeBytes),
		Detector:    detector,
		Preferences: preference.NewManager(store, recipes),
		CacheStats:  detector.CacheStats,
		StorePing:   storePing,
	})
	defer stopRouter()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	serveErr := make(chan error, 1)
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		common.LogError("Failed to start server", zap.Error(err))
		return
	}

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}

// newStore 依設定選擇偏好儲存
func newStore(cfg *config.Config) (preference.Store, health.Pinger, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client, err := preference.NewRedisClient(ctx, cfg.Store)
		if err != nil {
			return nil, nil, nil, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		closeFn := func() {
			if err := client.Close(); err != nil {
				common.LogWarn("Failed to close redis client", zap.Error(err))
			}
		}
		common.LogInfo("使用 Redis 偏好儲存", zap.String("addr", cfg.Store.RedisAddr))
		return preference.NewRedisStore(client, cfg.Store), ping, closeFn, nil
	default:
		common.LogInfo("使用記憶體偏好儲存")
		return preference.NewMemoryStore(), nil, func() {}, nil
	}
}
