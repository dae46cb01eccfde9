package api

import (
	"time"

	"recipe-finder/internal/api/handlers/health"
	recipeHandler "recipe-finder/internal/api/handlers/recipe"
	sessionHandler "recipe-finder/internal/api/handlers/session"
	"recipe-finder/internal/api/middleware"
	"recipe-finder/internal/core/image"
	"recipe-finder/internal/core/preference"
	recipeService "recipe-finder/internal/core/recipe"
	"recipe-finder/internal/core/vision"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	// 非上傳路由的請求體上限 (1MB)
	defaultBodySize = 1 << 20
	// base64 與 JSON 外框的額外空間
	uploadOverhead = 64 << 10
	// 背景清理間隔
	cleanupInterval = 10 * time.Minute
)

// Dependencies 路由所需的服務
type Dependencies struct {
	Recipes     *recipeService.Service
	Images      *image.Service
	Detector    recipeHandler.Detector
	Preferences *preference.Manager
	CacheStats  func() vision.CacheStats
	StorePing   health.Pinger
}

// SetupRouter 設置路由，回傳的 stop 用於停止背景清理協程
func SetupRouter(cfg *config.Config, deps Dependencies) (router *gin.Engine, stop func()) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router = gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	var stops []func()
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		limiter.StartCleanup(cleanupInterval)
		stops = append(stops, limiter.Stop)
		router.Use(limiter.Middleware())
	}

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)
	dedup.StartCleanup(cleanupInterval)
	stops = append(stops, dedup.Stop)

	// 健康檢查路由
	healthH := health.NewHandler(cfg, deps.Recipes.Catalog().Len(), deps.CacheStats, deps.StorePing)
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	recipeH := recipeHandler.NewHandler(deps.Recipes)
	ingredientH := recipeHandler.NewIngredientHandler(deps.Images, deps.Detector)
	sessionH := sessionHandler.NewHandler(deps.Preferences)

	uploadLimit := deps.Images.MaxSizeBytes()*4/3 + uploadOverhead
	small := middleware.BodySizeLimit(defaultBodySize)

	// API 路由組
	api := router.Group("/api/v1")
	{
		api.GET("/recipes", recipeH.HandleList)
		api.GET("/recipes/:id", recipeH.HandleGet)
		api.POST("/recipes/search", small, recipeH.HandleSearch)

		api.GET("/ingredients", recipeH.HandleIngredients)
		api.POST("/ingredients/detect",
			middleware.BodySizeLimit(uploadLimit),
			dedup.Middleware(),
			ingredientH.HandleDetect,
		)
		api.GET("/substitutions", recipeH.HandleSubstitutions)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionH.HandleCreate)
			sessions.GET("/:id", sessionH.HandleGet)
			sessions.GET("/:id/favorites", sessionH.HandleFavorites)
			sessions.PUT("/:id/favorites/:recipeId", sessionH.HandleToggleFavorite)
			sessions.PUT("/:id/ratings/:recipeId", small, sessionH.HandleSetRating)
			sessions.GET("/:id/recommendations", sessionH.HandleRecommendations)
		}
	}

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		common.WriteError(c, common.ErrMethodNotAllowed)
	})
	router.NoRoute(func(c *gin.Context) {
		common.WriteError(c, common.ErrNotFound)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
		zap.Int64("upload_limit", uploadLimit),
		zap.Int("catalog_size", deps.Recipes.Catalog().Len()),
	)

	stop = func() {
		for _, s := range stops {
			s()
		}
	}
	return router, stop
}
