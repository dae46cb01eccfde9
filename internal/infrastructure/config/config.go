package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Labeler     LabelerConfig   `mapstructure:"labeler"`
	Breaker     BreakerConfig   `mapstructure:"breaker"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Store       StoreConfig     `mapstructure:"store"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Image       ImageConfig     `mapstructure:"image"`
	Catalog     CatalogConfig   `mapstructure:"catalog"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogDir      string          `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
}

// LabelerConfig 圖片標籤服務配置
type LabelerConfig struct {
	Provider      string        `mapstructure:"provider"`
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	ModelID       string        `mapstructure:"model_id"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinConfidence float64       `mapstructure:"min_confidence"`
	MaxResults    int           `mapstructure:"max_results"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	MaxQueue      int           `mapstructure:"max_queue"`
}

// BreakerConfig 熔斷器配置
type BreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

// CacheConfig 標籤結果快取配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// StoreConfig 收藏/評分儲存配置
type StoreConfig struct {
	Driver        string        `mapstructure:"driver"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}

// CatalogConfig 食譜目錄配置，Path 為空時使用內嵌資料
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

const (
	// StoreDriverMemory 記憶體儲存
	StoreDriverMemory = "memory"
	// StoreDriverRedis Redis 儲存
	StoreDriverRedis = "redis"
)

// LoadConfig 載入設定（.env 可選）
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用環境變量
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("labeler.api_key", "CLARIFAI_PAT")
	_ = v.BindEnv("labeler.model_id", "CLARIFAI_MODEL_ID")
	_ = v.BindEnv("store.driver", "STORE_DRIVER")
	_ = v.BindEnv("store.redis_addr", "REDIS_ADDR")
	_ = v.BindEnv("store.redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("cache.enabled", "CACHE_ENABLED")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("catalog.path", "CATALOG_PATH")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"labeler_provider:", cfg.Labeler.Provider,
		"labeler_api_key:", MaskAPIKey(cfg.Labeler.APIKey),
		"store_driver:", cfg.Store.Driver,
	)

	return &cfg, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-finder")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.allow_origins", []string{"*"})

	// 標籤服務設定
	v.SetDefault("labeler.provider", "clarifai")
	v.SetDefault("labeler.base_url", "https://api.clarifai.com/v2")
	v.SetDefault("labeler.model_id", "food-item-recognition")
	v.SetDefault("labeler.timeout", "20s")
	v.SetDefault("labeler.min_confidence", 70)
	v.SetDefault("labeler.max_results", 10)
	v.SetDefault("labeler.max_concurrent", 4)
	v.SetDefault("labeler.max_queue", 16)

	// 熔斷器設定
	v.SetDefault("breaker.enabled", true)
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.max_requests", 1)
	v.SetDefault("breaker.interval", "60s")
	v.SetDefault("breaker.timeout", "30s")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size", 500)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// 儲存設定
	v.SetDefault("store.driver", StoreDriverMemory)
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.key_prefix", "recipe-finder:prefs:")
	v.SetDefault("store.ttl", "720h")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 5000000)

	v.SetDefault("catalog.path", "")
	v.SetDefault("dedup_window", "2s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	if cfg.Labeler.MinConfidence < 0 || cfg.Labeler.MinConfidence > 100 {
		return fmt.Errorf("labeler min confidence must be within 0..100")
	}
	if cfg.Labeler.MaxResults <= 0 {
		return fmt.Errorf("invalid labeler max results")
	}
	if cfg.Labeler.MaxConcurrent < 0 || cfg.Labeler.MaxQueue < 0 {
		return fmt.Errorf("invalid labeler concurrency settings")
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if cfg.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if cfg.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	if cfg.Breaker.Enabled && cfg.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("invalid breaker failure threshold")
	}

	switch cfg.Store.Driver {
	case StoreDriverMemory:
	case StoreDriverRedis:
		if cfg.Store.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	if cfg.Image.MaxSizeBytes <= 0 {
		return fmt.Errorf("invalid image max size")
	}

	return nil
}
