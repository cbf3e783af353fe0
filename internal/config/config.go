package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config 应用配置
type Config struct {
	Env         string `validate:"required"`
	Port        string `validate:"required"`
	DatabaseURL string `validate:"required"`
	Debug       bool

	// TMDB 接入
	TMDBAPIKey      string        `validate:"required"`
	TMDBBaseURL     string        `validate:"required,url"`
	ImageBaseURL    string        `validate:"required,url"`
	APITimeout      time.Duration `validate:"gt=0"`
	APIMaxRetries   int           `validate:"gte=1"`
	TMDBBatchSize   int           `validate:"gte=1"`
	TMDBMaxPerHost  int           `validate:"gte=1"`
	TMDBCacheSize   int           `validate:"gte=1"`
	FallbackWorkers int           `validate:"gte=1"`

	// 接口层响应缓存
	CacheTTL time.Duration `validate:"gt=0"`
}

// Load 加载配置
func Load() *Config {
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbName := getEnv("DB_NAME", "movierec")
	dbSSL := getEnv("DB_SSLMODE", "disable")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		dbUser, dbPass, dbHost, dbPort, dbName, dbSSL)

	timeoutSec := getEnvInt("API_TIMEOUT_SEC", 20)
	cacheTTLMs := getEnvInt("CACHE_TTL_MS", 60000)
	debug := getEnv("DEBUG", "false")

	return &Config{
		Env:         getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8000"),
		DatabaseURL: dbURL,
		Debug:       debug == "true" || debug == "1",

		TMDBAPIKey:      getEnv("TMDB_API_KEY", ""),
		TMDBBaseURL:     getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		ImageBaseURL:    getEnv("IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500"),
		APITimeout:      time.Duration(timeoutSec) * time.Second,
		APIMaxRetries:   getEnvInt("API_MAX_RETRIES", 3),
		TMDBBatchSize:   getEnvInt("TMDB_BATCH_SIZE", 6),
		TMDBMaxPerHost:  getEnvInt("TMDB_MAX_PER_HOST", 12),
		TMDBCacheSize:   getEnvInt("TMDB_CACHE_SIZE", 10000),
		FallbackWorkers: getEnvInt("FALLBACK_WORKERS", 10),

		CacheTTL: time.Duration(cacheTTLMs) * time.Millisecond,
	}
}

// Validate 校验配置，缺少必要项时启动应当失败
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	return nil
}

// Print 打印非敏感配置（调试用）
func (c *Config) Print() {
	key := "未设置"
	if c.TMDBAPIKey != "" {
		key = "已设置"
	}
	log.Printf("[Config] env=%s port=%s debug=%v", c.Env, c.Port, c.Debug)
	log.Printf("[Config] tmdb_api_key=%s base_url=%s timeout=%s retries=%d",
		key, c.TMDBBaseURL, c.APITimeout, c.APIMaxRetries)
	log.Printf("[Config] batch_size=%d max_per_host=%d cache_size=%d fallback_workers=%d cache_ttl=%s",
		c.TMDBBatchSize, c.TMDBMaxPerHost, c.TMDBCacheSize, c.FallbackWorkers, c.CacheTTL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
