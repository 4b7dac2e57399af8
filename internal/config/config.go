package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultSecret = "your-secret-key-change-in-production"

// Config 应用配置
type Config struct {
	Env            string
	Port           string
	TrustedProxies []string
	AppSecret      string
	PasswordPepper string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	TMDBToken        string
	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBImageBaseURL string
	TMDBLanguage     string

	OMDbAPIKey  string
	OMDbBaseURL string

	UpstreamTimeout   time.Duration
	UpstreamCacheTTL  time.Duration
	UpstreamCacheSize int

	HistoryRetention int

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// Load 加载配置（环境变量优先，其次默认值）
func Load() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		v.GetString("DB_USER"), v.GetString("DB_PASSWORD"), v.GetString("DB_HOST"),
		v.GetString("DB_PORT"), v.GetString("DB_NAME"), v.GetString("DB_SSLMODE"))

	appSecret := v.GetString("APP_SECRET")
	if appSecret == "" {
		appSecret = v.GetString("JWT_SECRET")
	}
	if appSecret == "" {
		appSecret = defaultSecret
	}

	env := v.GetString("APP_ENV")
	if env == "production" && appSecret == defaultSecret {
		log.Println("【严重警告】生产环境正在使用默认密钥！请立即设置 APP_SECRET 环境变量。")
	}

	return &Config{
		Env:                env,
		Port:               v.GetString("PORT"),
		TrustedProxies:     splitList(v.GetString("TRUSTED_PROXIES")),
		AppSecret:          appSecret,
		PasswordPepper:     v.GetString("PASSWORD_PEPPER"),
		DBDriver:           v.GetString("DB_DRIVER"),
		DatabaseURL:        dbURL,
		SQLitePath:         v.GetString("SQLITE_PATH"),
		TMDBToken:          v.GetString("TMDB_TOKEN"),
		TMDBAPIKey:         v.GetString("TMDB_API_KEY"),
		TMDBBaseURL:        v.GetString("TMDB_BASE_URL"),
		TMDBImageBaseURL:   v.GetString("TMDB_IMAGE_BASE_URL"),
		TMDBLanguage:       v.GetString("TMDB_LANGUAGE"),
		OMDbAPIKey:         v.GetString("OMDB_API_KEY"),
		OMDbBaseURL:        v.GetString("OMDB_BASE_URL"),
		UpstreamTimeout:    v.GetDuration("UPSTREAM_TIMEOUT"),
		UpstreamCacheTTL:   v.GetDuration("UPSTREAM_CACHE_TTL"),
		UpstreamCacheSize:  v.GetInt("UPSTREAM_CACHE_SIZE"),
		HistoryRetention:   v.GetInt("HISTORY_RETENTION"),
		AuthRateLimitRPS:   v.GetFloat64("AUTH_RATE_LIMIT_RPS"),
		AuthRateLimitBurst: v.GetInt("AUTH_RATE_LIMIT_BURST"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "5005")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("APP_SECRET", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("PASSWORD_PEPPER", "")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "moviehub")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "moviehub.db")

	v.SetDefault("TMDB_TOKEN", "")
	v.SetDefault("TMDB_API_KEY", "")
	v.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	v.SetDefault("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/")
	v.SetDefault("TMDB_LANGUAGE", "en-US")
	v.SetDefault("OMDB_API_KEY", "")
	v.SetDefault("OMDB_BASE_URL", "https://www.omdbapi.com/")

	v.SetDefault("UPSTREAM_TIMEOUT", 30*time.Second)
	v.SetDefault("UPSTREAM_CACHE_TTL", 5*time.Minute)
	v.SetDefault("UPSTREAM_CACHE_SIZE", 1000)

	v.SetDefault("HISTORY_RETENTION", 500)

	v.SetDefault("AUTH_RATE_LIMIT_RPS", 5.0)
	v.SetDefault("AUTH_RATE_LIMIT_BURST", 10)
}

// splitList 逗号分隔的配置项转为切片，忽略空项
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
