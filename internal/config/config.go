package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // 実行環境にゾーン情報がなくてもSITE_TIMEZONEを読み込めるようにする
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// CMS
	CMSGraphQLURL           string
	CMSTimeout              time.Duration
	CMSMaxRetries           int
	CMSRetryInitialInterval time.Duration
	// CMSProbeSchedule はCMSヘルスプローブのcron式（例: "@every 1m"）。
	CMSProbeSchedule string

	// Site
	SiteBaseURL  string
	SiteTimezone string
	// SiteLocation はSiteTimezoneを読み込んだ結果。「開催予定」判定と記事日付の表示に使う。
	SiteLocation *time.Location

	// Server
	ServerPort string
	LogLevel   string

	// Rate Limit
	RateLimitPerMinute int

	// OG Image
	OGImageEnabled bool
	OGImageTimeout time.Duration

	// Image Proxy
	ImageProxyMaxSize int64

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.CMSGraphQLURL = os.Getenv("CMS_GRAPHQL_URL")
	if cfg.CMSGraphQLURL == "" {
		missing = append(missing, "CMS_GRAPHQL_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	u, err := url.Parse(cfg.CMSGraphQLURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("CMS_GRAPHQL_URL must be an absolute http(s) URL: %q", cfg.CMSGraphQLURL)
	}

	// Optional fields with defaults
	cfg.SiteBaseURL = strings.TrimRight(getEnvString("SITE_BASE_URL", "https://hayart.am"), "/")
	cfg.SiteTimezone = getEnvString("SITE_TIMEZONE", "Asia/Yerevan")
	cfg.SiteLocation, err = time.LoadLocation(cfg.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("load SITE_TIMEZONE %q: %w", cfg.SiteTimezone, err)
	}

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.CMSTimeout = getEnvDuration("CMS_TIMEOUT", 10*time.Second)
	cfg.CMSMaxRetries = getEnvInt("CMS_MAX_RETRIES", 3)
	cfg.CMSRetryInitialInterval = getEnvDuration("CMS_RETRY_INITIAL_INTERVAL", 200*time.Millisecond)
	cfg.CMSProbeSchedule = getEnvString("CMS_PROBE_SCHEDULE", "@every 1m")
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", 300)
	cfg.OGImageEnabled = getEnvBool("OG_IMAGE_ENABLED", true)
	cfg.OGImageTimeout = getEnvDuration("OG_IMAGE_TIMEOUT", 20*time.Second)
	cfg.ImageProxyMaxSize = getEnvInt64("IMAGE_PROXY_MAX_SIZE", 10485760)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "*")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
