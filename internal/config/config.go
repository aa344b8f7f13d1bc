package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL はAPI_BASE_URL未設定時のバックエンドのベースURL。
const DefaultAPIBaseURL = "http://localhost:5000/api"

// DefaultServerHost はSERVER_HOST未設定時の待ち受けアドレス。
const DefaultServerHost = "127.0.0.1"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Backend
	APIBaseURL string
	APITimeout time.Duration

	// Session storage
	StorageURL       string
	StorageKeyPrefix string

	// Database（migrateサブコマンド用）
	DatabaseURL string

	// Server
	// ServerHost は待ち受けアドレス。既定はループバックのみ。
	// コンテナやキオスク端末で外部から接続させる場合は 0.0.0.0 を設定する。
	ServerHost string
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// Logging
	LogLevel string

	// Rate Limit（req/min/クライアント）
	RateLimitAuth int

	// Metrics
	MetricsEnabled bool
}

// Load はカレントディレクトリの .env（存在する場合）を読み込んだ後、
// 環境変数からConfigを読み込む。既に設定済みの環境変数は .env で上書きしない。
// API_BASE_URL が不正な場合はエラーを返す。
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{}

	cfg.APIBaseURL = strings.TrimRight(getEnvString("API_BASE_URL", DefaultAPIBaseURL), "/")
	if err := validateBaseURL(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid API_BASE_URL: %w", err)
	}
	cfg.APITimeout = getEnvDuration("API_TIMEOUT", 0)

	cfg.StorageURL = getEnvString("STORAGE_URL", "")
	cfg.StorageKeyPrefix = getEnvString("STORAGE_KEY_PREFIX", "manabi:")
	cfg.DatabaseURL = getEnvString("DATABASE_URL", "")

	cfg.ServerHost = getEnvString("SERVER_HOST", DefaultServerHost)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.ServerPort)
	cfg.CookieSecure = getEnvBool("COOKIE_SECURE", strings.HasPrefix(cfg.BaseURL, "https://"))
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")

	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)

	return cfg, nil
}

// ListenAddr はHTTPサーバーの待ち受けアドレスを返す。
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// MigrationURL はマイグレーション対象のデータベースURLを返す。
// DATABASE_URL が未設定でSTORAGE_URLがpostgresの場合はそちらを使う。
func (c *Config) MigrationURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if strings.HasPrefix(c.StorageURL, "postgres://") || strings.HasPrefix(c.StorageURL, "postgresql://") {
		return c.StorageURL
	}
	return ""
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("host is empty: %q", raw)
	}
	return nil
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
