// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // Webサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// セッション設定
	SessionSecret        string // クッキー署名用の秘密鍵
	SessionMaxAgeMinutes int    // セッションクッキーの有効期限（分）
	SessionRevalidate    bool   // 復元したセッションをAPIで再検証するか

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 図書館API設定
	APIBaseURL        string // リモートREST APIのベースURL
	APITimeoutSeconds int    // API呼び出しのタイムアウト（0 はトランスポート既定値）

	// ログイン試行制限
	LoginThrottleRedisURL string // 試行回数をRedisで共有する場合の接続URL（空ならメモリ）

	// ログ設定
	LogLevel  string // panic, fatal, error, warn, info, debug, trace
	LogFormat string // text または json

	// トレース設定
	OTLPEndpoint string // OTLP/HTTP エクスポーターの送信先（空なら無効）
	ServiceName  string

	// 一覧表示
	RowsPerPage    int // 一覧画面の1ページあたり行数
	CatalogPerPage int // 利用者カタログの1ページあたり件数
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "debug"),

		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionMaxAgeMinutes: getEnvAsInt("SESSION_MAX_AGE_MINUTES", 12*60),
		SessionRevalidate:    getEnvAsBool("SESSION_REVALIDATE", false),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),

		APIBaseURL:        getEnv("API_BASE_URL", "http://localhost:8080"),
		APITimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 0),

		LoginThrottleRedisURL: getEnv("LOGIN_THROTTLE_REDIS_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "biblioteca-web"),

		RowsPerPage:    getEnvAsInt("ROWS_PER_PAGE", 10),
		CatalogPerPage: getEnvAsInt("CATALOG_PER_PAGE", 9),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL (got %q)", c.APIBaseURL)
	}
	if c.APITimeoutSeconds < 0 {
		return fmt.Errorf("API_TIMEOUT_SECONDS must not be negative")
	}
	if c.RowsPerPage <= 0 || c.CatalogPerPage <= 0 {
		return fmt.Errorf("ROWS_PER_PAGE and CATALOG_PER_PAGE must be positive")
	}

	// ローカル開発では署名鍵は任意（起動時に一時鍵を生成する）
	if c.GinMode == "release" {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if len(c.SessionSecret) < 32 {
			return fmt.Errorf("SESSION_SECRET must be at least 32 bytes in release mode")
		}
	}

	return nil
}

// AllowedOrigins は CORS許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
