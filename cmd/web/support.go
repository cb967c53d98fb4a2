package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/biblioteca-web/internal/auth"
	"github.com/yourusername/biblioteca-web/internal/config"
)

// setupAttempts はログイン試行回数の保存先を選びます。Redis の URL がなければメモリで数えます。
func setupAttempts(cfg *config.Config) (auth.AttemptStore, error) {
	if cfg.LoginThrottleRedisURL == "" {
		return auth.NewMemoryAttempts(auth.DefaultLimits), nil
	}

	opt, err := redis.ParseURL(cfg.LoginThrottleRedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid LOGIN_THROTTLE_REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to login throttle redis: %w", err)
	}
	return auth.NewRedisAttempts(rdb, auth.DefaultLimits), nil
}

// sessionSecret はクッキー署名鍵を返します。未設定のとき（開発時のみ）は起動ごとの一時鍵を生成します。
func sessionSecret(cfg *config.Config, logger *logrus.Logger) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return []byte(cfg.SessionSecret), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	logger.Warn("SESSION_SECRET is not set; sessions will not survive a restart")
	return key, nil
}
