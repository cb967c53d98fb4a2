// Package main は図書館Webアプリのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/biblioteca-web/internal/api"
	"github.com/yourusername/biblioteca-web/internal/auth"
	"github.com/yourusername/biblioteca-web/internal/config"
	"github.com/yourusername/biblioteca-web/internal/library"
	"github.com/yourusername/biblioteca-web/internal/logging"
	"github.com/yourusername/biblioteca-web/internal/tracing"
	"github.com/yourusername/biblioteca-web/internal/web"
)

const (
	sessionCookieName = "biblioteca_session"
	version           = "0.1.0"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.GinMode)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		logger.WithError(err).Fatal("failed to set up tracing")
	}

	router, err := newRouter(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to build router")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{"addr": server.Addr, "mode": cfg.GinMode}).Info("starting web server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to shut down server")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to flush traces")
	}
	os.Exit(0)
}

// newRouter はミドルウェアとルーティングを組み立てます。
func newRouter(cfg *config.Config, logger *logrus.Logger) (*gin.Engine, error) {
	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	// gin.Default() の Logger の代わりに logrus でアクセスログを出す
	router := gin.New()
	router.Use(gin.Recovery(), logging.RequestID(), logging.Middleware(logger))
	router.HTMLRender = renderer

	// セッションストアの設定
	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		return nil, err
	}
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAgeMinutes * 60,
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionCookieName, store))

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		auth.CSRFHeader,
		logging.RequestIDHeader,
	}
	corsConfig.ExposeHeaders = []string{auth.CSRFHeader, logging.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// 図書館APIクライアント
	clientOpts := []api.Option{api.WithLogger(logger)}
	if cfg.APITimeoutSeconds > 0 {
		clientOpts = append(clientOpts, api.WithTimeout(time.Duration(cfg.APITimeoutSeconds)*time.Second))
	}
	client := api.New(cfg.APIBaseURL, clientOpts...)

	attempts, err := setupAttempts(cfg)
	if err != nil {
		return nil, err
	}

	var managerOpts []auth.ManagerOption
	if cfg.SessionRevalidate {
		managerOpts = append(managerOpts, auth.WithSessionVerifier(auth.APIVerifier{Usuarios: client}))
	}
	manager := auth.NewManager(client, attempts, logger, managerOpts...)
	router.Use(manager.LoadSession())

	svc := library.New(client, library.WithLogger(logger))
	handler := web.NewHandler(svc, logger,
		web.WithRowsPerPage(cfg.RowsPerPage),
		web.WithCatalogPerPage(cfg.CatalogPerPage),
	)

	// 誰でも叩けるヘルスチェック
	router.GET("/health", web.Health(cfg.ServiceName, version))
	web.Register(router, manager, handler)

	return router, nil
}
