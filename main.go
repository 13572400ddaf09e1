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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ourstory/scrapbook/handlers"
	"github.com/ourstory/scrapbook/internal/backend"
	"github.com/ourstory/scrapbook/internal/config"
	"github.com/ourstory/scrapbook/internal/scrapbook"
	"github.com/ourstory/scrapbook/internal/sessions"
	"github.com/ourstory/scrapbook/pkg/logger"
	"github.com/ourstory/scrapbook/pkg/metrics"
	"github.com/ourstory/scrapbook/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v jwt_secret_set=%v",
		cfg.MongoDB.URI != "", cfg.Redis.Enabled(), cfg.MinIO.Endpoint != "", cfg.JWT.Secret != "")
	if cfg.JWT.Secret == "" {
		logger.Fatalf("JWT_SECRET is required to sign session tokens")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mediaURL := fmt.Sprintf("http://localhost:%s/media", cfg.Server.Port)
	be, err := backend.Open(ctx, cfg, mediaURL)
	if err != nil {
		logger.Fatalf("failed to connect backend: %v", err)
	}
	defer be.Close(context.Background())

	dir, err := cfg.Users.Directory()
	if err != nil {
		logger.Fatalf("invalid accounts: %v", err)
	}
	app := scrapbook.New(be.Tables, be.Blobs, be.Broker, dir)
	sess := sessions.NewService(be.Sessions, dir, cfg.JWT.Secret)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.CORS(), gin.Logger(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the remote dependencies answer
	r.GET("/ready", func(c *gin.Context) {
		deps := be.Ready(c.Request.Context())
		status, code := "ready", http.StatusOK
		for _, ok := range deps {
			if !ok {
				status, code = "not_ready", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterCollectors(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterSwagger(r)
	handlers.RegisterMedia(r, be.Blobs)

	// rate limiting runs after authentication so that it keys on the identity
	var limit []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && be.Redis != nil {
			limit = append(limit, middleware.RedisRateLimitMiddleware(be.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window))
		} else {
			limit = append(limit, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handlers.RegisterAPI(r, app, sess, limit...)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting scrapbook API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
}
