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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/redundancy-gate/gateway/handlers"
	"github.com/redundancy-gate/gateway/internal/config"
	"github.com/redundancy-gate/gateway/internal/database"
	"github.com/redundancy-gate/gateway/internal/record/handler"
	"github.com/redundancy-gate/gateway/internal/record/repository"
	"github.com/redundancy-gate/gateway/internal/record/service"
	"github.com/redundancy-gate/gateway/pkg/logger"
	"github.com/redundancy-gate/gateway/pkg/metrics"
	"github.com/redundancy-gate/gateway/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Infof("config loaded: driver=%s table=%s gateway=%s", cfg.Store.Driver, cfg.Store.Table, cfg.Server.GatewayPath)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Redis is only dialed for the shared rate limiter; the redis store opens its own client.
	var limiterRedis *redis.Client
	if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
		client, err := database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warnf("rate limiter: redis unavailable (%s), falling back to in-memory: %v", cfg.Redis.Addr(), err)
		} else {
			limiterRedis = client
			defer func() { _ = client.Close() }()
		}
	}
	// the limiter guards the gateway routes only; ops endpoints stay unthrottled
	var gatewayMW []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if limiterRedis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			gatewayMW = append(gatewayMW, middleware.RedisRateLimitMiddleware(limiterRedis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			gatewayMW = append(gatewayMW, middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	defer closeStore()

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the store answers a ping
	r.GET("/ready", func(c *gin.Context) {
		deps := gin.H{}
		ready := true
		if p, ok := store.(repository.Pinger); ok {
			pctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			err := p.Ping(pctx)
			cancel()
			deps["store"] = err == nil
			if err != nil {
				logger.Warnf("ready: %s store ping failed: %v", cfg.Store.Driver, err)
				ready = false
			}
		} else {
			deps["store"] = true
		}
		if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
			deps["redis"] = limiterRedis != nil
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "driver": cfg.Store.Driver, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	svc := service.NewService(store, service.Options{
		Name:     cfg.Service.Name,
		Provider: cfg.Service.Provider,
		Driver:   cfg.Store.Driver,
		Timeout:  cfg.Store.Timeout,
	})
	h := handler.New(svc)
	gatewayPaths := []string{"/"}
	if cfg.Server.GatewayPath != "" && cfg.Server.GatewayPath != "/" {
		gatewayPaths = append(gatewayPaths, cfg.Server.GatewayPath)
	}
	for _, p := range gatewayPaths {
		handler.RegisterRoutes(r, p, h, gatewayMW...)
	}
	handler.RegisterFallback(r, h, gatewayPaths, gatewayMW...)

	handlers.RegisterSwagger(r, cfg.Server.GatewayPath)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("redundancy gateway listening on %s (provider=%s)", srv.Addr, cfg.Service.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
