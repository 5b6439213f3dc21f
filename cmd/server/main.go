package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nulzo/prompt-gateway/internal/cli"
	"github.com/nulzo/prompt-gateway/internal/config"
	"github.com/nulzo/prompt-gateway/internal/gateway"
	"github.com/nulzo/prompt-gateway/internal/platform/logger"
	"github.com/nulzo/prompt-gateway/internal/platform/otel"
	"github.com/nulzo/prompt-gateway/internal/ratelimit"
	"github.com/nulzo/prompt-gateway/internal/server"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Import vendors to trigger init() registration
	_ "github.com/nulzo/prompt-gateway/internal/llm/anthropic"
	_ "github.com/nulzo/prompt-gateway/internal/llm/google"
	_ "github.com/nulzo/prompt-gateway/internal/llm/openai"
	_ "github.com/nulzo/prompt-gateway/internal/llm/replicate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(logger.FromEnv(cfg.Log.Level, cfg.Log.Format))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	shutdownTracer, err := otel.InitTracer(cfg.Tracing, log, os.Stdout)
	if err != nil {
		log.Fatal("Failed to initialize tracer", zap.Error(err))
	}

	limiter, closeLimiter := newLimiter(cfg, log)
	defer closeLimiter()

	gw, err := gateway.FromConfig(cfg, limiter, log)
	if err != nil {
		log.Fatal("Failed to build gateway", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.New(cfg, log, gw).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Server.DebugAddr != "" {
		go serveDebug(cfg.Server.DebugAddr, log)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	cli.PrintSummary(os.Stdout, srv.Addr, gw.Providers())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.RequestTimeout+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := shutdownTracer(ctx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exiting")
}

// newLimiter picks the shared Redis limiter when enabled so that several
// replicas space their calls together, and the in-process one otherwise.
func newLimiter(cfg *config.Config, log *zap.Logger) (ratelimit.Limiter, func()) {
	if !cfg.Redis.Enabled {
		return ratelimit.NewMemory(cfg.Gateway.MinInterval, nil), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	log.Info("Using redis rate limiter", zap.String("addr", cfg.Redis.Addr))
	return ratelimit.NewRedis(client, "", cfg.Gateway.MinInterval), func() { _ = client.Close() }
}

func serveDebug(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())

	log.Info("Debug server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("Debug server failed", zap.Error(err))
	}
}
