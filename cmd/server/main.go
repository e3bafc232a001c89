package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/haninggrk/livekenceng-bot-gacor/internal/app"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/domain"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/livekenceng"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/logging"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/platform/config"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/platform/version"
	appredis "github.com/haninggrk/livekenceng-bot-gacor/internal/redis"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/rotation"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/server"
	"github.com/haninggrk/livekenceng-bot-gacor/internal/websocket"
)

func main() {
	cfg := setupConfig()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	slog.Info("Starting livekenceng bot", "version", version.Get().Short(), "env", cfg.AppEnv)

	client := livekenceng.NewClient(cfg.BaseURL, cfg.MemberEmail, cfg.MemberPassword,
		livekenceng.WithTimeout(cfg.APITimeout),
		livekenceng.WithRequestRate(cfg.APIRate),
	)

	catalog, invalidator, readyCheck, closeRedis := setupCatalog(cfg, client)
	defer closeRedis()

	hub := websocket.NewStatusHub(cfg.MaxStatusClients)

	manager := rotation.NewManager(client, client, clockwork.NewRealClock(), hub)
	appSvc := app.NewService(catalog, client, client, manager, invalidator)

	srv := server.NewServer(cfg, appSvc, hub, readyCheck)

	done := runGracefulShutdown(srv, manager, hub)

	slog.Info("Server listening", "port", cfg.Port)
	if err := srv.Start(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Shutdown complete")
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// setupCatalog wires the optional Redis product-set cache. Without REDIS_URL
// the service reads the member API directly.
func setupCatalog(cfg *config.Config, client *livekenceng.Client) (domain.CatalogGateway, app.CacheInvalidator, server.ReadyChecker, func()) {
	if cfg.RedisURL == "" {
		return client, nil, nil, func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	redisClient, err := appredis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}

	cache := appredis.NewCatalogCache(redisClient.Underlying(), client, cfg.CatalogTTL)
	readyCheck := func(ctx context.Context) error {
		return redisClient.Underlying().Ping(ctx).Err()
	}
	closeRedis := func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("Failed to close redis client", "error", err)
		}
	}
	return cache, cache, readyCheck, closeRedis
}

func runGracefulShutdown(srv *server.Server, manager *rotation.Manager, hub *websocket.StatusHub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		manager.StopAll()
		hub.Stop()

		close(done)
	}()

	return done
}
