package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ludvigisaksen/PA-AI/common/id"
	"github.com/ludvigisaksen/PA-AI/common/logger"
	"github.com/ludvigisaksen/PA-AI/common/otel"
	"github.com/ludvigisaksen/PA-AI/core/config"
	"github.com/ludvigisaksen/PA-AI/core/db"
	"github.com/ludvigisaksen/PA-AI/internal/http/handler"
	"github.com/ludvigisaksen/PA-AI/internal/http/middleware"
	httprouter "github.com/ludvigisaksen/PA-AI/internal/http/router"
	"github.com/ludvigisaksen/PA-AI/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeStateAPI)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "state api starting", "env", cfg.Env, "backend", cfg.Store.Backend)

	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStores()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, stores),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// openStores connects the configured backend. The returned func releases
// its connections.
func openStores(ctx context.Context, cfg config.Config) (store.Stores, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		stores, err := store.NewPostgresStores(ctx, database)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		slog.InfoContext(ctx, "database connected")
		return stores, database.Close, nil

	case config.StoreBackendRedis:
		if err := id.Init(cfg.NodeID); err != nil {
			return nil, nil, fmt.Errorf("initializing snowflake id generator: %w", err)
		}
		opts, err := redis.ParseURL(cfg.Store.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		slog.InfoContext(ctx, "redis connected", "prefix", cfg.Store.RedisKeyPrefix)
		return store.NewRedisStores(client, cfg.Store.RedisKeyPrefix), func() { _ = client.Close() }, nil

	default:
		slog.WarnContext(ctx, "using in-memory store, contents are lost on restart")
		return store.NewMemoryStores(), func() {}, nil
	}
}

func setupRouter(cfg config.Config, stores store.Stores) *gin.Engine {
	router := gin.New()

	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger("pa.stateapi.http", middleware.RouteFlows{
		"/state/tasks":    "state_tasks",
		"/state/projects": "state_projects",
	}))

	httprouter.SetupStateRoutes(router, handler.NewStateHandler(stores))

	return router
}

const banner = `
 ____   _       ____  _____  _  _____  _____
|  _ \ / \     / ___||_   _|/ \|_   _|| ____|
| |_) / _ \    \___ \  | | / _ \ | |  |  _|
|  __/ ___ \    ___) | | |/ ___ \| |  | |___
|_| /_/   \_\  |____/  |_/_/   \_\_|  |_____|
`
