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
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ludvigisaksen/PA-AI/common/llm"
	"github.com/ludvigisaksen/PA-AI/common/logger"
	"github.com/ludvigisaksen/PA-AI/common/otel"
	"github.com/ludvigisaksen/PA-AI/core/config"
	"github.com/ludvigisaksen/PA-AI/internal/batch"
	"github.com/ludvigisaksen/PA-AI/internal/brain"
	"github.com/ludvigisaksen/PA-AI/internal/chat"
	"github.com/ludvigisaksen/PA-AI/internal/http/handler"
	"github.com/ludvigisaksen/PA-AI/internal/http/middleware"
	httprouter "github.com/ludvigisaksen/PA-AI/internal/http/router"
	"github.com/ludvigisaksen/PA-AI/internal/service"
	"github.com/ludvigisaksen/PA-AI/internal/stateapi"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeBridge)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
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

	slog.InfoContext(ctx, "bridge starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if missing := cfg.Validate(); len(missing) > 0 {
		slog.WarnContext(ctx, "configuration incomplete, affected flows will fall back or stay off", "missing", missing)
	}

	var llmClient llm.Client
	if cfg.OpenAI.Enabled() {
		llmClient, err = llm.New(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create llm client", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "llm client ready", "model", llmClient.Model())
	}

	summarizer := brain.NewSummarizer(llmClient, cfg.OpenAI.MaxTokens)
	briefingGenerator := brain.NewBriefingGenerator(llmClient, cfg.OpenAI.MaxTokens)
	stateClient := stateapi.New(stateapi.Config{
		BaseURL: cfg.StateAPI.BaseURL,
		Timeout: cfg.StateAPI.Timeout,
	})
	batches := batch.NewStore()
	channels := service.Channels{
		Input:     cfg.Discord.InputChannelID,
		Inbox:     cfg.Discord.InboxChannelID,
		Broadcast: cfg.Discord.BroadcastChannelID,
		Log:       cfg.Discord.LogChannelID,
	}

	gateway := startChat(ctx, cfg, newDiscordGateway, func(client chat.Client) chat.Handler {
		return service.NewLifecycle(service.LifecycleConfig{
			Chat:             client,
			Summarizer:       summarizer,
			State:            stateClient,
			Batches:          batches,
			Channels:         channels,
			AuthorizedUserID: cfg.Discord.AuthorizedUserID,
			TriggerPhrases:   cfg.Trigger.Phrases,
			Lookback:         cfg.Trigger.Lookback,
		}).HandleMessage
	})

	var chatClient chat.Client
	if gateway != nil {
		chatClient = gateway
	}

	briefing := service.NewBriefingRunner(chatClient, briefingGenerator, stateClient, batches, channels)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, briefing),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
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

	if gateway != nil {
		if err := gateway.Close(); err != nil {
			slog.ErrorContext(shutdownCtx, "discord close error", "error", err)
		}
	}

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

func setupRouter(cfg config.Config, briefing service.BriefingRunner) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger("pa.bridge.http", middleware.RouteFlows{
		"/cron/daily-briefing": "daily_briefing",
	}))

	httprouter.SetupOpsRoutes(router, handler.NewOpsHandler(briefing))

	return router
}

const banner = `
 ____   _      ____  ____   ___  ____    ____  _____
|  _ \ / \    | __ )|  _ \ |_ _||  _ \  / ___|| ____|
| |_) / _ \   |  _ \| |_) | | | | | | || |  _ |  _|
|  __/ ___ \  | |_) |  _ <  | | | |_| || |_| || |___
|_| /_/   \_\ |____/|_| \_\|___||____/  \____||_____|
`
