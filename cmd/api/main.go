package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sitechat/widget-ai-platform/internal/analytics"
	"github.com/sitechat/widget-ai-platform/internal/api/router"
	"github.com/sitechat/widget-ai-platform/internal/app/bootstrap"
	"github.com/sitechat/widget-ai-platform/internal/chat"
	appconfig "github.com/sitechat/widget-ai-platform/internal/config"
	"github.com/sitechat/widget-ai-platform/internal/http/handlers"
	"github.com/sitechat/widget-ai-platform/internal/notify"
	"github.com/sitechat/widget-ai-platform/internal/observability/metrics"
	"github.com/sitechat/widget-ai-platform/internal/tenant"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

func main() {
	// .env is a local development convenience; absence is fine.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting widget-ai-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Error("redis is required for tenant profiles and chat journals")
		os.Exit(1)
	}

	llmClient, err := bootstrap.BuildLLMClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	chatMetrics := metrics.NewChatMetrics(registry)

	profileStore := tenant.NewStore(redisClient)

	var tracker *analytics.Tracker
	var adminSessions *handlers.AdminSessionsHandler
	if db := bootstrap.BuildDB(ctx, cfg, logger); db != nil {
		defer db.Close()
		sessionStore := analytics.NewStore(db)
		tracker = analytics.NewTracker(sessionStore, cfg.AnalyticsWorkerCount, cfg.AnalyticsQueueSize, logger, chatMetrics)
		defer tracker.Close()
		adminSessions = handlers.NewAdminSessionsHandler(sessionStore, logger)
	} else {
		logger.Warn("analytics disabled: no database configured")
	}

	emailSender := notify.EmailSender(notify.NewStubEmailSender(logger))
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	}
	contactNotifier := notify.NewContactNotifier(emailSender, logger)

	orchestratorOpts := chat.OrchestratorOptions{
		Profiles:     profileStore,
		LLM:          llmClient,
		Redis:        redisClient,
		Notifier:     contactNotifier,
		Metrics:      chatMetrics,
		Logger:       logger,
		ModelTimeout: cfg.ModelTimeout,
	}
	if tracker != nil {
		orchestratorOpts.Analytics = tracker
	}
	orchestrator := chat.NewOrchestrator(orchestratorOpts)

	ipLookup := analytics.NewIPLookup(cfg.IPLookupURL, cfg.IPLookupTimeout)

	var startTracker handlers.StartTracker
	if tracker != nil {
		startTracker = tracker
	}
	widgetHandler := handlers.NewWidgetHandler(orchestrator, profileStore, startTracker, ipLookup, logger)
	wsHandler := handlers.NewWSHandler(orchestrator, startTracker, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		Widget:             widgetHandler,
		WidgetJS:           handlers.NewWidgetJSHandler(cfg.PublicBaseURL),
		WidgetWS:           wsHandler,
		AdminSessions:      adminSessions,
		AdminTenant:        handlers.NewAdminTenantHandler(profileStore, orchestrator, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ChatRatePerSecond:  2,
		ChatRateBurst:      5,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
