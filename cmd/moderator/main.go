package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/api"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/api/handler"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/metrics"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/pii"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/platform"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/repository/postgres"
	redisrepo "github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/repository/redis"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/webhook"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/adapter/ws"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/pkg/config"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/pkg/logger"
	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/usecase"

	_ "github.com/lib/pq" // Keep for postgres driver
)

const (
	consumerGroup      = "moderation-workers"
	processingInterval = 1 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	log.Info("starting moderation worker")

	m := metrics.NewModerationMetrics()

	// --- Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    cfg.MetricsServerAddr,
		Handler: metricsMux,
	}

	go func() {
		log.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database and Redis Connections ---
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}
	log.Info("connected to postgres")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis")

	consumerName, err := os.Hostname()
	if err != nil {
		log.Warn("could not get hostname for consumer name, using default", "error", err)
		consumerName = "moderator-default"
	}

	// --- Repositories ---
	queue, err := redisrepo.NewMessageQueue(redisClient, log, consumerGroup)
	if err != nil {
		log.Error("failed to create message queue", "error", err)
		os.Exit(1)
	}
	settingsRepo := postgres.NewSettingsRepository(db, log)
	eventRepo := postgres.NewEventRepository(db, log)
	warningRepo := postgres.NewWarningRepository(db, log)
	webhookRepo := postgres.NewWebhookRepository(db, log)
	apiKeyRepo := postgres.NewAPIKeyRepository(db, log, cfg.APIKeyCacheTTL, nil)

	platformClient := platform.NewClient(cfg.PlatformAPIURL, cfg.PlatformToken, log)
	notifier := webhook.NewNotifier(webhookRepo, cfg.WebhookRatePerSec, cfg.WebhookRateBurst,
		pii.NewRedactor(cfg.RedactOutbound), log, m)

	// --- Event Log and Broadcast ---
	eventLog, err := usecase.NewEventLog(ctx, eventRepo, log, m)
	if err != nil {
		log.Error("failed to initialize event log", "error", err)
		os.Exit(1)
	}

	broadcaster := usecase.NewBroadcaster(cfg.ReplayDepth, log, m)
	recent, err := eventLog.Query(ctx, domain.EventFilter{Limit: cfg.ReplayDepth})
	if err != nil {
		log.Error("failed to load replay events", "error", err)
		os.Exit(1)
	}
	// Query returns newest first; the replay ring wants ascending order.
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	broadcaster.Rehydrate(recent)
	eventLog.AttachSink(broadcaster.Publish)
	go broadcaster.Run(ctx)

	// --- Moderation Pipeline ---
	policies := usecase.NewPolicyStore(settingsRepo, cfg.PolicyCacheSize, cfg.PolicyCacheTTL, log, m)
	spam := usecase.NewSpamTracker(cfg.SpamStaleAfter, cfg.SpamMaxTracked, log, m)
	go spam.RunSweeper(ctx, cfg.SpamSweepInterval)

	enforcer := usecase.NewEnforcer(platformClient, warningRepo, eventLog, notifier, cfg.EnforcementTimeout, log, m)
	moderate := usecase.NewModerateMessage(policies, usecase.NewFilterPipeline(), spam, enforcer, log, m)
	process := usecase.NewProcessMessages(queue, moderate, log, consumerGroup, consumerName)

	// --- Dashboard Server ---
	dashboard := handler.NewDashboardHandler(eventLog, policies, enforcer, spam, warningRepo, webhookRepo, log)
	stream := ws.NewStreamHandler(broadcaster, log)
	dashboardServer := &http.Server{
		Addr:        cfg.DashboardServerAddr,
		Handler:     api.NewDashboardRouter(dashboard, stream, apiKeyRepo, log),
		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info("starting dashboard server", "addr", dashboardServer.Addr)
		if err := dashboardServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("dashboard server failed", "error", err)
			stop()
		}
	}()

	// --- Consumer Loop ---
	ticker := time.NewTicker(processingInterval)
	defer ticker.Stop()

	log.Info("moderation worker started", "group", consumerGroup, "consumer", consumerName)

Loop:
	for {
		select {
		case <-ticker.C:
			if _, err := process.ProcessBatch(ctx); err != nil {
				log.Error("error processing batch", "error", err)
			}
		case <-ctx.Done():
			log.Info("context cancelled, shutting down consumer loop")
			break Loop
		}
	}

	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}
	if err := dashboardServer.Shutdown(shutdownCtx); err != nil {
		log.Error("dashboard server shutdown failed", "error", err)
	}

	log.Info("moderation worker shut down gracefully")
}
