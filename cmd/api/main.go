package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/riverline/collections-platform/internal/api/router"
	"github.com/riverline/collections-platform/internal/borrowers"
	"github.com/riverline/collections-platform/internal/compliance"
	appconfig "github.com/riverline/collections-platform/internal/config"
	"github.com/riverline/collections-platform/internal/conversation"
	"github.com/riverline/collections-platform/internal/messaging"
	"github.com/riverline/collections-platform/internal/notify"
	"github.com/riverline/collections-platform/internal/observability/metrics"
	"github.com/riverline/collections-platform/internal/ops"
	"github.com/riverline/collections-platform/internal/payments"
	"github.com/riverline/collections-platform/internal/promises"
	"github.com/riverline/collections-platform/internal/scoring"
	"github.com/riverline/collections-platform/internal/settlements"
	"github.com/riverline/collections-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting collections-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence: Postgres when configured, in-memory otherwise.
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	var (
		borrowerRepo borrowers.Repository
		promiseRepo  promises.Repository
		offerRepo    settlements.Repository
		paymentRepo  payments.Repository
		convStore    conversation.Store
	)
	if pool != nil {
		defer pool.Close()
		borrowerRepo = borrowers.NewPostgresRepository(pool)
		promiseRepo = promises.NewPostgresRepository(pool)
		offerRepo = settlements.NewPostgresRepository(pool)
		paymentRepo = payments.NewPostgresRepository(pool)
		convStore = conversation.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		borrowerRepo = borrowers.NewInMemoryRepository()
		promiseRepo = promises.NewInMemoryRepository()
		offerRepo = settlements.NewInMemoryRepository()
		paymentRepo = payments.NewInMemoryRepository()
		convStore = conversation.NewInMemoryStore()
	}

	metricsHandler, collMetrics := setupMetrics()
	queueCache := setupQueueCache(cfg, logger)
	sender := setupTwilio(cfg, logger)
	emailSender := setupEmail(ctx, cfg, logger)

	// Optional LLM suggestion enrichment.
	llm := setupGemini(ctx, cfg, logger)
	if llm != nil {
		defer llm.Close()
	}
	// Live agent coaching stream
	coachHub := ops.NewCoachHub(logger)

	enricher := setupEnricher(ctx, cfg, convStore, llm, logger)
	enricher.SetMetrics(collMetrics)
	enricher.SetTurnListener(coachHub)
	if llm != nil {
		enricher.Run(ctx, cfg.WorkerCount)
	}

	// Services
	promiseService := promises.NewService(promiseRepo, borrowerRepo, queueCache, logger)
	promiseService.SetMetrics(collMetrics)
	settlementService := settlements.NewService(offerRepo, borrowerRepo, sender, logger)
	paymentService := payments.NewService(paymentRepo, borrowerRepo, logger)
	convService := conversation.NewService(convStore, borrowerRepo, promiseService, enricher, logger)
	convService.SetMetrics(collMetrics)
	opsService := ops.NewService(
		borrowerRepo, promiseRepo, offerRepo, convStore,
		queueCache, sender, cfg.PublicWebhookBaseURL, logger,
	)
	opsService.SetMetrics(collMetrics)
	opsService.SetCallWindow(callWindowFromConfig(cfg))

	convService.SetTurnListener(coachHub)

	// Setup router
	routerCfg := &router.Config{
		Logger:              logger,
		BorrowersHandler:    borrowers.NewHandler(borrowerRepo, promiseRepo, convStore, logger),
		PromisesHandler:     promises.NewHandler(promiseRepo, promiseService, logger),
		SettlementsHandler:  settlements.NewHandler(offerRepo, settlementService, logger),
		PaymentsHandler:     payments.NewHandler(paymentRepo, paymentService, logger),
		ConversationHandler: conversation.NewHandler(convService, logger),
		OpsHandler:          ops.NewHandler(opsService, emailSender, cfg.ReportToEmail, logger),
		CoachHub:            coachHub,
		MetricsHandler:      metricsHandler,
		SupervisorJWTSecret: cfg.SupervisorJWTSecret,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	cancel()
	enricher.Wait()

	logger.Info("server stopped")
}

// connectPostgresPool opens a pgx pool, or returns nil when no database
// is configured or reachable so the service can fall back to in-memory
// stores.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("postgres pool init failed", "error", err)
		return nil
	}
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres unreachable", "error", err)
		pool.Close()
		return nil
	}
	logger.Info("connected to postgres")
	return pool
}

func setupMetrics() (http.Handler, *metrics.CollectionsMetrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewCollectionsMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

func setupQueueCache(cfg *appconfig.Config, logger *logging.Logger) *scoring.QueueCache {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, priority queue is rebuilt per request")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	return scoring.NewQueueCache(client, cfg.QueueCacheTTL)
}

func setupTwilio(cfg *appconfig.Config, logger *logging.Logger) messaging.Sender {
	sender, err := messaging.NewTwilioSender(
		cfg.TwilioAccountSID, cfg.TwilioAuthToken,
		cfg.TwilioWhatsAppFrom, cfg.TwilioVoiceNumber,
		logger,
	)
	if err != nil {
		logger.Warn("twilio not configured, outbound contact disabled", "reason", err)
		return nil
	}
	return sender
}

func setupEmail(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) notify.Sender {
	if cfg.EmailProvider == "ses" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("aws config load failed, report email disabled", "error", err)
			return notify.NewStubSender(logger)
		}
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.ReportFromEmail,
			FromName:  "Riverline Collections",
		}, logger)
		if sender != nil {
			return sender
		}
		return notify.NewStubSender(logger)
	}
	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.ReportFromEmail,
		FromName:  "Riverline Collections",
	}, logger)
	if sender == nil {
		return notify.NewStubSender(logger)
	}
	return sender
}

func setupGemini(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *conversation.GeminiLLMClient {
	if cfg.GeminiAPIKey == "" {
		logger.Info("GEMINI_API_KEY not set, suggestion enrichment disabled")
		return nil
	}
	client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		logger.Error("gemini client init failed, suggestion enrichment disabled", "error", err)
		return nil
	}
	return client
}

// setupEnricher picks the job queue: SQS when a queue URL is set,
// otherwise an in-process channel.
func setupEnricher(ctx context.Context, cfg *appconfig.Config, store conversation.Store, llm *conversation.GeminiLLMClient, logger *logging.Logger) *conversation.Enricher {
	var llmClient conversation.LLMClient
	if llm != nil {
		llmClient = llm
	}
	if cfg.SuggestionQueueURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Error("aws config load failed, using in-process queue", "error", err)
			return conversation.NewEnricher(conversation.NewMemoryQueue(64), store, llmClient, logger)
		}
		queue, err := conversation.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.SuggestionQueueURL)
		if err != nil {
			logger.Error("sqs queue setup failed, using in-process queue", "error", err)
			return conversation.NewEnricher(conversation.NewMemoryQueue(64), store, llmClient, logger)
		}
		return conversation.NewEnricher(queue, store, llmClient, logger)
	}
	return conversation.NewEnricher(conversation.NewMemoryQueue(64), store, llmClient, logger)
}

func callWindowFromConfig(cfg *appconfig.Config) compliance.CallWindow {
	window := compliance.DefaultCallWindow()
	if cfg.CallWindowStartHour >= 0 && cfg.CallWindowStartHour < 24 {
		window.Start = cfg.CallWindowStartHour
	}
	if cfg.CallWindowEndHour > 0 && cfg.CallWindowEndHour <= 24 {
		window.End = cfg.CallWindowEndHour
	}
	if loc, err := time.LoadLocation(cfg.CallWindowTimezone); err == nil {
		window.Location = loc
	}
	return window
}
