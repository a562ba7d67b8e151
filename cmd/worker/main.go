package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/config"
	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/mindwell/mindwell-api/internal/logger"
	"github.com/mindwell/mindwell-api/internal/queue"
	"github.com/mindwell/mindwell-api/internal/services/ai"
	"github.com/mindwell/mindwell-api/internal/services/summary"
	"github.com/mindwell/mindwell-api/internal/workers"
)

// pruneSchedule runs the mood transition retention pass nightly.
const pruneSchedule = "30 3 * * *"

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.WorkerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("Starting worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("ai_model", cfg.AIModel),
		zap.Int("transition_ttl_days", cfg.TransitionTTLDays),
	)

	// Initialize database connection
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		zapLogger.Fatal("Failed to open database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to database", zap.String("path", cfg.DatabasePath))

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	transitionRepo := database.NewTransitionRepository(db)
	summaryRepo := database.NewSummaryRepository(db)

	// Initialize RabbitMQ queue
	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("RABBITMQ_URL is required for the worker")
	}
	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to RabbitMQ",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// Create AI provider with logger. Without a key the worker still runs:
	// summarize jobs become no-ops and retention pruning keeps working.
	var aiProvider ai.AIProvider
	if cfg.OpenAIKey != "" {
		aiProvider = ai.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			zapLogger,
			debugMode,
		)
		zapLogger.Info("Initialized AI provider", zap.String("model", cfg.AIModel))
	} else {
		zapLogger.Warn("OPENAI_API_KEY not set, summarize jobs will be skipped")
	}

	pipeline := summary.NewPipeline(aiProvider, summaryRepo, zapLogger)

	// Create summarizer worker
	summarizer := workers.NewSummarizer(
		pipeline,
		userRepo,
		transitionRepo,
		jobQueue,
		cfg.TransitionTTLDays,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Schedule the nightly retention prune
	cronRunner := cron.New()
	if _, err := cronRunner.AddFunc(pruneSchedule, func() {
		if err := summarizer.PruneTransitions(ctx); err != nil {
			zapLogger.Error("Transition prune failed", zap.Error(err))
		}
	}); err != nil {
		zapLogger.Fatal("Failed to schedule transition prune", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	zapLogger.Info("Scheduled transition prune", zap.String("schedule", pruneSchedule))

	// Start consuming messages
	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("Failed to start consuming messages", zap.Error(err))
	}

	zapLogger.Info("Worker started, consuming messages from queue")

	// Process messages
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("Message channel closed")
					return
				}

				// Process job
				if err := summarizer.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("Failed to process job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	// Handle errors
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("Queue error", zap.Error(err))
			}
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	zapLogger.Info("Shutdown signal received, stopping worker...")

	// Cancel context to stop processing
	cancel()

	zapLogger.Info("Worker stopped")
}
