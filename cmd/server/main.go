package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/config"
	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/mindwell/mindwell-api/internal/handlers"
	"github.com/mindwell/mindwell-api/internal/logger"
	"github.com/mindwell/mindwell-api/internal/middleware"
	"github.com/mindwell/mindwell-api/internal/queue"
	"github.com/mindwell/mindwell-api/internal/services/ai"
	"github.com/mindwell/mindwell-api/internal/services/calendar"
	"github.com/mindwell/mindwell-api/internal/services/chat"
	"github.com/mindwell/mindwell-api/internal/services/mood"
	"github.com/mindwell/mindwell-api/internal/services/oidc"
	"github.com/mindwell/mindwell-api/internal/services/spotify"
	"github.com/mindwell/mindwell-api/internal/services/summary"
	"github.com/mindwell/mindwell-api/internal/telemetry"
)

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
	debugMode := cfg.ServerDebugMode || *debugFlag

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

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("calendar_enabled", cfg.CalendarEnabled()),
		zap.Bool("spotify_enabled", cfg.SpotifyEnabled()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "mindwell-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Open database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		zapLogger.Fatal("failed_to_open_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database", zap.String("path", cfg.DatabasePath))

	// Connect to Redis for rate limiting
	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	// Connect to RabbitMQ for the background job queue. The queue is
	// optional: without it, summarization runs inline on chat turns.
	var jobQueue queue.JobQueue
	if cfg.RabbitMQURL != "" {
		jobQueue, err = connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := jobQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
	} else {
		zapLogger.Info("rabbitmq_not_configured_background_jobs_disabled")
	}

	// Initialize repositories
	userRepo := database.NewUserRepository(db)
	moodRepo := database.NewMoodRepository(db)
	transitionRepo := database.NewTransitionRepository(db)
	summaryRepo := database.NewSummaryRepository(db)
	eventRepo := database.NewEventRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Initialize AI provider
	var aiProvider ai.AIProvider
	if cfg.OpenAIKey != "" {
		aiProvider = ai.NewOpenAIProviderWithLogger(
			cfg.OpenAIKey,
			cfg.AIBaseURL,
			cfg.AIModel,
			zapLogger,
			debugMode,
		)
	} else {
		zapLogger.Warn("openai_key_not_configured_llm_features_degraded")
	}

	// Initialize services
	classifier := mood.NewClassifier(aiProvider, zapLogger)
	tracker := mood.NewTracker(moodRepo, transitionRepo, zapLogger)
	pipeline := summary.NewPipeline(aiProvider, summaryRepo, zapLogger)
	responder := chat.NewResponder(aiProvider, userRepo, classifier, tracker, pipeline, jobQueue, zapLogger)

	calendarClient := calendar.NewClient(cfg.GoogleToken, cfg.GoogleCalendarID, zapLogger)
	calendarService := calendar.NewService(calendarClient, eventRepo, zapLogger)
	spotifyClient := spotify.NewClient(cfg.SpotifyClientID, cfg.SpotifySecret, zapLogger)

	jwksManager := oidc.NewJWKSManager()

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(responder)
	moodHandler := handlers.NewMoodHandler(tracker)
	wellnessHandler := handlers.NewWellnessHandler()
	userHandler := handlers.NewUserHandler(db, userRepo)
	calendarHandler := handlers.NewCalendarHandler(calendarService)
	spotifyHandler := handlers.NewSpotifyHandler(spotifyClient)
	healthChecker := handlers.NewHealthChecker(db)

	// Setup router
	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	// OpenTelemetry tracing (if enabled)
	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("mindwell-api"))
		zapLogger.Info("otel_middleware_enabled")
	}
	// Security headers (set on all responses)
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	// CORS (load from DB, hot-reload; fallback to FRONTEND_URL)
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())
	// Rate limit middleware (applied selectively to specific routes, not globally)
	rateLimitReloader := middleware.NewRateLimitReloader(redisLimiter.Client(), ratelimitConfigRepo, "5-S", zapLogger, 1*time.Minute)
	if rateLimitReloader == nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader")
	}
	rateLimitMW := rateLimitReloader.Middleware()
	// Request size limits
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	// Content-Type validation for POST/PATCH/PUT requests
	r.Use(middleware.ContentType)
	// Request timeout
	r.Use(middleware.Timeout(30 * time.Second))
	// Error handler (catches panics)
	r.Use(middleware.ErrorHandler(zapLogger))
	// Audit logging (for security events)
	r.Use(middleware.Audit(zapLogger))
	// Request logging
	r.Use(middleware.Logging(zapLogger))

	log.Println("Middleware setup complete")

	// Public routes (no rate limiting for health checks)
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	// OpenAPI spec (public)
	openAPIPath := filepath.Join("api", "openapi.yaml")
	openAPIHandler := handlers.NewOpenAPIHandler(openAPIPath)
	openAPIHandler.RegisterRoutes(r)

	// WebSocket chat (timeouts would kill long-lived sockets, so it gets its
	// own subrouter outside the timeout middleware chain)
	wsRouter := r.PathPrefix("/ws").Subrouter()
	wsRouter.Use(middleware.Auth(jwksManager, cfg.JWKSURL, cfg.JWTIssuer))
	chatHandler.RegisterWebSocket(wsRouter)

	// API v1 routes
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.Auth(jwksManager, cfg.JWKSURL, cfg.JWTIssuer))
	apiRouter.Use(rateLimitMW)
	apiRouter.Use(middleware.ActivityTracking(userRepo))

	chatHandler.RegisterRoutes(apiRouter)
	moodHandler.RegisterRoutes(apiRouter)
	wellnessHandler.RegisterRoutes(apiRouter)
	userHandler.RegisterRoutes(apiRouter)
	calendarHandler.RegisterRoutes(apiRouter)
	spotifyHandler.RegisterRoutes(apiRouter)

	// Catch-all OPTIONS handler for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// CORS and rate limit hot-reload loops
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	// Start DLQ garbage collector if the queue implementation supports it
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour)
		go func() {
			if err := dlqGC.Start(reloadCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectRabbitMQ dials RabbitMQ with exponential backoff to ride out broker
// startup delays.
func connectRabbitMQ(amqpURL string, zapLogger *zap.Logger) (queue.JobQueue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue, nil
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	return nil, lastErr
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info (sanitized for security)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
