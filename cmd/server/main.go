package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/givehope/donation-api/internal/config"
	"github.com/givehope/donation-api/internal/database"
	"github.com/givehope/donation-api/internal/events"
	"github.com/givehope/donation-api/internal/handlers"
	"github.com/givehope/donation-api/internal/logger"
	"github.com/givehope/donation-api/internal/middleware"
	"github.com/givehope/donation-api/internal/notify"
	"github.com/givehope/donation-api/internal/queue"
	"github.com/givehope/donation-api/internal/ratelimit"
	"github.com/givehope/donation-api/internal/services/oidc"
	"github.com/givehope/donation-api/internal/telemetry"
	"github.com/givehope/donation-api/internal/workers"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// OpenTelemetry
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "donation-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	// Redis
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_parse_redis_url", zap.Error(err))
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	pingCancel()
	zapLogger.Info("connected_to_redis")

	// Repositories
	donationRepo := database.NewDonationRepository(db)
	campaignRepo := database.NewCampaignRepository(db)
	subscriberRepo := database.NewSubscriberRepository(db)
	contactRepo := database.NewContactRepository(db)
	presetRepo := database.NewRatelimitPresetRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)

	// Notification center, persisted to Redis so history survives restarts
	notifySvc := notify.NewService(notify.NewRedisStore(redisClient), zapLogger)
	defer notifySvc.Close()
	bridge := events.NewBridge(notifySvc, zapLogger)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Event bus. With RabbitMQ configured events go through the broker and
	// a consumer feeds the bridge; without it the bridge is wired in-process.
	var bus events.Bus
	var eventQueue queue.EventQueue
	var queueChecker handlers.QueueChecker
	if cfg.RabbitMQURL != "" {
		q := connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		defer func() {
			if err := q.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		bus = q
		eventQueue = q
		queueChecker = q

		notifier := workers.NewNotifier(eventQueue, bridge, cfg.RabbitMQPrefetch, zapLogger)
		go func() {
			if err := notifier.Run(rootCtx); err != nil && err != context.Canceled {
				zapLogger.Error("notifier_stopped_with_error", zap.Error(err))
			}
		}()
	} else {
		zapLogger.Info("rabbitmq_not_configured_using_in_process_bus")
		mb := queue.NewMemoryBus(zapLogger)
		mb.Subscribe(bridge.Handle)
		bus = mb
	}
	emitter := events.NewEmitter(bus)

	// Rate limiting: named presets with DB overrides and hot reload
	registry := ratelimit.NewRegistry()
	presetReloader := ratelimit.NewReloader(registry, presetRepo, cfg.PresetReloadInterval, zapLogger)
	go presetReloader.Start(rootCtx)

	limiter := ratelimit.New(zapLogger)
	defer limiter.Close()

	presetLimit := func(name string) func(http.Handler) http.Handler {
		return middleware.PresetLimit(limiter, registry, name, zapLogger)
	}

	// Handlers
	donationHandler := handlers.NewDonationHandler(donationRepo, campaignRepo, emitter, zapLogger)
	campaignHandler := handlers.NewCampaignHandler(campaignRepo, zapLogger)
	newsletterHandler := handlers.NewNewsletterHandler(subscriberRepo, zapLogger)
	contactHandler := handlers.NewContactHandler(contactRepo, zapLogger)
	notificationHandler := handlers.NewNotificationHandler(notifySvc)
	adminHandler := handlers.NewAdminHandler(emitter, zapLogger)
	authHandler := handlers.NewAuthHandler()
	healthChecker := handlers.NewHealthChecker(db, ratelimit.NewRedisLimiter(redisClient, zapLogger), queueChecker)

	// Router and middleware
	r := mux.NewRouter()

	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware("donation-api"))
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))

	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())

	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Logging(zapLogger))

	// Coarse per-IP backstop in front of the per-endpoint presets
	globalLimit, err := middleware.GlobalRateLimit(redisClient, cfg.GlobalRateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_global_rate_limiter", zap.Error(err))
	}
	r.Use(globalLimit)

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")

	openAPIPath := filepath.Join("api", "openapi", "openapi.yaml")
	handlers.NewOpenAPIHandler(openAPIPath).RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()

	// Donations. The blockchain webhook carries its own preset.
	donationsRouter := apiRouter.PathPrefix("/donations").Subrouter()
	confirmationsRouter := apiRouter.PathPrefix("/donations").Subrouter()
	confirmationsRouter.Use(presetLimit(ratelimit.PresetCryptoPayment.Name))
	donationHandler.RegisterConfirmationRoutes(confirmationsRouter)
	donationsRouter.Use(presetLimit(ratelimit.PresetStandard.Name))
	donationHandler.RegisterRoutes(donationsRouter)

	campaignsRouter := apiRouter.PathPrefix("/campaigns").Subrouter()
	campaignsRouter.Use(presetLimit(ratelimit.PresetLenient.Name))
	campaignHandler.RegisterRoutes(campaignsRouter)

	newsletterRouter := apiRouter.PathPrefix("/newsletter").Subrouter()
	newsletterRouter.Use(presetLimit(ratelimit.PresetNewsletter.Name))
	newsletterHandler.RegisterRoutes(newsletterRouter)

	contactRouter := apiRouter.PathPrefix("/contact").Subrouter()
	contactRouter.Use(presetLimit(ratelimit.PresetContact.Name))
	contactHandler.RegisterRoutes(contactRouter)

	notificationsRouter := apiRouter.PathPrefix("/notifications").Subrouter()
	notificationsRouter.Use(presetLimit(ratelimit.PresetLenient.Name))
	notificationHandler.RegisterRoutes(notificationsRouter)

	// Authenticated routes need an OIDC issuer
	if cfg.OIDCIssuer != "" {
		verifier := oidc.NewVerifier(oidc.NewJWKSManager(), cfg.OIDCIssuer, cfg.OIDCAudience)
		authMW := middleware.Auth(verifier)

		authRouter := apiRouter.PathPrefix("/auth").Subrouter()
		authRouter.Use(presetLimit(ratelimit.PresetAuth.Name))
		authRouter.Use(authMW)
		authRouter.HandleFunc("/verify", authHandler.Verify).Methods("GET")

		adminRouter := apiRouter.PathPrefix("/admin").Subrouter()
		adminRouter.Use(authMW)
		adminRouter.Use(presetLimit(ratelimit.PresetStrict.Name))
		adminHandler.RegisterRoutes(adminRouter)
		contactHandler.RegisterAdminRoutes(adminRouter)
	} else {
		zapLogger.Warn("oidc_issuer_not_configured_auth_routes_disabled")
	}

	// Catch-all OPTIONS handler for preflight requests
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go corsReloader.Start(rootCtx)

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectRabbitMQ retries with exponential backoff to ride out broker
// startup delays.
func connectRabbitMQ(url string, zapLogger *zap.Logger) *queue.RabbitMQQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q
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

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}
