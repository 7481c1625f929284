package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/adapters/cache"
	"github.com/zatekoja/agencysite/backend/internal/adapters/database"
	"github.com/zatekoja/agencysite/backend/internal/adapters/events"
	"github.com/zatekoja/agencysite/backend/internal/adapters/providers/payments"
	"github.com/zatekoja/agencysite/backend/internal/api/handlers"
	"github.com/zatekoja/agencysite/backend/internal/api/middleware"
	"github.com/zatekoja/agencysite/backend/internal/api/routes"
	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/notifications"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/observability"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL)
	if err != nil {
		log.Warn().Err(err).Msg("OpenTelemetry setup failed, continuing without tracing")
	} else {
		defer func() {
			if err := shutdownOTel(context.Background()); err != nil {
				log.Error().Err(err).Msg("error shutting down OpenTelemetry")
			}
		}()
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pgClient.Close()

	if cfg.Database.MigrateOnBoot {
		if err := postgres.MigrateUp(ctx, pgClient.DB()); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Drafts, rate limits and the token denylist live in Redis. Without it
	// the process falls back to in-memory state, which is fine for a single
	// instance but not shared across replicas.
	var (
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
	)
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-memory cache and event bus")
		cacheProvider = cache.NewMemoryAdapter()
		eventBus = events.NewLocalEventBus()
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("connected to Redis")
	}
	defer func() {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}()

	gateway, err := payments.NewPaymentGateway(cfg.Payments)
	if err != nil {
		return fmt.Errorf("create payment gateway: %w", err)
	}
	log.Info().Str("provider", gateway.Name()).Msg("payment gateway ready")

	// Repositories
	quoteRepo := database.NewQuoteAdapter(pgClient)
	projectRepo := database.NewProjectAdapter(pgClient)
	paymentRepo := database.NewPaymentAdapter(pgClient)
	userRepo := database.NewUserAdapter(pgClient)
	contactRepo := database.NewContactAdapter(pgClient)
	webhookRepo := database.NewWebhookEventAdapter(pgClient.SQLX())

	// Services
	quoteService := services.NewQuoteService(quoteRepo, eventBus)
	quoteService.SetMetrics(metrics)
	paymentService := services.NewPaymentService(paymentRepo, quoteRepo, webhookRepo, gateway, eventBus, cfg.Payments)
	paymentService.SetMetrics(metrics)
	authService := services.NewAuthService(userRepo, cacheProvider, cfg.Auth)
	wizardService := services.NewQuoteWizardService(cacheProvider, quoteService)
	projectService := services.NewProjectService(projectRepo, quoteRepo)
	contactService := services.NewContactService(contactRepo, cacheProvider, eventBus)
	dashboardService := services.NewDashboardService(quoteRepo, projectRepo, paymentRepo)
	preferenceService := services.NewPreferenceService(cache.NewPreferenceStore(cacheProvider))

	notificationService := services.NewNotificationService(eventBus, notifications.NewEmailSender(cfg.Notifications), cfg.Notifications)
	if err := notificationService.Start(ctx); err != nil {
		return fmt.Errorf("start notifications: %w", err)
	}

	var scheduler *services.FollowUpScheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = services.NewFollowUpScheduler(quoteService, eventBus, cacheProvider, cfg.Scheduler)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	pingers := map[string]handlers.Pinger{"postgres": pgClient}
	if redisClient != nil {
		pingers["redis"] = redisClient
	}

	trustedProxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		return err
	}
	quoteThrottle := handlers.NewQuoteThrottle(cacheProvider).TrustProxies(trustedProxies)
	contactThrottle := handlers.NewContactThrottle(cacheProvider).TrustProxies(trustedProxies)
	router := routes.NewRouter(routes.Handlers{
		Health:      handlers.NewHealthHandler(pingers),
		Catalog:     handlers.NewCatalogHandler(),
		Pricing:     handlers.NewPricingHandler(),
		QuoteDrafts: handlers.NewQuoteDraftHandler(wizardService, quoteThrottle),
		Quotes:      handlers.NewQuoteHandler(quoteService, quoteThrottle),
		Projects:    handlers.NewProjectHandler(projectService),
		Payments:    handlers.NewPaymentHandler(paymentService),
		Auth:        handlers.NewAuthHandler(authService),
		Preferences: handlers.NewPreferenceHandler(preferenceService),
		Dashboard:   handlers.NewDashboardHandler(dashboardService),
		Contact:     handlers.NewContactHandler(contactService, contactThrottle),
	}, middleware.NewAuth(authService), cfg.CORS, metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", serverAddr).Str("env", cfg.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info().Msg("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			log.Warn().Msg("follow-up job still running at shutdown")
		}
	}
	notificationService.Wait()

	log.Info().Msg("server stopped")
	return nil
}
