package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/agilizaapp/web-menu-sub000/internal"
	"github.com/agilizaapp/web-menu-sub000/internal/geocode"
	"github.com/agilizaapp/web-menu-sub000/internal/handler"
	"github.com/agilizaapp/web-menu-sub000/internal/middleware"
	"github.com/agilizaapp/web-menu-sub000/internal/orderapi"
	"github.com/agilizaapp/web-menu-sub000/internal/postal"
	"github.com/agilizaapp/web-menu-sub000/internal/postgres"
	"github.com/agilizaapp/web-menu-sub000/internal/router"
	"github.com/agilizaapp/web-menu-sub000/internal/routes"
	"github.com/agilizaapp/web-menu-sub000/internal/service"
	"github.com/agilizaapp/web-menu-sub000/internal/telemetry"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry error tracking
	sentryCleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Enabled:          cfg.Sentry.Enabled,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
		Debug:            cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer sentryCleanup()

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize stores
	sessionStore := postgres.NewSessionStore(pool, cfg.RestaurantID)
	orderStore := postgres.NewOrderStore(pool, cfg.RestaurantID)

	// Initialize the ordering backend client
	logger.Info("Initializing ordering backend client...", "base_url", cfg.OrderAPI.BaseURL)
	apiClient, err := orderapi.NewHTTPClient(cfg.OrderAPI.BaseURL, strconv.FormatInt(cfg.RestaurantID, 10), nil)
	if err != nil {
		return fmt.Errorf("failed to initialize ordering backend client: %w", err)
	}

	// Initialize the postal-code directory
	postalDirectory := postal.NewViaCEPDirectory(cfg.Postal.BaseURL, nil)

	// Initialize the geocoding provider and distance resolver
	logger.Info("Initializing geocoder...", "base_url", cfg.Geocoder.BaseURL)
	geocoder, err := geocode.NewNominatimProvider(geocode.NominatimConfig{
		BaseURL:      cfg.Geocoder.BaseURL,
		UserAgent:    cfg.Geocoder.UserAgent,
		CountryCodes: cfg.Geocoder.CountryCodes,
		MinInterval:  cfg.Geocoder.MinInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize geocoder: %w", err)
	}
	resolver := geocode.NewDistanceResolver(geocoder, cfg.Geocoder.Locality, logger)

	// Initialize checkout services
	sessions := service.NewSessionService(sessionStore, logger)
	quoter := service.NewFeeQuoter(cfg.Delivery.Tiers, resolver, service.PickupLocation{
		Label:          cfg.Pickup.Label,
		DistanceMeters: pickupDistance(cfg.Pickup.DistanceMeters),
	}, logger)
	builder := service.NewPayloadBuilder()

	manager := service.NewManager(service.ManagerConfig{
		Sessions:     sessions,
		Client:       apiClient,
		Postal:       postalDirectory,
		Quoter:       quoter,
		Builder:      builder,
		Orders:       orderStore,
		PixCountdown: cfg.Payment.PixCountdown,
		Logger:       logger,
	})
	defer manager.Close()

	// ==========================================================================
	// Build route dependencies
	// ==========================================================================

	apiDeps := routes.APIDeps{
		Checkout: handler.NewCheckoutHandler(manager, cfg.Pickup.Label),
		Payment:  handler.NewPaymentHandler(manager),
		Health:   handler.NewHealthHandler(pool),
	}

	// ==========================================================================
	// Initialize middleware
	// ==========================================================================

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("webmenu")

	// Configure rate limiting
	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	orderRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())
	defer defaultRateLimiter.Stop()
	defer orderRateLimiter.Stop()

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.CORS(cfg.CORSOrigins),
		defaultRateLimiter.Middleware,
		middleware.WithSessionKey(cfg.Env == "prod"),
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
	)

	// Metrics endpoint (protect via firewall in production)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	routes.RegisterHealthRoutes(r, apiDeps)
	routes.RegisterAPIRoutes(r, apiDeps, orderRateLimiter.Middleware)

	// ==========================================================================
	// Start server
	// ==========================================================================

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting checkout server", "address", addr, "restaurant_id", cfg.RestaurantID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

func pickupDistance(meters int) *int {
	if meters <= 0 {
		return nil
	}
	return &meters
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
