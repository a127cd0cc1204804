package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/config"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/handler"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/middleware"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/repository"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/service"
	appvalidator "github.com/InugamiDev/car-rental-ooad-sub000/internal/validator"
	"github.com/InugamiDev/car-rental-ooad-sub000/pkg/database"
)

func main() {
	// Load .env if present (local development), then configuration
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Car Rental Loyalty Service",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit (explicit, prevents large payloads)
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := appvalidator.New()

	// Initialize loyalty components (layered architecture)
	userRepo := repository.NewUserRepository(pool)
	txnRepo := repository.NewLoyaltyTransactionRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	carRepo := repository.NewCarRepository(pool)

	ledger := service.NewLedgerService(userRepo, txnRepo)
	bookingService := service.NewBookingService(pool, bookingRepo, carRepo, userRepo, ledger)
	loyaltyService := service.NewLoyaltyService(pool, userRepo, txnRepo, ledger)

	bookingHandler := handler.NewBookingHandler(bookingService, validate)
	loyaltyHandler := handler.NewLoyaltyHandler(loyaltyService, validate)

	// Health handler
	healthHandler := handler.NewHealthHandler(pool)
	app.Get("/health", healthHandler.Check)

	// Authenticated API routes
	api := app.Group("/api", middleware.Auth(cfg.Auth.JWTSecret))
	api.Post("/bookings/:id/complete", bookingHandler.CompleteBooking)
	api.Post("/loyalty/redeem", loyaltyHandler.Redeem)
	api.Get("/loyalty", loyaltyHandler.GetLoyalty)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
