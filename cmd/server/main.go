package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdg-garage/training-calculator/internal/auth"
	"github.com/gdg-garage/training-calculator/internal/config"
	"github.com/gdg-garage/training-calculator/internal/database"
	"github.com/gdg-garage/training-calculator/internal/handlers"
	"github.com/gdg-garage/training-calculator/internal/jobs"
	"github.com/gdg-garage/training-calculator/internal/notifier"
	"github.com/gdg-garage/training-calculator/internal/render"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET must be set, admin sessions cannot be signed without it")
	}

	// Connect to Database
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("Database unavailable", zap.Error(err))
	}

	// Discord notifications are optional
	var discordNotifier notifier.Notifier
	if session, err := notifier.NewDiscordSession(cfg.DiscordBotToken); err != nil {
		logger.Warn("Discord notifier not initialized", zap.Error(err))
	} else if cfg.DiscordNotificationsChannelID == "" {
		logger.Warn("Discord notifier not initialized: DISCORD_NOTIFICATIONS_CHANNEL_ID is empty")
	} else {
		discordNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID, logger)
	}

	renderer, err := render.New()
	if err != nil {
		logger.Fatal("Failed to load templates", zap.Error(err))
	}

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db, logger)
	widgetHandler, err := handlers.NewWidgetHandler(db, renderer, handlers.AjaxPath, cfg.LandingPagePath, logger)
	if err != nil {
		logger.Fatal("Failed to load landing page", zap.String("path", cfg.LandingPagePath), zap.Error(err))
	}

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:         authHandler,
		Registration: handlers.NewRegistrationHandler(db, discordNotifier, logger),
		Admin:        handlers.NewAdminHandler(db, renderer, authHandler, cfg.PerPage, handlers.AdminListPath, logger),
		Widget:       widgetHandler,
		APIKey:       handlers.NewAPIKeyHandler(db, authHandler, logger),
	})

	if discordNotifier != nil {
		scheduler, err := jobs.Schedule(cfg.DigestSchedule, jobs.NewDigest(db, discordNotifier, logger))
		if err != nil {
			logger.Fatal("Failed to schedule digest", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("Daily digest scheduled", zap.String("schedule", cfg.DigestSchedule))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", zap.Error(err))
		}
	}()

	// Start Server
	logger.Info("Starting server", zap.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
