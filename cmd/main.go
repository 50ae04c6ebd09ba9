package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/scrimhub/tournament-platform/config"
	"github.com/scrimhub/tournament-platform/db"
	"github.com/scrimhub/tournament-platform/handlers"
	"github.com/scrimhub/tournament-platform/live"
	"github.com/scrimhub/tournament-platform/repositories"
	api "github.com/scrimhub/tournament-platform/routes"
	"github.com/scrimhub/tournament-platform/services"
	"github.com/scrimhub/tournament-platform/storage"
)

const schedulerInterval = 30 * time.Second // How often the scheduler runs

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	registrationRepo := repositories.NewPostgresRegistrationRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	scoreRepo := repositories.NewPostgresMatchScoreRepository(dbConn)
	roundScoreRepo := repositories.NewPostgresRoundScoreRepository(dbConn)
	statsRepo := repositories.NewPostgresTeamStatisticsRepository(dbConn)
	logger.Info("Repositories initialized")

	tournamentService := services.NewTournamentService(
		tournamentRepo,
		registrationRepo,
		cloudflareUploader,
		logger,
	)
	registrationService := services.NewRegistrationService(
		registrationRepo,
		tournamentRepo,
		logger,
	)
	// nil rng keeps the shared non-deterministic shuffle source.
	groupService := services.NewGroupService(
		dbConn,
		tournamentRepo,
		registrationRepo,
		groupRepo,
		matchRepo,
		scoreRepo,
		wsHub,
		logger,
		nil,
	)
	matchService := services.NewMatchService(matchRepo, groupRepo, logger)
	scoringService := services.NewScoringService(
		dbConn,
		tournamentRepo,
		registrationRepo,
		groupRepo,
		matchRepo,
		scoreRepo,
		roundScoreRepo,
		wsHub,
		logger,
	)
	leaderboardService := services.NewLeaderboardService(
		dbConn,
		statsRepo,
		scoreRepo,
		tournamentRepo,
		logger,
	)
	logger.Info("Services initialized")

	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()
		logger.Info("Tournament status update scheduler started", slog.Duration("interval", schedulerInterval))

		// Run once immediately at startup, then on ticker
		if err := tournamentService.AutoUpdateTournamentStatusesByDates(context.Background()); err != nil {
			logger.Error("Scheduler: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := tournamentService.AutoUpdateTournamentStatusesByDates(context.Background()); err != nil {
				logger.Error("Scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	h := api.Handlers{
		Tournament:   handlers.NewTournamentHandler(tournamentService),
		Registration: handlers.NewRegistrationHandler(registrationService),
		Group:        handlers.NewGroupHandler(groupService, scoringService),
		Match:        handlers.NewMatchHandler(matchService, scoringService),
		Leaderboard:  handlers.NewLeaderboardHandler(leaderboardService),
		WebSocket:    handlers.NewWebSocketHandler(wsHub, logger),
	}
	logger.Info("HTTP handlers initialized")

	router := api.InitRoutes(h, []byte(cfg.JWTSecretKey))
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
