package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/cityphoto-api/internal/api"
	"github.com/alexivanou/cityphoto-api/internal/auth"
	"github.com/alexivanou/cityphoto-api/internal/config"
	"github.com/alexivanou/cityphoto-api/internal/database"
	"github.com/alexivanou/cityphoto-api/internal/geocoding"
	"github.com/alexivanou/cityphoto-api/internal/logging"
	"github.com/alexivanou/cityphoto-api/internal/media"
	"github.com/alexivanou/cityphoto-api/internal/repository"
	"github.com/alexivanou/cityphoto-api/internal/service"
	"github.com/alexivanou/cityphoto-api/internal/stats"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, "file://migrations"); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	geocoder := geocoding.NewClient(cfg.Geocoder, logger.Named("geocoder"))
	svc := service.NewService(repository.NewStore(db), geocoder, cfg.Languages, logger.Named("service"))

	var verifier auth.Verifier
	if cfg.Auth.Enabled() {
		verifier = auth.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseProjectID)
		logger.Info("Bearer authentication enabled", zap.String("project", cfg.Auth.FirebaseProjectID))
	} else {
		logger.Warn("FIREBASE_PROJECT_ID not set, authenticated routes will answer 401")
	}

	router := api.NewRouter(
		svc,
		stats.NewCollector(db, cfg.DB),
		verifier,
		media.NewSigner(cfg.Media),
		logger.Named("http"),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited")
}
