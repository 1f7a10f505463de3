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

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/CyresSmith/projects-tracker-backend/internal/config"
	"github.com/CyresSmith/projects-tracker-backend/internal/handler"
	"github.com/CyresSmith/projects-tracker-backend/internal/repository"
	"github.com/CyresSmith/projects-tracker-backend/internal/usecase"
	"github.com/CyresSmith/projects-tracker-backend/shared/auth"
	"github.com/CyresSmith/projects-tracker-backend/shared/mailer"
	"github.com/CyresSmith/projects-tracker-backend/shared/storage"
	"github.com/CyresSmith/projects-tracker-backend/shared/validation"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Info().Msg("no .env file found, using system environment variables")
	}

	cfg := config.Load(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.DBHost))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	db := mongoClient.Database(cfg.DBName)
	clientRepo := repository.NewClientMongoRepository(ctx, &logger, db)

	driveStore, err := storage.NewDriveStore(ctx, cfg.Drive)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create drive store")
	}

	mail := mailer.NewMailer(cfg.SMTP)
	jwtAuth := auth.NewJWTAuthenticator(cfg.TokenIssuer, cfg.TokenIssuer)

	validator, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create validator")
	}

	registration := usecase.NewRegistrationUsecase(clientRepo, driveStore, mail, cfg, &logger)
	verification := usecase.NewVerificationUsecase(clientRepo, mail, cfg)
	authUsecase := usecase.NewAuthUsecase(clientRepo, jwtAuth, cfg)
	account := usecase.NewAccountUsecase(clientRepo, driveStore, &logger)

	clientHandler := handler.NewClientHandler(
		registration,
		verification,
		authUsecase,
		account,
		validator,
		cfg.TempDir,
		&logger,
	)
	authMiddleware := handler.NewAuthMiddleware(clientRepo, jwtAuth, cfg.Secret)
	router := handler.NewRouter(clientHandler, authMiddleware, &logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Port).Str("base_url", cfg.BaseURL).Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server gracefully")
	}
}
