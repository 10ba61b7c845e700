package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/askpeer/askpeer-be/internal/api"
	"github.com/askpeer/askpeer-be/internal/auth"
	"github.com/askpeer/askpeer-be/internal/config"
	"github.com/askpeer/askpeer-be/internal/database"
	"github.com/askpeer/askpeer-be/internal/llm"
	"github.com/askpeer/askpeer-be/internal/logger"
	"github.com/askpeer/askpeer-be/internal/mail"
	"github.com/askpeer/askpeer-be/internal/services"
	"github.com/askpeer/askpeer-be/internal/storage"
)

const tokenTTL = 24 * time.Hour

func main() {
	logger.Init(os.Getenv("APP_ENV") != "production")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up external collaborators
	objects, err := storage.NewMinIOClient(context.Background(),
		cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	gateway := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	tokens := auth.NewTokenService(cfg.JWTSecret, tokenTTL)

	// Set up services
	userService := services.NewUserService(db, mailer, objects, cfg.PublicBaseURL)
	questionService := services.NewQuestionService(db)
	answerService := services.NewAnswerService(db)
	summaryService := services.NewSummaryService(questionService, answerService, gateway, cfg.LLMMaxTokens)
	chatService := services.NewChatService(
		services.NewSQLConversationStore(db), gateway,
		cfg.ChatContextRows, cfg.LLMTemperature, cfg.LLMMaxTokens)

	// Set up router
	router := api.NewRouter(tokens, userService, questionService, answerService, summaryService, chatService)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
