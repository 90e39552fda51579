package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/catarina/secure-login/internal/config"
	httpserver "github.com/catarina/secure-login/internal/http"
	"github.com/catarina/secure-login/internal/notification"
	"github.com/catarina/secure-login/pkg/audit"
	"github.com/catarina/secure-login/pkg/auth"
	"github.com/catarina/secure-login/pkg/repository"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("connected to database")

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	attemptsRepo := repository.NewLoginAttemptsRepository(db)
	auditsRepo := repository.NewAuditEventsRepository(db)
	securityRepo := repository.NewSecurityEventsRepository(db)

	// Audit pipeline: events are queued here and written by background
	// workers so request handling never waits on the audit tables.
	recorder := audit.NewRecorder(logger, auditsRepo, securityRepo, audit.Options{})
	defer recorder.Close()

	// Challenge store: Redis when configured, in-process otherwise
	var challenges auth.ChallengeStore
	if cfg.HasRedis() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		challenges = repository.NewRedisChallengeStore(client)
		logger.Info("captcha challenge store: redis", "addr", cfg.RedisAddr)
	} else {
		challenges = auth.NewMemoryChallengeStore()
	}

	// Initialize email service if configured
	var sender auth.CodeSender
	if cfg.HasSMTP() {
		sender = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		logger.Info("email service enabled")
	}

	// Initialize services
	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, logger)
	authenticator := auth.NewAuthenticator(
		auth.Config{
			TwoFactorEnabled:   cfg.TwoFactorEnabled,
			TwoFactorCodeTTL:   cfg.TwoFactorCodeTTL,
			LockoutEnabled:     cfg.AccountLockEnabled,
			LockoutMaxAttempts: cfg.AccountLockMaxAttempts,
			LockoutDuration:    cfg.AccountLockDuration,
			InfiniteAttempts:   cfg.InfiniteAttempts,
			CaptchaEnabled:     cfg.CaptchaEnabled,
		},
		logger,
		usersRepo,
		attemptsRepo,
		recorder,
		tokenService,
		sender,
		auth.NewBase64CaptchaGenerator(),
		challenges,
	)
	captchaService := auth.NewCaptchaService(logger, usersRepo, challenges, recorder)
	userService := auth.NewUserService(logger, usersRepo)

	// Create router
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Logger:             logger,
		Authenticator:      authenticator,
		UserService:        userService,
		CaptchaService:     captchaService,
		TokenService:       tokenService,
		Recorder:           recorder,
		UsersRepo:          usersRepo,
		SecurityHeaders:    cfg.SecurityHeaders,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
