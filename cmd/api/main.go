package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	_ "github.com/jskalicky/shoply-api/docs" // Swagger docs (generated)
	"github.com/jskalicky/shoply-api/internal/account"
	"github.com/jskalicky/shoply-api/internal/auth"
	"github.com/jskalicky/shoply-api/internal/config"
	"github.com/jskalicky/shoply-api/internal/database"
	"github.com/jskalicky/shoply-api/internal/email"
	httpServer "github.com/jskalicky/shoply-api/internal/http"
	"github.com/jskalicky/shoply-api/internal/logging"
	"github.com/jskalicky/shoply-api/internal/product"
	"github.com/jskalicky/shoply-api/internal/ratelimit"
	"github.com/jskalicky/shoply-api/internal/upload"
)

// @title           Shoply API
// @version         1.0
// @description     Account backend with registration, login, role-gated resources and self-service account recovery.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// Repositories
	accountRepo := account.NewRepository(db)
	productRepo := product.NewRepository(db)

	// Token codec and rate limiter
	tokenService, err := auth.NewTokenService(cfg.Auth.PasetoKey, cfg.Auth.AccessTokenDuration)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// Mail and links
	mailer := email.NewService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
	)
	links := email.NewLinks(cfg.Email.ClientURL)

	// Uploads
	storage, err := upload.NewStorage(cfg.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize upload storage: %w", err)
	}

	// Services
	authService := auth.NewService(accountRepo, tokenService, mailer, links, logger)
	accountService := account.NewService(accountRepo, auth.HashPassword)
	productService := product.NewService(productRepo)

	// HTTP wiring
	guard := auth.NewMiddleware(tokenService, accountRepo)
	handlers := httpServer.Handlers{
		Auth:     auth.NewHandler(authService, rateLimiter, logger),
		Accounts: account.NewHandler(accountService, storage),
		Products: product.NewHandler(productService),
		Uploads:  upload.NewHandler(storage, "http://localhost:"+cfg.Server.Port),
	}

	router := httpServer.NewRouter(cfg, handlers, guard, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
