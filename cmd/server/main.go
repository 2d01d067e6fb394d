package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yamdb/yamdb/internal/config"
	"github.com/yamdb/yamdb/internal/database"
	"github.com/yamdb/yamdb/internal/handler"
	"github.com/yamdb/yamdb/internal/middleware"
	"github.com/yamdb/yamdb/internal/notify"
	"github.com/yamdb/yamdb/internal/repository"
	"github.com/yamdb/yamdb/internal/service"
	"github.com/yamdb/yamdb/internal/utils"
	"github.com/yamdb/yamdb/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal("Invalid configuration", zap.Error(err))
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// Auth building blocks
	codes, err := utils.NewCodeGenerator(cfg.JWTSecret, cfg.ConfirmationCodeTTL)
	if err != nil {
		logger.Log.Fatal("Failed to set up confirmation codes", zap.Error(err))
	}
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	notifier, err := notify.New(cfg.Mail)
	if err != nil {
		logger.Log.Fatal("Failed to set up mail delivery", zap.Error(err))
	}

	// Initialize services
	ratingService := service.NewRatingService(reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	services := handler.Services{
		Auth:     service.NewAuthService(userRepo, codes, tokens, notifier),
		Users:    service.NewUserService(userRepo),
		Catalog:  service.NewCatalogService(categoryRepo, genreRepo),
		Titles:   service.NewTitleService(titleRepo, categoryRepo, genreRepo, ratingService),
		Reviews:  reviewService,
		Comments: service.NewCommentService(commentRepo, reviewService),
	}

	routerCfg := handler.RouterConfig{
		Pagination:   handler.Pagination{DefaultSize: cfg.PageSize, MaxSize: cfg.MaxPageSize},
		CORSOrigins:  cfg.CORSOrigins,
		IsProduction: cfg.IsProduction(),
		HealthCheck: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Log.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		routerCfg.AuthLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
			BlockTime:   cfg.RateLimitBlockTime,
			KeyPrefix:   "auth",
		})
		logger.Log.Info("Rate limiting enabled for auth endpoints",
			zap.Int("max_requests", cfg.RateLimitMaxRequests),
			zap.Duration("window", cfg.RateLimitWindow),
		)
	} else {
		logger.Log.Warn("REDIS_URL not set, auth endpoints are not rate limited")
	}

	router := handler.NewRouter(services, routerCfg)

	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server starting",
			zap.String("addr", cfg.ServerPort),
			zap.String("environment", cfg.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
}
