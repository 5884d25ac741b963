package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kanban-board/backend/internal/cache"
	"kanban-board/backend/internal/config"
	"kanban-board/backend/internal/database"
	"kanban-board/backend/internal/handlers"
	"kanban-board/backend/internal/repositories"
	"kanban-board/backend/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func setupLogger() *zap.Logger {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := logConfig.Build()
	return logger
}

func main() {
	logger := setupLogger()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("failed to load configuration", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		zap.L().Fatal("failed to initialise database", zap.Error(err))
	}
	sqlDB, _ := db.DB()

	cardRepo := repositories.NewCardRepository(db)
	cardService := services.NewCardService(cardRepo)
	authService := services.NewAuthService(
		cfg.Auth.JWTSecret,
		cfg.Auth.Username,
		cfg.Auth.PasswordHash,
		cfg.Auth.TokenTTL,
	)

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		cacheConfig := cache.DefaultCacheConfig()
		cacheConfig.Addr = cfg.GetRedisAddr()
		cacheConfig.Password = cfg.Redis.Password
		cacheConfig.DB = cfg.Redis.DB

		redisCache = cache.NewRedisCache(cacheConfig)
		if err := redisCache.Health(); err != nil {
			zap.L().Warn("redis unreachable, running without cache", zap.Error(err))
			redisCache.Close()
			redisCache = nil
		} else {
			cardService = services.NewCachedCardService(cardService, redisCache)
			zap.L().Info("card cache enabled", zap.String("addr", cfg.GetRedisAddr()))
		}
	}

	router := handlers.NewRouter(db, cardService, authService, cfg)

	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		zap.L().Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	zap.L().Info("shutdown initiated", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("error shutting down server", zap.Error(err))
	}

	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			zap.L().Error("error closing redis", zap.Error(err))
		}
	}

	if sqlDB != nil {
		if err := sqlDB.Close(); err != nil {
			zap.L().Error("error closing database", zap.Error(err))
		}
	}

	zap.L().Info("server stopped")
}
