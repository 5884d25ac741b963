package handlers

import (
	"net/http"
	"time"

	"kanban-board/backend/internal/config"
	"kanban-board/backend/internal/middleware"
	"kanban-board/backend/internal/services"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewRouter assembles the HTTP surface: request id and logging middleware,
// CORS, rate limiting, the auth gate on the card resource, and the routes.
func NewRouter(db *gorm.DB, cards services.CardService, auth *services.AuthService, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(zap.L(), true))

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORS.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.Burst))
	}

	router.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := NewAuthHandler(auth)
	cardHandler := NewCardHandler(cards)

	api := router.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	cardRoutes := api.Group("/cards")
	cardRoutes.Use(middleware.AuthOrReadOnly(auth))
	{
		cardRoutes.GET("", cardHandler.ListCards)
		cardRoutes.POST("", cardHandler.CreateCard)
		cardRoutes.GET("/:id", cardHandler.GetCard)
		cardRoutes.PUT("/:id", cardHandler.UpdateCard)
		cardRoutes.PATCH("/:id", cardHandler.UpdateCard)
		cardRoutes.DELETE("/:id", cardHandler.DeleteCard)
		cardRoutes.POST("/:id/restore", cardHandler.RestoreCard)
	}

	return router
}
