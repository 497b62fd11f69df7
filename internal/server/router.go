package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campusworks/advisor-backend/internal/handlers"
)

type RouterConfig struct {
	RecommendationHandler *handlers.RecommendationHandler
	ChatHandler           *handlers.ChatHandler
	AllowOrigins          []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		students := api.Group("/students/:id")
		students.GET("/recommendations", cfg.RecommendationHandler.Get)
		students.POST("/recommendations/refresh", cfg.RecommendationHandler.Refresh)
		students.POST("/recommendations/pending", cfg.RecommendationHandler.Propose)
		students.POST("/recommendations/pending/apply", cfg.RecommendationHandler.ApplyPending)
		students.POST("/chat", cfg.ChatHandler.Chat)
	}

	return router
}
