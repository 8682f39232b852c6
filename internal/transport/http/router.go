package handlers

import (
	"strings"
	"time"

	"habithive/internal/application/usecase"
	"habithive/internal/transport/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(allowedOrigins string, auth *usecase.AuthUseCase, authHandler *AuthHandler, habitHandler *HabitHandler, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.Default()

	config := cors.DefaultConfig()
	config.AllowOrigins = strings.Split(allowedOrigins, ",")
	config.AllowCredentials = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", limiter.Limit("register", 5, 1*time.Minute), authHandler.Register)
			authGroup.POST("/login", limiter.Limit("login", 5, 1*time.Minute), authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
		}

		habits := api.Group("/habits")
		habits.Use(middleware.AuthMiddleware(auth))
		{
			habits.GET("", habitHandler.List)
			habits.POST("", habitHandler.Create)
			habits.POST("/:id/toggle", habitHandler.Toggle)
			habits.DELETE("/:id", habitHandler.Delete)
			habits.GET("/history", habitHandler.History)
			habits.GET("/stream", habitHandler.Stream)
		}
	}

	return r
}
