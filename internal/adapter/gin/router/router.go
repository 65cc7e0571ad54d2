package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-crud-api/api/swagger"
	"user-crud-api/internal/adapter/gin/handler"
	"user-crud-api/internal/adapter/gin/middleware"
	"user-crud-api/internal/adapter/ratelimit"
	"user-crud-api/pkg/logger"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck is a named dependency check reported by GET /health
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *ratelimit.Limiter,
	checks []HealthCheck,
	log *zap.Logger,
) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.RateLimiter(rateLimiter))

	router.GET("/health", healthHandler(checks, log))
	router.GET("/swagger/*any", swaggerHandler())

	users := router.Group("/api/users")
	{
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.POST("", userHandler.CreateUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}

func healthHandler(checks []HealthCheck, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		code := http.StatusOK
		status := "healthy"
		results := make(gin.H, len(checks))
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				logger.WithContext(ctx, log).Warn("health check failed", zap.String("dependency", hc.Name), zap.Error(err))
				results[hc.Name] = err.Error()
				code = http.StatusServiceUnavailable
				status = "unhealthy"
				continue
			}
			results[hc.Name] = "ok"
		}

		c.JSON(code, gin.H{
			"status": status,
			"checks": results,
		})
	}
}

// swaggerHandler serves the embedded OpenAPI document next to the Swagger UI
func swaggerHandler() gin.HandlerFunc {
	ui := gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL("/swagger/" + swagger.FileName),
	))

	return func(c *gin.Context) {
		if c.Param("any") == "/"+swagger.FileName {
			c.Data(http.StatusOK, "application/json; charset=utf-8", swagger.Doc)
			return
		}
		ui(c)
	}
}
