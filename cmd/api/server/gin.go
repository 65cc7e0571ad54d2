package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ginhandler "user-crud-api/internal/adapter/gin/handler"
	ginrouter "user-crud-api/internal/adapter/gin/router"
	"user-crud-api/internal/adapter/ratelimit"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(
	handler *ginhandler.UserHandler,
	rateLimiter *ratelimit.Limiter,
	checks []ginrouter.HealthCheck,
	ginAddr string,
	production bool,
	l *zap.Logger,
) *http.Server {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := ginrouter.SetupRouter(handler, rateLimiter, checks, l)

	l.Info("Gin REST API configured",
		zap.String("address", ginAddr),
		zap.String("swagger", "/swagger/index.html"),
	)

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
