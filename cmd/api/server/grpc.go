package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcmiddleware "user-crud-api/internal/adapter/grpc/middleware"
	"user-crud-api/internal/adapter/ratelimit"
	"user-crud-api/pkg/logger"
)

// SetupGRPC creates the gRPC server carrying the health service and reflection.
// The overall status and the named service both report SERVING.
func SetupGRPC(serviceName string, rateLimiter *ratelimit.Limiter, l *zap.Logger) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			grpcmiddleware.LoggingInterceptor(l),
			grpcmiddleware.RateLimitInterceptor(rateLimiter),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	l.Info("gRPC server configured", zap.String("health_service", serviceName))

	return grpcServer, healthServer
}
