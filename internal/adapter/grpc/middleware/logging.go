package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	apperrors "user-crud-api/pkg/errors"
	"user-crud-api/pkg/logger"
)

// LoggingInterceptor logs every unary call and converts handler errors
// into gRPC statuses.
func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		st := apperrors.ToGRPCStatus(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", st.Code().String()),
			zap.Duration("latency", time.Since(start)),
		}

		l := logger.WithContext(ctx, log)
		switch st.Code() {
		case codes.OK:
			l.Info("rpc completed", fields...)
			return resp, nil
		case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
			l.Error("rpc failed", append(fields, zap.Error(err))...)
		default:
			l.Warn("rpc rejected", append(fields, zap.String("message", st.Message()))...)
		}

		return nil, st.Err()
	}
}
