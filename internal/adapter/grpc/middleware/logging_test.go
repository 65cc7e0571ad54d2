package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "user-crud-api/pkg/errors"
	"user-crud-api/pkg/logger"
)

func TestLoggingInterceptor(t *testing.T) {
	tests := []struct {
		name      string
		handler   grpc.UnaryHandler
		wantCode  codes.Code
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{
			name:      "ok",
			handler:   okHandler,
			wantCode:  codes.OK,
			wantLevel: zapcore.InfoLevel,
			wantMsg:   "rpc completed",
		},
		{
			name: "not found",
			handler: func(context.Context, any) (any, error) {
				return nil, apperrors.NewUserNotFoundError(7)
			},
			wantCode:  codes.NotFound,
			wantLevel: zapcore.WarnLevel,
			wantMsg:   "rpc rejected",
		},
		{
			name: "status error passes through",
			handler: func(context.Context, any) (any, error) {
				return nil, status.Error(codes.ResourceExhausted, "slow down")
			},
			wantCode:  codes.ResourceExhausted,
			wantLevel: zapcore.WarnLevel,
			wantMsg:   "rpc rejected",
		},
		{
			name: "plain error is internal",
			handler: func(context.Context, any) (any, error) {
				return nil, errors.New("boom")
			},
			wantCode:  codes.Internal,
			wantLevel: zapcore.ErrorLevel,
			wantMsg:   "rpc failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			interceptor := LoggingInterceptor(zap.New(core))
			ctx := logger.ContextWithRequestID(context.Background(), "req-9")

			_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: healthCheckMethod}, tt.handler)
			assert.Equal(t, tt.wantCode, status.Code(err))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
		})
	}
}
