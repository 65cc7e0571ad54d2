package middleware

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-crud-api/internal/adapter/ratelimit"
)

// RateLimitInterceptor returns a gRPC unary interceptor that applies the
// token bucket per method and client IP.
func RateLimitInterceptor(limiter *ratelimit.Limiter) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !limiter.Enabled() {
			return handler(ctx, req)
		}

		key := info.FullMethod + ":" + clientIP(ctx)
		if !limiter.Allow(ctx, key) {
			return nil, status.Error(codes.ResourceExhausted, limiter.ExceededMessage())
		}

		return handler(ctx, req)
	}
}

// clientIP extracts the client IP from the gRPC context. The peer port is
// dropped so reconnecting clients keep their bucket.
func clientIP(ctx context.Context) string {
	// Proxies put the original client in metadata
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if xff := md.Get("x-forwarded-for"); len(xff) > 0 {
			return xff[0]
		}
		if xri := md.Get("x-real-ip"); len(xri) > 0 {
			return xri[0]
		}
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		addr := p.Addr.String()
		if host, _, err := net.SplitHostPort(addr); err == nil {
			return host
		}
		return addr
	}

	return "unknown"
}
