package middleware

import (
	"context"
	"net"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"user-crud-api/internal/adapter/ratelimit"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

func setupInterceptor(t *testing.T, burst int, enabled bool) (grpc.UnaryServerInterceptor, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	// a near-zero refill rate keeps the bucket from refilling mid-test
	limiter := ratelimit.NewLimiter(client, ratelimit.Config{
		RequestsPerSecond: 0.001,
		BurstCapacity:     burst,
		Enabled:           enabled,
	}, zaptest.NewLogger(t))

	return RateLimitInterceptor(limiter), mr
}

func peerContext(t *testing.T, addr string) context.Context {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	require.NoError(t, err)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: tcpAddr})
}

func okHandler(context.Context, any) (any, error) {
	return "success", nil
}

func TestRateLimitInterceptor_WithinBurst(t *testing.T) {
	interceptor, _ := setupInterceptor(t, 5, true)
	ctx := peerContext(t, "127.0.0.1:12345")
	info := &grpc.UnaryServerInfo{FullMethod: healthCheckMethod}

	for i := 0; i < 5; i++ {
		resp, err := interceptor(ctx, nil, info, okHandler)
		require.NoError(t, err)
		assert.Equal(t, "success", resp)
	}
}

func TestRateLimitInterceptor_ExceedsBurst(t *testing.T) {
	interceptor, _ := setupInterceptor(t, 3, true)
	ctx := peerContext(t, "127.0.0.1:12345")
	info := &grpc.UnaryServerInfo{FullMethod: healthCheckMethod}

	for i := 0; i < 3; i++ {
		_, err := interceptor(ctx, nil, info, okHandler)
		require.NoError(t, err)
	}

	resp, err := interceptor(ctx, nil, info, okHandler)
	require.Error(t, err)
	assert.Nil(t, resp)

	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.ResourceExhausted, st.Code())
	assert.Contains(t, st.Message(), "Rate limit exceeded")
}

func TestRateLimitInterceptor_Disabled(t *testing.T) {
	interceptor, _ := setupInterceptor(t, 1, false)
	ctx := peerContext(t, "127.0.0.1:12345")
	info := &grpc.UnaryServerInfo{FullMethod: healthCheckMethod}

	for i := 0; i < 10; i++ {
		_, err := interceptor(ctx, nil, info, okHandler)
		require.NoError(t, err)
	}
}

func TestRateLimitInterceptor_SeparateBuckets(t *testing.T) {
	tests := []struct {
		name   string
		first  context.Context
		second context.Context
		method string
	}{
		{
			name:   "different peers",
			first:  peerContext(t, "192.168.1.1:12345"),
			second: peerContext(t, "192.168.1.2:12345"),
			method: healthCheckMethod,
		},
		{
			name:   "different forwarded clients",
			first:  metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-forwarded-for", "203.0.113.1")),
			second: metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-forwarded-for", "203.0.113.2")),
			method: healthCheckMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interceptor, _ := setupInterceptor(t, 1, true)
			info := &grpc.UnaryServerInfo{FullMethod: tt.method}

			_, err := interceptor(tt.first, nil, info, okHandler)
			require.NoError(t, err)
			_, err = interceptor(tt.first, nil, info, okHandler)
			require.Error(t, err)

			_, err = interceptor(tt.second, nil, info, okHandler)
			assert.NoError(t, err)
		})
	}
}

func TestRateLimitInterceptor_SeparateMethods(t *testing.T) {
	interceptor, _ := setupInterceptor(t, 1, true)
	ctx := peerContext(t, "127.0.0.1:12345")

	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: healthCheckMethod}, okHandler)
	require.NoError(t, err)

	_, err = interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/List"}, okHandler)
	assert.NoError(t, err)
}

func TestRateLimitInterceptor_BucketKey(t *testing.T) {
	interceptor, mr := setupInterceptor(t, 2, true)
	ctx := peerContext(t, "127.0.0.1:12345")

	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: healthCheckMethod}, okHandler)
	require.NoError(t, err)

	key := "ratelimit:tb:" + healthCheckMethod + ":127.0.0.1"
	ttl := mr.TTL(key)
	assert.Greater(t, ttl.Seconds(), 0.0)
	assert.LessOrEqual(t, ttl.Seconds(), 60.0)
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "unknown", clientIP(context.Background()))
	assert.Equal(t, "10.0.0.1", clientIP(peerContext(t, "10.0.0.1:80")))
	assert.Equal(t, "::1", clientIP(peerContext(t, "[::1]:80")))

	md := metadata.Pairs("x-real-ip", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(metadata.NewIncomingContext(context.Background(), md)))
}

func TestRateLimitInterceptor_SameIPDifferentPortsShareBucket(t *testing.T) {
	interceptor, _ := setupInterceptor(t, 1, true)
	info := &grpc.UnaryServerInfo{FullMethod: healthCheckMethod}

	_, err := interceptor(peerContext(t, "192.168.1.1:40000"), nil, info, okHandler)
	require.NoError(t, err)

	_, err = interceptor(peerContext(t, "192.168.1.1:40001"), nil, info, okHandler)
	require.Error(t, err)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}
