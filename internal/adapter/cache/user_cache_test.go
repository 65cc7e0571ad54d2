package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-crud-api/internal/domain/user"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedisUserCache_Set_Success(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	user := &domain.User{ID: 1, Name: "John Doe", Email: "john@example.com"}
	require.NoError(t, cache.Set(context.Background(), user))

	raw, err := mr.Get(Key(1))
	require.NoError(t, err)

	var cached domain.User
	require.NoError(t, json.Unmarshal([]byte(raw), &cached))
	assert.Equal(t, *user, cached)
	assert.Equal(t, 5*time.Minute, mr.TTL(Key(1)))
}

func TestRedisUserCache_Set_NilUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	err := cache.Set(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot cache nil user")
}

func TestRedisUserCache_Get_Hit(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	user := &domain.User{ID: 7, Name: "Jane", Email: "jane@example.com"}
	require.NoError(t, cache.Set(ctx, user))

	got, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestRedisUserCache_Get_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	got, err := cache.Get(context.Background(), 404)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Get_Expired(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Second, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.User{ID: 1, Name: "John"}))
	mr.FastForward(2 * time.Second)

	got, err := cache.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_Get_CorruptedPayload(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set(Key(3), "{not json"))

	got, err := cache.Get(context.Background(), 3)
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode cached user 3")
}

func TestRedisUserCache_Delete(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.User{ID: 1, Name: "John"}))
	require.NoError(t, cache.Delete(ctx, 1))
	assert.False(t, mr.Exists(Key(1)))

	// deleting an absent key is not an error
	assert.NoError(t, cache.Delete(ctx, 1))
}

func TestRedisUserCache_RedisErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()
	boom := errors.New("connection reset")

	mock.ExpectGet(Key(1)).SetErr(boom)
	got, err := cache.Get(ctx, 1)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, boom)

	mock.ExpectDel(Key(1)).SetErr(boom)
	assert.ErrorIs(t, cache.Delete(ctx, 1), boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}
