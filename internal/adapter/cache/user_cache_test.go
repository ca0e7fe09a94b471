package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-rest-service/internal/domain/user"
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

const testID = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

func testUser() *domain.User {
	return &domain.User{
		ID:        testID,
		FirstName: "Ann",
		LastName:  "Lee",
		Email:     "ann@x.com",
		City:      "Boston",
		Role:      domain.RoleUser,
	}
}

func TestRedisUserCache_SetAndGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testUser()))

	got, err := cache.Get(ctx, testID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ann@x.com", got.Email)
	assert.Equal(t, domain.RoleUser, got.Role)
}

func TestRedisUserCache_GetMissReturnsNil(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	got, err := cache.Get(context.Background(), "unknown-id")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_SetNilUser(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))

	assert.Error(t, cache.Set(context.Background(), nil))
}

func TestRedisUserCache_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewRedisUserCache(client, 5*time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testUser()))
	require.NoError(t, cache.Delete(ctx, testID))

	got, err := cache.Get(ctx, testID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_TTLExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testUser()))

	mr.FastForward(2 * time.Minute)

	got, err := cache.Get(ctx, testID)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisUserCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewRedisUserCache(client, time.Minute, zaptest.NewLogger(t))

	require.NoError(t, mr.Set("user:"+testID, "not json"))

	_, err := cache.Get(context.Background(), testID)
	assert.Error(t, err)

	var js *json.SyntaxError
	assert.ErrorAs(t, err, &js)
}
