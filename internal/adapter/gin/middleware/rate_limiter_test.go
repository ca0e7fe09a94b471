package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func setupLimitedRouter(t *testing.T, cfg RateLimiterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.Use(RateLimiter(client, cfg, zaptest.NewLogger(t)))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func get(r *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	r := setupLimitedRouter(t, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     3,
		Enabled:           true,
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r))
	}
}

func TestRateLimiter_DeniesBeyondBurst(t *testing.T) {
	r := setupLimitedRouter(t, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     2,
		Enabled:           true,
	})

	assert.Equal(t, http.StatusOK, get(r))
	assert.Equal(t, http.StatusOK, get(r))
	assert.Equal(t, http.StatusTooManyRequests, get(r))
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	r := setupLimitedRouter(t, RateLimiterConfig{Enabled: false})

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, get(r))
	}
}

func TestRateLimiter_NilClientFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimiter(nil, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t)))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	assert.Equal(t, http.StatusOK, get(r))
	assert.Equal(t, http.StatusOK, get(r))
}
