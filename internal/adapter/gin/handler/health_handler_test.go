package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

func setupHealth(t *testing.T, db *gorm.DB, cache Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(db, cache, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/health", h.Check)
	return r
}

func openDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func decodeHealth(t *testing.T, body []byte) map[string]any {
	var resp map[string]any
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestHealthCheck_AllStoresUp(t *testing.T) {
	r := setupHealth(t, openDB(t), stubPinger{})

	w := doJSON(r, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeHealth(t, w.Body.Bytes())
	assert.Equal(t, "healthy", resp["status"])
	checks := resp["checks"].(map[string]any)
	assert.Equal(t, "up", checks["database"])
	assert.Equal(t, "up", checks["cache"])
}

func TestHealthCheck_DatabaseDownIs503(t *testing.T) {
	db := openDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	r := setupHealth(t, db, nil)

	w := doJSON(r, "GET", "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := decodeHealth(t, w.Body.Bytes())
	assert.Equal(t, "unhealthy", resp["status"])
	checks := resp["checks"].(map[string]any)
	assert.Equal(t, "down", checks["database"])
}

func TestHealthCheck_CacheDownStaysHealthy(t *testing.T) {
	r := setupHealth(t, openDB(t), stubPinger{err: errors.New("connection refused")})

	w := doJSON(r, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeHealth(t, w.Body.Bytes())
	assert.Equal(t, "healthy", resp["status"])
	checks := resp["checks"].(map[string]any)
	assert.Equal(t, "down", checks["cache"])
}

func TestHealthCheck_NoCacheConfigured(t *testing.T) {
	r := setupHealth(t, openDB(t), nil)

	w := doJSON(r, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	checks := decodeHealth(t, w.Body.Bytes())["checks"].(map[string]any)
	_, present := checks["cache"]
	assert.False(t, present)
}
