package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"user-rest-service/internal/adapter/cache"
	"user-rest-service/internal/adapter/gin/handler"
	"user-rest-service/internal/adapter/gin/middleware"
	"user-rest-service/internal/adapter/gin/router"
	"user-rest-service/internal/adapter/repository/cached"
	"user-rest-service/internal/adapter/repository/postgres"
	"user-rest-service/internal/usecase/user"
)

// setupAPI wires the full stack the way the container does, with an
// in-memory database and miniredis standing in for the external stores.
func setupAPI(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&postgres.UserSchema{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	userCache := cache.NewRedisUserCache(rdb, 5*time.Minute, log)
	repo := cached.NewCachedUserRepository(postgres.NewUserRepoPG(db, log), userCache, log)
	uc := user.New(repo, log)
	h := handler.NewUserHandler(uc, log)
	hh := handler.NewHealthHandler(db, redisPinger{rdb}, log)

	return router.SetupRouter(h, hh, rdb, middleware.RateLimiterConfig{Enabled: false}, log)
}

type redisPinger struct {
	c *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.c.Ping(ctx).Err()
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeUser(t *testing.T, w *httptest.ResponseRecorder) handler.UserResponse {
	var u handler.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &u))
	return u
}

func decodeUsers(t *testing.T, w *httptest.ResponseRecorder) []handler.UserResponse {
	var us []handler.UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &us))
	return us
}

func TestUserLifecycle(t *testing.T) {
	r := setupAPI(t)

	// Create: role defaults to user, id is generated
	w := doJSON(t, r, "POST", "/users", map[string]string{
		"firstName": "Ann",
		"lastName":  "Lee",
		"email":     "ann@x.com",
		"city":      "Boston",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	ann := decodeUser(t, w)
	assert.NotEmpty(t, ann.ID)
	assert.Equal(t, "user", ann.Role)

	// Filter by city substring, case-insensitive
	w = doJSON(t, r, "GET", "/users/city/bos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decodeUsers(t, w)
	require.Len(t, found, 1)
	assert.Equal(t, ann.ID, found[0].ID)

	// Partial update changes only the patched field
	w = doJSON(t, r, "PATCH", "/users/"+ann.ID, map[string]string{"city": "Denver"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeUser(t, w)
	assert.Equal(t, "Denver", updated.City)
	assert.Equal(t, "Ann", updated.FirstName)

	// Fetch reflects the update (through the cache layer)
	w = doJSON(t, r, "GET", "/users/"+ann.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Denver", decodeUser(t, w).City)

	// Delete, then the record is gone everywhere
	w = doJSON(t, r, "DELETE", "/users/"+ann.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, "GET", "/users/"+ann.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "GET", "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeUsers(t, w))
}

func TestDuplicateEmailConflict(t *testing.T) {
	r := setupAPI(t)

	payload := map[string]string{
		"firstName": "Ann",
		"lastName":  "Lee",
		"email":     "ann@x.com",
	}

	w := doJSON(t, r, "POST", "/users", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	payload["firstName"] = "Other"
	w = doJSON(t, r, "POST", "/users", payload)
	assert.Equal(t, http.StatusConflict, w.Code)

	// No second row was added
	w = doJSON(t, r, "GET", "/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeUsers(t, w), 1)
}

func TestRoleFiltering(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, "POST", "/users", map[string]string{
		"firstName": "Root", "lastName": "Admin", "email": "root@x.com", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, "POST", "/users", map[string]string{
		"firstName": "Ann", "lastName": "Lee", "email": "ann@x.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "GET", "/users/role/admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	admins := decodeUsers(t, w)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@x.com", admins[0].Email)

	// Unknown role values are rejected, not treated as empty filters
	w = doJSON(t, r, "GET", "/users/role/superuser", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFilterMissIs404(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, "GET", "/users/city/Atlantis", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	r := setupAPI(t)

	w := doJSON(t, r, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])

	checks := resp["checks"].(map[string]any)
	assert.Equal(t, "up", checks["database"])
	assert.Equal(t, "up", checks["cache"])
}
