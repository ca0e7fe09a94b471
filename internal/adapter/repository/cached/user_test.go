package cached

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"user-rest-service/internal/adapter/cache"
	"user-rest-service/internal/adapter/repository/postgres"
	domain "user-rest-service/internal/domain/user"
	"user-rest-service/internal/usecase/user"
)

func setupCachedRepo(t *testing.T) (user.Repository, *miniredis.Miniredis) {
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
	return NewCachedUserRepository(postgres.NewUserRepoPG(db, log), userCache, log), mr
}

func TestGetByID_PopulatesCache(t *testing.T) {
	repo, mr := setupCachedRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{FirstName: "Ann", LastName: "Lee", Email: "ann@x.com"})
	require.NoError(t, err)

	// First read goes to the database and fills the cache
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", got.Email)
	assert.True(t, mr.Exists("user:"+created.ID))

	// Second read is served from the cache
	got, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	repo, mr := setupCachedRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{FirstName: "Ann", LastName: "Lee", Email: "ann@x.com", City: "Boston"})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists("user:"+created.ID))

	city := "Denver"
	updated, err := repo.Update(ctx, created.ID, domain.Patch{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Denver", updated.City)
	assert.False(t, mr.Exists("user:"+created.ID))

	// Re-read sees the new value, not a stale cache entry
	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Denver", got.City)
}

func TestDelete_InvalidatesCache(t *testing.T) {
	repo, mr := setupCachedRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{FirstName: "Ann", LastName: "Lee", Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists("user:"+created.ID))

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.False(t, mr.Exists("user:"+created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	assert.Error(t, err)
}
