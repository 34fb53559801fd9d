package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/cache"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/memory"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/repotest"
)

func newCache(t *testing.T) (*cache.UserRepository, *memory.UserRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := memory.NewUserRepository()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return cache.NewUserRepository(inner, rdb, time.Minute, logger), inner, mr
}

func TestUserRepository_Contract(t *testing.T) {
	repotest.RunUserRepository(t, func(t *testing.T) repository.UserRepository {
		r, _, _ := newCache(t)
		return r
	})
}

func TestUserRepository_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	r, inner, mr := newCache(t)
	u := repotest.NewUser(t, "john@doe.com", "John Doe", 32)
	require.NoError(t, r.Insert(ctx, u))

	_, found, err := r.FindByID(ctx, u.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, mr.Exists("user:id:"+u.ID().String()))
	assert.True(t, mr.Exists("user:email:john@doe.com"))

	// gone from the store, still served from the cache
	require.NoError(t, inner.DeleteBy(ctx, u.ID()))
	got, found, err := r.FindByID(ctx, u.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "John Doe", got.FullName().String())

	got, found, err = r.FindByEmail(ctx, u.EmailAddress())
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Equals(u))
}

func TestUserRepository_WritesEvict(t *testing.T) {
	ctx := context.Background()
	r, _, mr := newCache(t)
	u := repotest.NewUser(t, "john@doe.com", "John Doe", 32)
	require.NoError(t, r.Insert(ctx, u))
	_, _, err := r.FindByID(ctx, u.ID())
	require.NoError(t, err)

	email, _ := entity.EmailAddressFrom("jane@doe.com")
	require.NoError(t, u.ChangeDetails(entity.DetailsChange{EmailAddress: &email}))
	_, err = r.ChangeDetails(ctx, u)
	require.NoError(t, err)

	assert.False(t, mr.Exists("user:id:"+u.ID().String()))
	assert.False(t, mr.Exists("user:email:john@doe.com"))

	old, _ := entity.EmailAddressFrom("john@doe.com")
	_, found, err := r.FindByEmail(ctx, old)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, r.DeleteBy(ctx, u.ID()))
	_, found, err = r.FindByID(ctx, u.ID())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUserRepository_RedisDownFallsThrough(t *testing.T) {
	ctx := context.Background()
	r, _, mr := newCache(t)
	u := repotest.NewUser(t, "john@doe.com", "John Doe", 32)
	require.NoError(t, r.Insert(ctx, u))

	mr.Close()

	got, found, err := r.FindByID(ctx, u.ID())
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Equals(u))
}
