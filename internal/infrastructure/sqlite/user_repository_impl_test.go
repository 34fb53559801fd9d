package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/db"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/entity"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/repotest"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/sqlite"
)

// setupTestDB opens an in-memory database with every migration applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(sqlDB, db.DriverSQLite, "", nil))
	return sqlDB
}

func TestUserRepository(t *testing.T) {
	repotest.RunUserRepository(t, func(t *testing.T) repository.UserRepository {
		return sqlite.NewUserRepository(setupTestDB(t))
	})
}

func TestCredentialRepository(t *testing.T) {
	repotest.RunCredentialRepository(t, func(t *testing.T) (repository.CredentialRepository, func(*entity.User)) {
		sqlDB := setupTestDB(t)
		users := sqlite.NewUserRepository(sqlDB)
		return sqlite.NewCredentialRepository(sqlDB), func(u *entity.User) {
			require.NoError(t, users.Insert(context.Background(), u))
		}
	})
}

func TestUserRepository_WithoutEmail(t *testing.T) {
	ctx := context.Background()
	r := sqlite.NewUserRepository(setupTestDB(t))

	name, _ := entity.FullNameFrom("John Doe")
	age, _ := entity.AgeFrom(32)
	for i := 0; i < 2; i++ {
		u, err := entity.From(entity.GenerateUserID(), name, age)
		require.NoError(t, err)
		require.NoError(t, r.Insert(ctx, u))
	}

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[0].HasEmailAddress())
}

func TestUserRepository_DeleteCascadesCredentials(t *testing.T) {
	ctx := context.Background()
	sqlDB := setupTestDB(t)
	users := sqlite.NewUserRepository(sqlDB)
	creds := sqlite.NewCredentialRepository(sqlDB)

	u := repotest.NewUser(t, "john@doe.com", "John Doe", 32)
	require.NoError(t, users.Insert(ctx, u))
	require.NoError(t, creds.SavePassword(ctx, u.ID(), "hash"))
	require.NoError(t, users.DeleteBy(ctx, u.ID()))

	_, found, err := creds.FindPasswordHash(ctx, u.ID())
	require.NoError(t, err)
	assert.False(t, found)
}
