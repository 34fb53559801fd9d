package container_test

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-hexagonal-users/config"
	"github.com/oksasatya/go-hexagonal-users/internal/container"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/repotest"
)

func TestOpenStorage(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	for _, driver := range []string{config.DriverSQLite, config.DriverMemory} {
		t.Run(driver, func(t *testing.T) {
			s, err := container.OpenStorage(ctx, &config.Config{DBDriver: driver, SQLitePath: ":memory:"}, logger)
			require.NoError(t, err)
			t.Cleanup(s.Close)
			assert.Equal(t, driver, s.Driver)
			require.NoError(t, s.Ping(ctx))

			u := repotest.NewUser(t, "john@doe.com", "John Doe", 32)
			require.NoError(t, s.Users.Insert(ctx, u))
			require.NoError(t, s.Credentials.SavePassword(ctx, u.ID(), "hash"))
			hash, found, err := s.Credentials.FindPasswordHash(ctx, u.ID())
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "hash", hash)
		})
	}
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := container.OpenStorage(context.Background(), &config.Config{DBDriver: "oracle"}, logger)
	assert.Error(t, err)
}
