package container

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-hexagonal-users/config"
	dbmigrate "github.com/oksasatya/go-hexagonal-users/db"
	"github.com/oksasatya/go-hexagonal-users/internal/domain/repository"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-hexagonal-users/internal/infrastructure/postgres"
	"github.com/oksasatya/go-hexagonal-users/internal/infrastructure/sqlite"
)

// Storage is the repository pair selected by DB_DRIVER.
type Storage struct {
	Driver      string
	Users       repository.UserRepository
	Credentials repository.CredentialRepository
	ping        func(context.Context) error
	closers     []func()
}

// Ping checks the backend connection. The memory backend is always up.
func (s *Storage) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying connections.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStorage connects to the configured backend and applies its migrations.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Storage, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, logger)
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return &Storage{
			Driver:      config.DriverMemory,
			Users:       memory.NewUserRepository(),
			Credentials: memory.NewCredentialRepository(),
		}, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Storage, error) {
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	sqlDB, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer func() { _ = sqlDB.Close() }()
	if err := dbmigrate.Migrate(sqlDB, dbmigrate.DriverPostgres, cfg.MigrationsDir, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}

	return &Storage{
		Driver:      config.DriverPostgres,
		Users:       pginfra.NewUserRepository(pool),
		Credentials: pginfra.NewCredentialRepository(pool),
		ping:        pool.Ping,
		closers:     []func(){pool.Close},
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Storage, error) {
	sqlDB, err := sqlite.Open(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := dbmigrate.Migrate(sqlDB, dbmigrate.DriverSQLite, cfg.MigrationsDir, logger); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &Storage{
		Driver:      config.DriverSQLite,
		Users:       sqlite.NewUserRepository(sqlDB),
		Credentials: sqlite.NewCredentialRepository(sqlDB),
		ping:        sqlDB.PingContext,
		closers:     []func(){func() { _ = sqlDB.Close() }},
	}, nil
}
