// Package db carries the schema migrations for every SQL backend.
package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies every pending up migration for driver. When dir is empty
// the embedded migrations are used, otherwise the files under dir/<driver>.
func Migrate(sqlDB *sql.DB, driver, dir string, logger *logrus.Logger) error {
	var (
		target database.Driver
		err    error
	)
	switch driver {
	case DriverPostgres:
		target, err = pgmigrate.WithInstance(sqlDB, &pgmigrate.Config{})
	case DriverSQLite:
		target, err = sqlitemigrate.WithInstance(sqlDB, &sqlitemigrate.Config{})
	default:
		return fmt.Errorf("no migrations for driver %q", driver)
	}
	if err != nil {
		return err
	}

	var m *migrate.Migrate
	if dir != "" {
		m, err = migrate.NewWithDatabaseInstance("file://"+filepath.ToSlash(filepath.Join(dir, driver)), driver, target)
	} else {
		src, sErr := iofs.New(migrations, "migrations/"+driver)
		if sErr != nil {
			return sErr
		}
		m, err = migrate.NewWithInstance("iofs", src, driver, target)
	}
	if err != nil {
		return err
	}

	if logger != nil {
		logger.WithField("driver", driver).Info("running migrations...")
	}
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		if logger != nil {
			logger.Info("no migrations to run")
		}
		return nil
	}
	return err
}
