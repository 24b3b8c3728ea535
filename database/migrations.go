package database

import (
	"embed"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
)

func getMigrator(gormDB shared.DB) (*migrate.Migrate, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return nil, err
	}

	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", source, "postgres", driver)
}

//go:embed migrations/*.sql
var migrationFiles embed.FS

// RunMigrationsWithDB runs all pending database migrations using an existing GORM database instance
func RunMigrationsWithDB(gormDB shared.DB) error {
	migrator, err := getMigrator(gormDB)
	if err != nil {
		return errors.Wrap(err, "failed to create migrator")
	}

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("no pending migrations")
			return nil
		}
		return errors.Wrap(err, "failed to run migrations")
	}

	slog.Info("migrations completed successfully")
	return nil
}

// RollbackMigrationWithDB reverts the most recent migration
func RollbackMigrationWithDB(gormDB shared.DB) error {
	migrator, err := getMigrator(gormDB)
	if err != nil {
		return errors.Wrap(err, "failed to create migrator")
	}
	if err := migrator.Steps(-1); err != nil {
		return errors.Wrap(err, "failed to roll back migration")
	}
	slog.Info("rolled back one migration")
	return nil
}

// GetMigrationVersionWithDB returns the current migration version using an existing GORM database instance
func GetMigrationVersionWithDB(gormDB shared.DB) (uint, bool, error) {
	migrator, err := getMigrator(gormDB)
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to create migrator")
	}
	return migrator.Version()
}
