// Copyright (C) 2024 Tim Bastin, l3montree GmbH
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package commands

import (
	"fmt"

	"github.com/l3montree-dev/sbomguard/database"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	migrate := cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrate.AddCommand(
		newMigrationCommand("up", "Apply all pending migrations", database.RunMigrationsWithDB),
		newMigrationCommand("down", "Revert the most recent migration", database.RollbackMigrationWithDB),
		newMigrationCommand("version", "Print the current schema version", printMigrationVersion),
	)
	return &migrate
}

func newMigrationCommand(use, short string, fn func(db shared.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			shared.LoadConfig() // nolint
			db, closeDB, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDB()
			return fn(db)
		},
	}
}

func printMigrationVersion(db shared.DB) error {
	version, dirty, err := database.GetMigrationVersionWithDB(db)
	if err != nil {
		return err
	}
	fmt.Printf("version: %d dirty: %t\n", version, dirty)
	return nil
}

func openDatabase() (shared.DB, func(), error) {
	cfg, err := database.GetPoolConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}
	pool, err := database.NewPgxConnPool(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	db, err := database.NewGormDB(pool)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return db, pool.Close, nil
}
