package integrationtestutil

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/l3montree-dev/sbomguard/database"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// InitDatabaseContainer starts a postgres container, runs the embedded migrations
// and returns a connected gorm instance. The test is skipped in short mode.
func InitDatabaseContainer(t testing.TB) (shared.DB, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database integration test in short mode")
	}

	ctx := context.Background()

	dbName := "sbomguard"
	dbUser := "user"
	dbPassword := "password"

	postgresC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		postgres.BasicWaitStrategies(),
	)

	terminate := func() {
		if err := testcontainers.TerminateContainer(postgresC); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	if err != nil {
		t.Fatalf("failed to start postgres container: %s", err)
	}

	host, _ := postgresC.Host(ctx)
	port, _ := postgresC.MappedPort(ctx, "5432")

	pool, err := database.NewPgxConnPool(database.PoolConfig{
		User:            dbUser,
		Password:        dbPassword,
		Host:            host,
		Port:            port.Port(),
		DBName:          dbName,
		MaxOpenConns:    10,
		MinConns:        1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
	})
	if err != nil {
		terminate()
		t.Fatalf("failed to connect to database: %s", err)
	}

	db, err := database.NewGormDB(pool)
	if err != nil {
		pool.Close()
		terminate()
		t.Fatalf("failed to open gorm: %s", err)
	}

	if err := database.RunMigrationsWithDB(db); err != nil {
		pool.Close()
		terminate()
		t.Fatalf("failed to run migrations: %s", err)
	}

	return db, func() {
		pool.Close()
		terminate()
	}
}
