package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/sbomguard/shared"
	"go.uber.org/fx"
)

func newPool(lc fx.Lifecycle, cfg PoolConfig) (*pgxpool.Pool, error) {
	pool, err := NewPgxConnPool(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

func newBroker(lc fx.Lifecycle, pool *pgxpool.Pool) *PostgreSQLBroker {
	broker := NewPostgreSQLBroker(pool)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			broker.Close()
			return nil
		},
	})
	return broker
}

var Module = fx.Module("database",
	fx.Provide(GetPoolConfigFromEnv),
	fx.Provide(newPool),
	fx.Provide(NewGormDB),
	fx.Provide(fx.Annotate(newBroker, fx.As(new(shared.PubSubBroker)))),
)
