package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/l3montree-dev/sbomguard/monitoring"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// sentryLogger forwards database errors to the error tracking
type sentryLogger struct {
	defaultLogger logger.Interface
}

func (s *sentryLogger) LogMode(level logger.LogLevel) logger.Interface {
	var newDefault logger.Interface
	if s.defaultLogger != nil {
		newDefault = s.defaultLogger.LogMode(level)
	}
	return &sentryLogger{defaultLogger: newDefault}
}

func (s *sentryLogger) Info(ctx context.Context, msg string, data ...any) {
	s.defaultLogger.Info(ctx, msg, data...)
}

func (s *sentryLogger) Warn(ctx context.Context, msg string, data ...any) {
	s.defaultLogger.Warn(ctx, msg, data...)
}

func (s *sentryLogger) Error(ctx context.Context, msg string, data ...any) {
	s.alert(msg, data...)
	s.defaultLogger.Error(ctx, msg, data...)
}

func (s *sentryLogger) alert(msg string, data ...any) {
	if len(data) == 0 {
		monitoring.Alert(msg, nil)
		return
	}
	if err, ok := data[0].(error); ok {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, context.Canceled) {
			return
		}
		monitoring.Alert(msg, err)
		return
	}
	monitoring.Alert(msg, fmt.Errorf("%v", data[0]))
}

func (s *sentryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !IsDuplicateKeyError(err) {
		s.alert("Database error", err)
	}
	s.defaultLogger.Trace(ctx, begin, fc, err)
}

// getDSN builds a PostgreSQL connection string from parameters
func getDSN(host, user, password, dbname, port string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     host + ":" + port,
		Path:     "/" + dbname,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func NewPgxConnPool(cfg PoolConfig) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(getDSN(cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse pgx pool config")
	}
	config.MaxConnIdleTime = cfg.ConnMaxIdleTime
	config.MaxConnLifetime = cfg.ConnMaxLifetime
	config.MaxConns = cfg.MaxOpenConns
	config.MinConns = cfg.MinConns
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, errors.Wrap(err, "could not create pgx pool")
	}

	slog.Info("Database connection pool configured",
		"maxOpenConns", cfg.MaxOpenConns,
		"connMaxLifetime", cfg.ConnMaxLifetime,
		"connMaxIdleTime", cfg.ConnMaxIdleTime,
	)

	return pool, nil
}

// NewGormDB creates a GORM instance using an existing *pgxpool.Pool
func NewGormDB(existingPool *pgxpool.Pool) (*gorm.DB, error) {
	db := stdlib.OpenDBFromPool(existingPool)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: &sentryLogger{
			defaultLogger: logger.Default.LogMode(logger.Warn),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not open gorm connection")
	}

	if err := gormDB.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, errors.Wrap(err, "could not register tracing plugin")
	}

	return gormDB, nil
}

func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
