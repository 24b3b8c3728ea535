// Copyright (C) 2025 l3montree GmbH
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

package router

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/l3montree-dev/sbomguard/cmd/sbomguard/api"
	"github.com/l3montree-dev/sbomguard/database"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type APIV1Router struct {
	*echo.Group
}

type healthChecker interface {
	IsHealthy(ctx context.Context) bool
}

func NewAPIV1Router(srv api.Server,
	db shared.DB,
	pool *pgxpool.Pool,
	poolCfg database.PoolConfig,
	broker shared.PubSubBroker,
	cfg shared.Config,
) APIV1Router {
	apiV1Router := srv.Echo.Group("/api/v1")

	apiV1Router.GET("/info/", func(c echo.Context) error {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		resp := InfoResponse{
			Build: BuildInfo{
				Version:   shared.Version,
				Commit:    shared.Commit,
				Branch:    shared.Branch,
				BuildDate: shared.BuildDate,
			},
			Runtime: RuntimeInfo{
				GoVersion:     runtime.Version(),
				NumGoroutines: runtime.NumGoroutine(),
				HeapAlloc:     mem.HeapAlloc,
				Sys:           mem.Sys,
			},
			Pipeline: pipelineInfo(cfg),
			Process: ProcessInfo{
				PID:           os.Getpid(),
				UptimeSeconds: int(time.Since(api.StartedAt).Seconds()),
			},
			Database: databaseInfo(c.Request().Context(), db, pool, poolCfg),
		}

		if host, _ := os.Hostname(); host != "" {
			resp.Process.Hostname = host
		}

		return c.JSON(http.StatusOK, resp)
	})

	apiV1Router.GET("/health/", func(ctx echo.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "failed to get database instance",
			})
		}

		if err := sqlDB.PingContext(ctx.Request().Context()); err != nil {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "database ping failed",
			})
		}

		if checker, ok := broker.(healthChecker); ok && !checker.IsHealthy(ctx.Request().Context()) {
			return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  "broker is not listening",
			})
		}

		return ctx.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// prometheus scrapes outside of the versioned api
	srv.Echo.GET("/metrics/", echo.WrapHandler(promhttp.Handler()))

	return APIV1Router{
		Group: apiV1Router,
	}
}

func pipelineInfo(cfg shared.Config) PipelineInfo {
	return PipelineInfo{
		VulnerabilityDatabase: cfg.OSVAPIURL,
		RateLimit:             cfg.OSVRateLimit,
		MaxAttempts:           cfg.OSVMaxAttempts,
		Concurrency:           cfg.CorrelationConcurrency,
		MaxFailureRatio:       cfg.CorrelationMaxFailureRatio,
		SeverityPrecedence:    cfg.SeverityPrecedence,
		PipelineTimeout:       cfg.PipelineTimeout.String(),
		DefaultTier:           cfg.DefaultTier,
		ExternalTierService:   cfg.TierServiceURL != "",
	}
}

func databaseInfo(ctx context.Context, db shared.DB, pool *pgxpool.Pool, poolCfg database.PoolConfig) DatabaseInfo {
	info := DatabaseInfo{Status: "healthy"}

	sqlDB, err := db.DB()
	if err != nil {
		info.Status = "unhealthy"
		info.Error = "failed to get database instance"
		return info
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		info.Status = "unhealthy"
		info.Error = "database ping failed"
		return info
	}

	if pool != nil {
		stats := pool.Stat()
		info.Pool = &PoolInfo{
			DBName:          poolCfg.DBName,
			MaxOpenConns:    poolCfg.MaxOpenConns,
			ConnMaxLifetime: poolCfg.ConnMaxLifetime.String(),
			TotalConns:      int(stats.TotalConns()),
			IdleConns:       int(stats.IdleConns()),
			AcquiredConns:   int(stats.AcquiredConns()),
		}
	}

	// a missing schema_migrations table only means nothing was migrated yet
	if ver, dirty, err := database.GetMigrationVersionWithDB(db); err == nil {
		info.MigrationVersion = &ver
		info.MigrationDirty = &dirty
	} else {
		slog.Warn("could not read migration version", "err", err)
	}
	return info
}
