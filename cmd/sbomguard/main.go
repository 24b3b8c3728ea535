// Copyright (C) 2023 Tim Bastin, l3montree GmbH
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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/l3montree-dev/sbomguard/cmd/sbomguard/api"
	"github.com/l3montree-dev/sbomguard/controllers"
	"github.com/l3montree-dev/sbomguard/daemons"
	"github.com/l3montree-dev/sbomguard/database"
	"github.com/l3montree-dev/sbomguard/database/repositories"
	"github.com/l3montree-dev/sbomguard/router"
	"github.com/l3montree-dev/sbomguard/services"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/vulndb"
	"github.com/l3montree-dev/sbomguard/vulndb/scan"
	"github.com/pkg/errors"
	"go.uber.org/fx"

	_ "github.com/lib/pq"
)

//	@title			sbomguard API
//	@version		v1
//	@description	vulnerability analysis of software bills of materials

//	@license.name	AGPL-3

// @host		localhost:8080
// @BasePath	/api/v1
func main() {
	shared.LoadConfig() // nolint: errcheck
	shared.InitLogger()

	cfg, err := shared.ConfigFromEnv()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	shared.InitLoggerWithLevel(shared.ParseLogLevel(cfg.LogLevel))

	if cfg.ErrorTrackingDSN != "" {
		initSentry(cfg)

		// Catch panics
		defer func() {
			if err := recover(); err != nil {
				sentry.CurrentHub().Recover(err)
				// Wait for events to be send to server
				sentry.Flush(time.Second * 5)
			}
		}()
	}

	shutdownTracer, err := shared.InitTracer(context.Background(), "sbomguard")
	if err != nil {
		slog.Error("could not initialize tracing", "err", err)
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{OnStop: shutdownTracer})
		}),
		database.Module,
		fx.Invoke(migrate),
		repositories.Module,
		vulndb.Module,
		scan.Module,
		services.Module,
		controllers.ControllerModule,
		api.Module,
		router.RouterModule,
		daemons.Module,

		// we need to invoke all routers to register their routes
		fx.Invoke(func(AnalysisRouter router.AnalysisRouter) {}),
	).Run()
}

// migrate runs before any route is registered so requests never hit an outdated schema.
func migrate(db shared.DB) error {
	if os.Getenv("DISABLE_AUTOMIGRATE") == "true" {
		slog.Info("automatic migrations disabled via DISABLE_AUTOMIGRATE=true")
		return nil
	}
	slog.Info("running database migrations...")
	if err := database.RunMigrationsWithDB(db); err != nil {
		return errors.Wrap(err, "failed to run database migrations")
	}
	return nil
}

func initSentry(cfg shared.Config) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.ErrorTrackingDSN,
		Environment: cfg.Environment,
		Release:     shared.Version,

		// In debug mode, the debug information is printed to stdout to help you
		// understand what Sentry is doing.
		Debug: cfg.Environment == "dev",

		AttachStacktrace: true,
		SendDefaultPII:   false,
	})
	if err != nil {
		slog.Error("Failed to init error tracking", "err", err)
	}
}
