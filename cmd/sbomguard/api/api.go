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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/l3montree-dev/sbomguard/middlewares"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

var StartedAt = time.Now()

type Server struct {
	Echo *echo.Echo
}

func NewServer(lc fx.Lifecycle, cfg shared.Config) Server {
	server := middlewares.Server()
	server.Debug = cfg.Environment == "dev"

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				slog.Info("starting server", "port", cfg.Port)
				if err := server.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("server stopped unexpectedly", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Shutdown(ctx)
		},
	})

	return Server{Echo: server}
}

var Module = fx.Options(
	fx.Provide(NewServer),
)
