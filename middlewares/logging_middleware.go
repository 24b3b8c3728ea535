package middlewares

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// logger logs every handled request except probes. Failed requests are logged by the error handler.
func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil || isProbe(ctx.Request().URL.Path) {
				return err
			}

			attrs := []any{
				"method", ctx.Request().Method,
				"route", ctx.Path(),
				"status", ctx.Response().Status,
				"bytes", ctx.Response().Size,
				"duration", time.Since(start),
			}
			if tenantID := ctx.Param("tenantID"); tenantID != "" {
				attrs = append(attrs, "tenantID", tenantID)
			}
			slog.Info("handled request", attrs...)
			return nil
		}
	}
}
