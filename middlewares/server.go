package middlewares

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/l3montree-dev/sbomguard/monitoring"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

const serviceName = "sbomguard"

func registerMiddlewares(e *echo.Echo) {
	e.Pre(middleware.AddTrailingSlash())
	e.Use(otelecho.Middleware(serviceName, otelecho.WithSkipper(func(ctx echo.Context) bool {
		return isProbe(ctx.Request().URL.Path)
	})))

	e.Use(logger())

	e.Use(recovermiddleware())

	e.HTTPErrorHandler = ErrorHandler(e)
}

func isProbe(path string) bool {
	return strings.HasPrefix(path, "/api/v1/health") || strings.HasPrefix(path, "/metrics")
}

// ErrorHandler writes every error as json. Errors which are no echo.HTTPError are
// mapped by their kind, unexpected ones are reported to the error tracking.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			slog.Error(err.Error(), "method", ctx.Request().Method, "path", ctx.Request().URL)
			return
		}

		he, ok := err.(*echo.HTTPError)
		if !ok {
			code := shared.HTTPStatusOf(err)
			he = &echo.HTTPError{Code: code, Message: http.StatusText(code), Internal: err}
			if code != http.StatusInternalServerError {
				he.Message = echo.Map{"message": err.Error(), "kind": shared.KindOf(err)}
			}
		}

		// do the logging straight inside the error handler
		// this keeps controller methods clean
		if he.Code >= http.StatusInternalServerError {
			if he.Internal != nil && he.Code == http.StatusInternalServerError {
				monitoring.Alert("unexpected error while handling request", he.Internal)
			}
			slog.Error(err.Error(), "method", ctx.Request().Method, "path", ctx.Request().URL, "status", he.Code)
		} else {
			slog.Warn(err.Error(), "method", ctx.Request().Method, "path", ctx.Request().URL, "status", he.Code)
		}

		message := he.Message
		switch m := he.Message.(type) {
		case string:
			if e.Debug && he.Internal != nil {
				message = echo.Map{"message": m, "error": he.Internal.Error()}
			} else {
				message = echo.Map{"message": m}
			}
		case json.Marshaler:
			// do nothing - this type knows how to format itself to JSON
		case error:
			message = echo.Map{"message": m.Error()}
		}

		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(he.Code)
		} else {
			err = ctx.JSON(he.Code, message)
		}
		if err != nil {
			slog.Error("could not send error response", "error", err)
		}
	}
}

func Server() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(99)
	registerMiddlewares(e)
	return e
}
