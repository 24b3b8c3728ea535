package controllers

import (
	"net/http"

	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/labstack/echo/v4"
)

func toHTTPError(err error) error {
	code := shared.HTTPStatusOf(err)
	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, http.StatusText(code)).WithInternal(err)
	}
	return echo.NewHTTPError(code, echo.Map{
		"message": err.Error(),
		"kind":    shared.KindOf(err),
	}).WithInternal(err)
}
