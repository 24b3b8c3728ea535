package shared

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func GetParam(ctx Context, param string) string {
	v := ctx.Param(param)
	if v == "" {
		fallback := ctx.Get(param)
		if fallback == nil {
			return ""
		}
		s, _ := fallback.(string)
		return s
	}
	return v
}

func GetTenantID(ctx Context) (string, error) {
	tenantID := SanitizeParam(GetParam(ctx, "tenantID"))
	if tenantID == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing tenant id")
	}
	return tenantID, nil
}

func GetAnalysisID(ctx Context) (uuid.UUID, error) {
	analysisID, err := uuid.Parse(SanitizeParam(GetParam(ctx, "analysisID")))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid analysis id").WithInternal(err)
	}
	return analysisID, nil
}
