package shared_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(names []string, values []string) shared.Context {
	e := echo.New()
	ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	ctx.SetParamNames(names...)
	ctx.SetParamValues(values...)
	return ctx
}

func TestGetTenantID(t *testing.T) {
	t.Run("should return the sanitized tenant id", func(t *testing.T) {
		tenantID, err := shared.GetTenantID(newContext([]string{"tenantID"}, []string{"/acme/"}))
		require.NoError(t, err)
		assert.Equal(t, "acme", tenantID)
	})

	t.Run("should fall back to the context store", func(t *testing.T) {
		ctx := newContext(nil, nil)
		ctx.Set("tenantID", "acme")
		tenantID, err := shared.GetTenantID(ctx)
		require.NoError(t, err)
		assert.Equal(t, "acme", tenantID)
	})

	t.Run("should return a bad request if the tenant is missing", func(t *testing.T) {
		_, err := shared.GetTenantID(newContext(nil, nil))
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}

func TestGetAnalysisID(t *testing.T) {
	t.Run("should parse the analysis id", func(t *testing.T) {
		id := uuid.New()
		analysisID, err := shared.GetAnalysisID(newContext([]string{"analysisID"}, []string{id.String()}))
		require.NoError(t, err)
		assert.Equal(t, id, analysisID)
	})

	t.Run("should reject ids which are no uuid", func(t *testing.T) {
		_, err := shared.GetAnalysisID(newContext([]string{"analysisID"}, []string{"latest"}))
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}
