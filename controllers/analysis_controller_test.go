package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/mocks"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sbom = `{"bomFormat":"CycloneDX","specVersion":"1.5","components":[{"type":"library","name":"lodash","version":"4.17.20"}]}`

type fakeHandle struct {
	id       uuid.UUID
	cached   bool
	analysis models.Analysis
	err      error
}

func (h fakeHandle) ID() uuid.UUID { return h.id }
func (h fakeHandle) Done() <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}
func (h fakeHandle) Wait(context.Context) (models.Analysis, error) { return h.analysis, h.err }
func (h fakeHandle) Cancel()                                        {}
func (h fakeHandle) Cached() bool                                   { return h.cached }

func newContext(method, target string, body *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("tenantID")
	ctx.SetParamValues("acme")
	return ctx, rec
}

func TestAnalysisControllerSubmit(t *testing.T) {
	t.Run("should accept a raw json document and return 202", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		id := uuid.New()
		service.On("SubmitAnalysis", mock.Anything, mock.MatchedBy(func(req dtos.SubmitAnalysisRequest) bool {
			return req.TenantID == "acme" && string(req.RawDocument) == sbom && *req.VendorID == "vendor-1" && req.SourceFilename == "app.json"
		})).Return(fakeHandle{id: id}, nil)

		ctx, rec := newContext(http.MethodPost, "/analyses/?filename=app.json", bytes.NewBufferString(sbom), echo.MIMEApplicationJSON)
		ctx.Request().Header.Set("X-Vendor-ID", "vendor-1")

		require.NoError(t, NewAnalysisController(service).Submit(ctx))
		assert.Equal(t, http.StatusAccepted, rec.Code)

		var res dtos.SubmitAnalysisResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, id, res.ID)
		assert.Equal(t, "PENDING", res.Status)
	})

	t.Run("should read multipart uploads", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		service.On("SubmitAnalysis", mock.Anything, mock.MatchedBy(func(req dtos.SubmitAnalysisRequest) bool {
			return string(req.RawDocument) == sbom && req.SourceFilename == "bom.json" && req.VendorID == nil
		})).Return(fakeHandle{id: uuid.New()}, nil)

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("file", "bom.json")
		require.NoError(t, err)
		_, err = part.Write([]byte(sbom))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		ctx, rec := newContext(http.MethodPost, "/analyses/", &body, writer.FormDataContentType())
		require.NoError(t, NewAnalysisController(service).Submit(ctx))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("should return the analysis if the caller waits", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		analysis := models.Analysis{ID: uuid.New(), TenantID: "acme", Status: models.AnalysisStatusFailed}
		service.On("SubmitAnalysis", mock.Anything, mock.Anything).Return(fakeHandle{id: analysis.ID, analysis: analysis, err: shared.ErrCorrelationDegraded}, nil)

		ctx, rec := newContext(http.MethodPost, "/analyses/?wait=true", bytes.NewBufferString(sbom), echo.MIMEApplicationJSON)
		require.NoError(t, NewAnalysisController(service).Submit(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"FAILED"`)
	})

	t.Run("should not tie the run to a waiting request", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		analysis := models.Analysis{ID: uuid.New(), TenantID: "acme", Status: models.AnalysisStatusRunning}
		service.On("SubmitAnalysis", mock.MatchedBy(func(ctx context.Context) bool {
			return ctx.Err() == nil && ctx.Done() == nil
		}), mock.Anything).Return(fakeHandle{id: analysis.ID, analysis: analysis}, nil)

		ctx, _ := newContext(http.MethodPost, "/analyses/?wait=true", bytes.NewBufferString(sbom), echo.MIMEApplicationJSON)
		reqCtx, cancel := context.WithCancel(ctx.Request().Context())
		cancel()
		ctx.SetRequest(ctx.Request().WithContext(reqCtx))

		require.NoError(t, NewAnalysisController(service).Submit(ctx))
	})

	t.Run("should return cached analyses right away", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		analysis := models.Analysis{ID: uuid.New(), TenantID: "acme", Status: models.AnalysisStatusComplete}
		service.On("SubmitAnalysis", mock.Anything, mock.Anything).Return(fakeHandle{id: analysis.ID, analysis: analysis, cached: true}, nil)

		ctx, rec := newContext(http.MethodPost, "/analyses/", bytes.NewBufferString(sbom), echo.MIMEApplicationJSON)
		require.NoError(t, NewAnalysisController(service).Submit(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	cases := []struct {
		err  error
		code int
	}{
		{errors.Wrap(shared.ErrMalformedDocument, "unexpected end of json"), http.StatusBadRequest},
		{shared.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{errors.Wrap(shared.ErrQuotaExceeded, "limit reached"), http.StatusTooManyRequests},
		{errors.Wrap(shared.ErrQuotaCheckUnavailable, "timeout"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run("should map "+c.err.Error(), func(t *testing.T) {
			service := mocks.NewAnalysisService(t)
			service.On("SubmitAnalysis", mock.Anything, mock.Anything).Return(nil, c.err)

			ctx, _ := newContext(http.MethodPost, "/analyses/", bytes.NewBufferString(sbom), echo.MIMEApplicationJSON)
			err := NewAnalysisController(service).Submit(ctx)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, c.code, he.Code)
		})
	}
}

func TestAnalysisControllerRead(t *testing.T) {
	id := uuid.New()
	analysis := models.Analysis{
		ID:        id,
		TenantID:  "acme",
		Status:    models.AnalysisStatusComplete,
		CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		ComponentResults: []dtos.ComponentRiskResult{{
			Component: dtos.Component{Name: "lodash", Version: "4.17.20", Ecosystem: "npm"},
			Findings:  []dtos.VulnerabilityFinding{{ID: "GHSA-1", Severity: dtos.SeverityHigh}},
		}},
	}

	t.Run("should return 404 for unknown analyses", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		service.On("GetAnalysis", mock.Anything, "acme", id).Return(models.Analysis{}, errors.Wrap(shared.ErrNotFound, "analyses"))

		ctx, _ := newContext(http.MethodGet, "/", &bytes.Buffer{}, "")
		ctx.SetParamNames("tenantID", "analysisID")
		ctx.SetParamValues("acme", id.String())

		err := NewAnalysisController(service).Read(ctx)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("should reject invalid ids", func(t *testing.T) {
		ctx, _ := newContext(http.MethodGet, "/", &bytes.Buffer{}, "")
		ctx.SetParamNames("tenantID", "analysisID")
		ctx.SetParamValues("acme", "not-a-uuid")

		err := NewAnalysisController(mocks.NewAnalysisService(t)).Read(ctx)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("should render the analysis as cyclonedx", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		service.On("GetAnalysis", mock.Anything, "acme", id).Return(analysis, nil)

		ctx, rec := newContext(http.MethodGet, "/", &bytes.Buffer{}, "")
		ctx.SetParamNames("tenantID", "analysisID")
		ctx.SetParamValues("acme", id.String())

		require.NoError(t, NewAnalysisController(service).CycloneDX(ctx))
		assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "application/vnd.cyclonedx+json"))

		var bom cdx.BOM
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &bom))
		require.Len(t, *bom.Vulnerabilities, 1)
		assert.Equal(t, "GHSA-1", (*bom.Vulnerabilities)[0].ID)
	})

	t.Run("should list the analyses of the tenant", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		service.On("ListAnalyses", mock.Anything, "acme").Return([]dtos.AnalysisSummary{analysis.Summary()}, nil)

		ctx, rec := newContext(http.MethodGet, "/", &bytes.Buffer{}, "")
		require.NoError(t, NewAnalysisController(service).List(ctx))

		var summaries []dtos.AnalysisSummary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
		require.Len(t, summaries, 1)
		assert.Equal(t, id, summaries[0].ID)
	})

	t.Run("should cancel running analyses", func(t *testing.T) {
		service := mocks.NewAnalysisService(t)
		service.On("CancelAnalysis", mock.Anything, "acme", id).Return(nil)

		ctx, rec := newContext(http.MethodDelete, "/", &bytes.Buffer{}, "")
		ctx.SetParamNames("tenantID", "analysisID")
		ctx.SetParamValues("acme", id.String())

		require.NoError(t, NewAnalysisController(service).Cancel(ctx))
		assert.Equal(t, http.StatusAccepted, rec.Code)
	})
}
