// Copyright (C) 2026 l3montree GmbH
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

package controllers

import (
	"context"
	"io"
	"net/http"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/transformer"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// MaxDocumentSize is the largest sbom accepted for analysis.
const MaxDocumentSize int64 = 16 * 1024 * 1024

type AnalysisController struct {
	analysisService shared.AnalysisService
}

func NewAnalysisController(analysisService shared.AnalysisService) *AnalysisController {
	return &AnalysisController{
		analysisService: analysisService,
	}
}

// Submit accepts an sbom either as multipart upload (field "file") or as raw json body.
// With ?wait=true the request blocks until the analysis reached a terminal status.
func (c *AnalysisController) Submit(ctx shared.Context) error {
	tenantID, err := shared.GetTenantID(ctx)
	if err != nil {
		return err
	}

	raw, filename, err := readDocument(ctx)
	if err != nil {
		return err
	}

	wait := ctx.QueryParam("wait") == "true"
	reqCtx := ctx.Request().Context()
	// the run outlives the request, other submitters of the same document may attach to it.
	// waiting is bound to the request, cancelling the run is up to the cancel endpoint.
	runCtx := context.WithoutCancel(reqCtx)

	handle, err := c.analysisService.SubmitAnalysis(runCtx, dtos.SubmitAnalysisRequest{
		TenantID:       tenantID,
		VendorID:       utils.EmptyThenNil(strings.TrimSpace(ctx.Request().Header.Get("X-Vendor-ID"))),
		SourceFilename: filename,
		RawDocument:    raw,
	})
	if err != nil {
		return toHTTPError(err)
	}

	if !wait && !handle.Cached() {
		return ctx.JSON(http.StatusAccepted, dtos.SubmitAnalysisResponse{
			ID:     handle.ID(),
			Status: "PENDING",
		})
	}

	analysis, err := handle.Wait(reqCtx)
	if err != nil && reqCtx.Err() != nil {
		return toHTTPError(err)
	}
	// a failed run is still a result
	return ctx.JSON(http.StatusOK, analysis)
}

func readDocument(ctx shared.Context) ([]byte, string, error) {
	req := ctx.Request()
	req.Body = http.MaxBytesReader(ctx.Response(), req.Body, MaxDocumentSize)
	defer req.Body.Close()

	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := req.ParseMultipartForm(MaxDocumentSize); err != nil {
			return nil, "", bodyError(err)
		}
		file, header, err := req.FormFile("file")
		if err != nil {
			return nil, "", echo.NewHTTPError(http.StatusBadRequest, "missing multipart field \"file\"").WithInternal(err)
		}
		defer file.Close()
		raw, err := io.ReadAll(file)
		if err != nil {
			return nil, "", bodyError(err)
		}
		return raw, header.Filename, nil
	}

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, "", bodyError(err)
	}
	return raw, ctx.QueryParam("filename"), nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "document exceeds the maximum size").WithInternal(err)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "could not read document").WithInternal(err)
}

func (c *AnalysisController) List(ctx shared.Context) error {
	tenantID, err := shared.GetTenantID(ctx)
	if err != nil {
		return err
	}
	summaries, err := c.analysisService.ListAnalyses(ctx.Request().Context(), tenantID)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (c *AnalysisController) Read(ctx shared.Context) error {
	tenantID, err := shared.GetTenantID(ctx)
	if err != nil {
		return err
	}
	analysisID, err := shared.GetAnalysisID(ctx)
	if err != nil {
		return err
	}
	analysis, err := c.analysisService.GetAnalysis(ctx.Request().Context(), tenantID, analysisID)
	if err != nil {
		return toHTTPError(err)
	}
	return ctx.JSON(http.StatusOK, analysis)
}

// CycloneDX returns the analysis as cyclonedx bom including the found vulnerabilities.
func (c *AnalysisController) CycloneDX(ctx shared.Context) error {
	tenantID, err := shared.GetTenantID(ctx)
	if err != nil {
		return err
	}
	analysisID, err := shared.GetAnalysisID(ctx)
	if err != nil {
		return err
	}
	analysis, err := c.analysisService.GetAnalysis(ctx.Request().Context(), tenantID, analysisID)
	if err != nil {
		return toHTTPError(err)
	}

	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.cyclonedx+json")
	return cdx.NewBOMEncoder(ctx.Response().Writer, cdx.BOMFileFormatJSON).Encode(transformer.AnalysisToCycloneDX(analysis))
}

func (c *AnalysisController) Cancel(ctx shared.Context) error {
	tenantID, err := shared.GetTenantID(ctx)
	if err != nil {
		return err
	}
	analysisID, err := shared.GetAnalysisID(ctx)
	if err != nil {
		return err
	}
	if err := c.analysisService.CancelAnalysis(ctx.Request().Context(), tenantID, analysisID); err != nil {
		return toHTTPError(err)
	}
	return ctx.NoContent(http.StatusAccepted)
}
