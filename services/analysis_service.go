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

package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/monitoring"
	"github.com/l3montree-dev/sbomguard/normalize"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/l3montree-dev/sbomguard/vulndb"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type analysisService struct {
	store       *AnalysisStore
	guard       shared.UsageGuard
	correlator  shared.Correlator
	client      shared.VulnerabilityClient
	concurrency int
	timeout     time.Duration

	// admission of a tenant is serialized so concurrent submissions can not overrun the quota
	admission *utils.KeyedMutex
}

var _ shared.AnalysisService = (*analysisService)(nil)

func NewAnalysisService(store *AnalysisStore, guard shared.UsageGuard, correlator shared.Correlator, client shared.VulnerabilityClient, cfg shared.Config) *analysisService {
	return &analysisService{
		store:       store,
		guard:       guard,
		correlator:  correlator,
		client:      client,
		concurrency: cfg.CorrelationConcurrency,
		timeout:     cfg.PipelineTimeout,
		admission:   utils.NewKeyedMutex(),
	}
}

// SubmitAnalysis parses the document and admits it before anything is persisted.
// resubmitting a document whose analysis is running or complete returns that analysis without charging quota again.
// The returned handle runs bound to ctx.
// Quota is checked and the analysis persisted while holding the admission lock of the tenant,
// pending and running analyses count against the quota. The lock is local to this instance.
func (s *analysisService) SubmitAnalysis(ctx context.Context, req dtos.SubmitAnalysisRequest) (shared.AnalysisHandle, error) {
	tenantID := strings.TrimSpace(req.TenantID)
	if tenantID == "" {
		return nil, errors.Wrap(shared.ErrNotFound, "tenant id is missing")
	}

	parsed, err := normalize.ParseSBOM(req.RawDocument)
	if err != nil {
		return nil, err
	}

	distinct := parsed.DistinctCount()
	contentHash := normalize.ContentHash(parsed.Components)

	unlock := s.admission.Lock(tenantID)
	defer unlock()

	existing, ok, err := s.store.Existing(ctx, tenantID, contentHash)
	if err != nil {
		return nil, err
	}
	if ok {
		slog.Debug("attaching to existing analysis", "tenantID", tenantID, "analysisID", existing.ID(), "cached", existing.Cached())
		return existing, nil
	}

	allowed, reason, err := s.guard.CheckQuota(ctx, tenantID, distinct)
	if err != nil {
		return nil, err
	}
	if !allowed {
		monitoring.QuotaRejectionsTotal.Inc()
		return nil, errors.Wrap(shared.ErrQuotaExceeded, reason)
	}

	factory := func() models.Analysis {
		return models.Analysis{
			ID:                 uuid.New(),
			VendorID:           req.VendorID,
			SourceFilename:     req.SourceFilename,
			Format:             string(parsed.Format),
			DeclaredComponents: parsed.DeclaredCount(),
			SkippedComponents:  parsed.SkippedCount,
			TotalComponents:    distinct,
		}
	}

	return s.store.GetOrCreate(ctx, tenantID, contentHash, factory, s.pipeline(parsed.Components))
}

func (s *analysisService) pipeline(components []dtos.Component) RunFunc {
	return func(ctx context.Context, analysis models.Analysis) (models.Analysis, error) {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		ctx, span := shared.Tracer().Start(ctx, "analysis.run", trace.WithAttributes(
			attribute.String("analysis.id", analysis.ID.String()),
			attribute.String("analysis.tenant", analysis.TenantID),
			attribute.Int("analysis.components", len(components)),
		))
		defer span.End()

		correlation, err := s.correlator.Correlate(ctx, components, s.client, s.concurrency)
		if err != nil && !shared.IsKind(err, shared.ErrorKindCorrelationDegraded) {
			span.SetStatus(codes.Error, err.Error())
			return analysis, err
		}

		vulndb.ScoreResults(correlation.Results)
		analysis.ComponentResults = correlation.Results
		analysis.LookupFailures = correlation.Failures
		analysis.TotalVulnerabilities = 0
		for _, result := range correlation.Results {
			analysis.TotalVulnerabilities += len(result.Findings)
		}
		analysis.OverallRiskScore = vulndb.OverallScore(correlation.Results)

		span.SetAttributes(
			attribute.Int("analysis.vulnerabilities", analysis.TotalVulnerabilities),
			attribute.Float64("analysis.risk", analysis.OverallRiskScore),
		)
		if err != nil {
			// degraded runs keep their partial results
			span.SetStatus(codes.Error, err.Error())
			return analysis, err
		}
		return analysis, nil
	}
}

// GetAnalysis hides analyses of other tenants behind ErrNotFound.
func (s *analysisService) GetAnalysis(ctx context.Context, tenantID string, id uuid.UUID) (models.Analysis, error) {
	analysis, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Analysis{}, err
	}
	if analysis.TenantID != tenantID {
		return models.Analysis{}, errors.Wrapf(shared.ErrNotFound, "analysis %s", id)
	}
	return analysis, nil
}

func (s *analysisService) ListAnalyses(ctx context.Context, tenantID string) ([]dtos.AnalysisSummary, error) {
	analyses, err := s.store.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return utils.Map(analyses, models.Analysis.Summary), nil
}

func (s *analysisService) CancelAnalysis(ctx context.Context, tenantID string, id uuid.UUID) error {
	analysis, err := s.GetAnalysis(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if analysis.Status.IsTerminal() {
		return errors.Wrapf(shared.ErrInvalidTransition, "analysis %s is already %s", id, analysis.Status)
	}
	return s.store.RequestCancel(ctx, id)
}
