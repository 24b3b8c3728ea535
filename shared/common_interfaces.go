// Copyright (C) 2025 timbastin
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

package shared

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/l3montree-dev/sbomguard/database/models"
	"github.com/l3montree-dev/sbomguard/dtos"
)

type VulnerabilityClient interface {
	// Lookup returns the known vulnerabilities of a single component.
	// An empty result means no known vulnerabilities.
	Lookup(ctx context.Context, component dtos.Component) ([]dtos.VulnerabilityFinding, error)
}

type Correlator interface {
	Correlate(ctx context.Context, components []dtos.Component, client VulnerabilityClient, concurrency int) (dtos.CorrelationResult, error)
}

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	Read(ctx context.Context, id uuid.UUID) (models.Analysis, error)
	FindLatestComplete(ctx context.Context, tenantID, contentHash string) (models.Analysis, error)
	// ListByTenant does not load component results and failures.
	ListByTenant(ctx context.Context, tenantID string) ([]models.Analysis, error)
	// Transition moves an analysis between two statuses. it fails with ErrInvalidTransition
	// if the analysis is not in status from anymore.
	Transition(ctx context.Context, id uuid.UUID, from, to models.AnalysisStatus) error
	// Finish persists the terminal state of a running analysis.
	Finish(ctx context.Context, analysis *models.Analysis) error
	// CountConsumingSince counts the analyses charged against the quota of a tenant:
	// analyses completed since the given time plus the pending and running ones.
	CountConsumingSince(ctx context.Context, tenantID string, since time.Time) (int64, error)
	FindUnfinishedBefore(ctx context.Context, before time.Time) ([]models.Analysis, error)
}

type TierRepository interface {
	FindByTenant(ctx context.Context, tenantID string) (models.Tier, error)
	Read(ctx context.Context, name string) (models.Tier, error)
	AssignTenant(ctx context.Context, tenantID, tierName string) error
}

type TierService interface {
	GetTierLimits(ctx context.Context, tenantID string) (dtos.TierLimits, error)
}

type UsageGuard interface {
	// CheckQuota returns whether the tenant may run an analysis of the given size.
	// a denial comes with a human readable reason. An error means the limits could not be determined.
	CheckQuota(ctx context.Context, tenantID string, requestedComponents int) (bool, string, error)
}

// AnalysisHandle represents a dispatched or already finished analysis run.
type AnalysisHandle interface {
	ID() uuid.UUID
	// Done is closed once the run reached a terminal status.
	Done() <-chan struct{}
	// Wait blocks until the run is done or ctx is cancelled.
	Wait(ctx context.Context) (models.Analysis, error)
	Cancel()
	// Cached reports whether the handle was served from a previously completed analysis.
	Cached() bool
}

type AnalysisService interface {
	SubmitAnalysis(ctx context.Context, req dtos.SubmitAnalysisRequest) (AnalysisHandle, error)
	GetAnalysis(ctx context.Context, tenantID string, id uuid.UUID) (models.Analysis, error)
	ListAnalyses(ctx context.Context, tenantID string) ([]dtos.AnalysisSummary, error)
	CancelAnalysis(ctx context.Context, tenantID string, id uuid.UUID) error
}
