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
	"fmt"
	"log/slog"

	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/pkg/errors"
)

type usageGuard struct {
	tierService shared.TierService
	repository  shared.AnalysisRepository
	clock       utils.Clock
}

var _ shared.UsageGuard = (*usageGuard)(nil)

func NewUsageGuard(tierService shared.TierService, repository shared.AnalysisRepository, clock utils.Clock) *usageGuard {
	if clock == nil {
		clock = utils.NewRealClock()
	}
	return &usageGuard{
		tierService: tierService,
		repository:  repository,
		clock:       clock,
	}
}

// CheckQuota fails closed. If the limits or the usage of the tenant cannot be determined
// the request is denied with ErrQuotaCheckUnavailable.
func (g *usageGuard) CheckQuota(ctx context.Context, tenantID string, requestedComponents int) (bool, string, error) {
	limits, err := g.tierService.GetTierLimits(ctx, tenantID)
	if err != nil {
		slog.Warn("could not fetch tier limits", "tenantID", tenantID, "err", err)
		return false, "", errors.Wrap(shared.ErrQuotaCheckUnavailable, err.Error())
	}

	if limits.MaxComponentsPerAnalysis > 0 && requestedComponents > limits.MaxComponentsPerAnalysis {
		return false, fmt.Sprintf("the document declares %d distinct components but tier %q allows at most %d per analysis", requestedComponents, limits.Tier, limits.MaxComponentsPerAnalysis), nil
	}

	if limits.MaxAnalysesPerMonth > 0 {
		used, err := g.repository.CountConsumingSince(ctx, tenantID, utils.StartOfMonth(g.clock.Now()))
		if err != nil {
			slog.Warn("could not count analyses of tenant", "tenantID", tenantID, "err", err)
			return false, "", errors.Wrap(shared.ErrQuotaCheckUnavailable, err.Error())
		}
		if used >= int64(limits.MaxAnalysesPerMonth) {
			return false, fmt.Sprintf("tier %q allows %d analyses per month and %d are used already", limits.Tier, limits.MaxAnalysesPerMonth, used), nil
		}
	}

	return true, "", nil
}
