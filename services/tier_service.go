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
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
)

const tierCacheSize = 1024

// TierService resolves the limits of a tenant from the tenant_tiers table.
// tenants without an assignment get the default tier.
type TierService struct {
	repository  shared.TierRepository
	defaultTier string
	cache       *expirable.LRU[string, dtos.TierLimits]
}

var _ shared.TierService = (*TierService)(nil)

func NewTierService(repository shared.TierRepository, defaultTier string, cacheTTL time.Duration) *TierService {
	s := &TierService{
		repository:  repository,
		defaultTier: defaultTier,
	}
	if cacheTTL > 0 {
		s.cache = expirable.NewLRU[string, dtos.TierLimits](tierCacheSize, nil, cacheTTL)
	}
	return s
}

func (s *TierService) GetTierLimits(ctx context.Context, tenantID string) (dtos.TierLimits, error) {
	if s.cache != nil {
		if limits, ok := s.cache.Get(tenantID); ok {
			return limits, nil
		}
	}

	tier, err := s.repository.FindByTenant(ctx, tenantID)
	if err != nil {
		if !shared.IsKind(err, shared.ErrorKindNotFound) {
			return dtos.TierLimits{}, errors.Wrap(err, "could not fetch tier of tenant")
		}
		tier, err = s.repository.Read(ctx, s.defaultTier)
		if err != nil {
			return dtos.TierLimits{}, errors.Wrapf(err, "could not fetch default tier %q", s.defaultTier)
		}
	}

	limits := tier.Limits()
	if s.cache != nil {
		s.cache.Add(tenantID, limits)
	}
	return limits, nil
}

// StaticTierService applies the same limits to every tenant. It is used by the cli.
type StaticTierService struct {
	limits dtos.TierLimits
}

var _ shared.TierService = StaticTierService{}

func NewStaticTierService(limits dtos.TierLimits) StaticTierService {
	return StaticTierService{limits: limits}
}

func (s StaticTierService) GetTierLimits(context.Context, string) (dtos.TierLimits, error) {
	return s.limits, nil
}
