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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// HTTPTierService asks an external subscription service for the limits of a tenant.
type HTTPTierService struct {
	baseURL string
	client  *http.Client
	cache   *expirable.LRU[string, dtos.TierLimits]
}

var _ shared.TierService = (*HTTPTierService)(nil)

func NewHTTPTierService(baseURL string, cacheTTL time.Duration, client *http.Client) *HTTPTierService {
	if client == nil {
		client = &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	s := &HTTPTierService{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
	if cacheTTL > 0 {
		s.cache = expirable.NewLRU[string, dtos.TierLimits](tierCacheSize, nil, cacheTTL)
	}
	return s
}

func (s *HTTPTierService) GetTierLimits(ctx context.Context, tenantID string) (dtos.TierLimits, error) {
	if s.cache != nil {
		if limits, ok := s.cache.Get(tenantID); ok {
			return limits, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/tenants/%s/limits", s.baseURL, url.PathEscape(tenantID)), nil)
	if err != nil {
		return dtos.TierLimits{}, errors.Wrap(err, "could not build tier request")
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return dtos.TierLimits{}, errors.Wrap(err, "could not reach tier service")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return dtos.TierLimits{}, fmt.Errorf("tier service responded with %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var limits dtos.TierLimits
	if err := json.NewDecoder(res.Body).Decode(&limits); err != nil {
		return dtos.TierLimits{}, errors.Wrap(err, "could not decode tier limits")
	}
	if limits.MaxAnalysesPerMonth < 0 || limits.MaxComponentsPerAnalysis < 0 {
		return dtos.TierLimits{}, fmt.Errorf("tier service returned negative limits for tenant %s", tenantID)
	}

	if s.cache != nil {
		s.cache.Add(tenantID, limits)
	}
	return limits, nil
}
