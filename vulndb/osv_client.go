// Copyright (C) 2024 Tim Bastin, l3montree GmbH
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
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package vulndb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/monitoring"
	"github.com/l3montree-dev/sbomguard/normalize"
	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"github.com/package-url/packageurl-go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const maxOSVResponseSize = 32 << 20

// maxOSVPages guards against a misbehaving upstream returning page tokens forever
const maxOSVPages = 50

// Limiter blocks until the next outbound request may be sent.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewRateLimiter allows rps requests per second without bursting.
func NewRateLimiter(rps float64) Limiter {
	return rate.NewLimiter(rate.Limit(rps), 1)
}

type OSVClientConfig struct {
	BaseURL string
	// Timeout of a single request attempt.
	Timeout    time.Duration
	Backoff    BackoffPolicy
	Precedence SeverityPrecedence
	CacheTTL   time.Duration
	CacheSize  int
}

type OSVClientOption func(*OSVClient)

func WithHTTPClient(client *http.Client) OSVClientOption {
	return func(c *OSVClient) {
		c.httpClient = client
	}
}

func WithLimiter(limiter Limiter) OSVClientOption {
	return func(c *OSVClient) {
		c.limiter = limiter
	}
}

func WithClock(clock utils.Clock) OSVClientOption {
	return func(c *OSVClient) {
		c.clock = clock
	}
}

// OSVClient looks up vulnerabilities of single components using the osv.dev query api.
// It is safe for concurrent use. Lookups for the same component identity are coalesced
// and successful results are cached.
type OSVClient struct {
	baseURL    string
	timeout    time.Duration
	backoff    BackoffPolicy
	severity   SeverityResolver
	httpClient *http.Client
	limiter    Limiter
	clock      utils.Clock

	cache *expirable.LRU[string, []dtos.VulnerabilityFinding]
	group singleflight.Group
}

var _ shared.VulnerabilityClient = (*OSVClient)(nil)

func NewOSVClient(config OSVClientConfig, opts ...OSVClientOption) *OSVClient {
	client := &OSVClient{
		baseURL:  strings.TrimSuffix(config.BaseURL, "/"),
		timeout:  config.Timeout,
		backoff:  config.Backoff,
		severity: NewSeverityResolver(config.Precedence),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Inf, 1),
		clock:   utils.NewRealClock(),
	}
	if config.CacheTTL > 0 && config.CacheSize > 0 {
		client.cache = expirable.NewLRU[string, []dtos.VulnerabilityFinding](config.CacheSize, nil, config.CacheTTL)
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func NewOSVClientFromConfig(cfg shared.Config) (*OSVClient, error) {
	precedence, err := ParseSeverityPrecedence(cfg.SeverityPrecedence)
	if err != nil {
		return nil, err
	}
	backoff := DefaultBackoffPolicy()
	backoff.MaxAttempts = cfg.OSVMaxAttempts

	return NewOSVClient(OSVClientConfig{
		BaseURL:    cfg.OSVAPIURL,
		Timeout:    cfg.OSVTimeout,
		Backoff:    backoff,
		Precedence: precedence,
		CacheTTL:   cfg.OSVCacheTTL,
		CacheSize:  cfg.OSVCacheSize,
	}, WithLimiter(NewRateLimiter(cfg.OSVRateLimit))), nil
}

// Lookup returns the findings of a component sorted by severity.
// Components whose identity can not be queried return an empty result.
func (c *OSVClient) Lookup(ctx context.Context, component dtos.Component) ([]dtos.VulnerabilityFinding, error) {
	key := component.Identity().String()

	if c.cache != nil {
		if findings, ok := c.cache.Get(key); ok {
			monitoring.VulnLookupsTotal.WithLabelValues("cache").Inc()
			return withAffectedComponent(findings, component), nil
		}
	}

	query, ok := buildQuery(component)
	if !ok {
		monitoring.VulnLookupsTotal.WithLabelValues("skipped").Inc()
		return []dtos.VulnerabilityFinding{}, nil
	}

	result, err, joined := c.group.Do(key, func() (any, error) {
		return c.lookup(ctx, component, query)
	})
	if err != nil && joined && ctx.Err() == nil && isContextError(err) {
		// the lookup we joined was cancelled by its own caller, not by us
		result, err = c.lookup(ctx, component, query)
	}
	if err != nil {
		monitoring.VulnLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	findings := result.([]dtos.VulnerabilityFinding)
	if len(findings) == 0 {
		monitoring.VulnLookupsTotal.WithLabelValues("not_found").Inc()
	} else {
		monitoring.VulnLookupsTotal.WithLabelValues("hit").Inc()
	}
	return withAffectedComponent(findings, component), nil
}

func (c *OSVClient) lookup(ctx context.Context, component dtos.Component, query dtos.OSVQuery) ([]dtos.VulnerabilityFinding, error) {
	ctx, span := shared.Tracer().Start(ctx, "osv.lookup", trace.WithAttributes(
		attribute.String("component.ecosystem", component.Ecosystem),
		attribute.String("component.name", component.Name),
		attribute.String("component.version", component.Version),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		monitoring.VulnLookupDuration.Observe(time.Since(start).Seconds())
	}()

	vulns := make([]dtos.OSV, 0)
	for page := 0; ; page++ {
		if page >= maxOSVPages {
			slog.Warn("osv returned too many pages, truncating result", "component", component.Identity().String(), "pages", page)
			break
		}
		resp, err := c.queryWithRetry(ctx, query)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		vulns = append(vulns, resp.Vulns...)
		if resp.NextPageToken == "" {
			break
		}
		query.PageToken = resp.NextPageToken
	}

	findings := c.toFindings(vulns)
	span.SetAttributes(attribute.Int("findings", len(findings)))
	if c.cache != nil {
		c.cache.Add(component.Identity().String(), findings)
	}
	return findings, nil
}

type statusError struct {
	statusCode int
}

func (e statusError) Error() string {
	return fmt.Sprintf("osv responded with status %d", e.statusCode)
}

func (e statusError) transient() bool {
	return e.statusCode == http.StatusTooManyRequests || e.statusCode >= 500
}

// queryWithRetry sends a single query page. transient failures are retried following the backoff policy.
// A non transient rejection of the query is treated as "no known vulnerabilities".
func (c *OSVClient) queryWithRetry(ctx context.Context, query dtos.OSVQuery) (dtos.OSVQueryResponse, error) {
	attempts := c.backoff.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			monitoring.VulnLookupRetriesTotal.Inc()
			select {
			case <-ctx.Done():
				return dtos.OSVQueryResponse{}, errors.Wrap(shared.ErrCancelled, ctx.Err().Error())
			case <-c.clock.After(c.backoff.Delay(attempt - 1)):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			// the limiter also fails early if the deadline would pass before a token is available
			return dtos.OSVQueryResponse{}, errors.Wrap(shared.ErrCancelled, err.Error())
		}

		resp, err := c.do(ctx, query)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return dtos.OSVQueryResponse{}, errors.Wrap(shared.ErrCancelled, ctx.Err().Error())
		}

		var statusErr statusError
		if errors.As(err, &statusErr) && !statusErr.transient() {
			slog.Debug("osv rejected query", "package", query.Package, "version", query.Version, "status", statusErr.statusCode)
			return dtos.OSVQueryResponse{}, nil
		}

		slog.Debug("osv request failed", "attempt", attempt, "maxAttempts", attempts, "error", err)
		lastErr = err
	}
	return dtos.OSVQueryResponse{}, errors.Wrapf(shared.ErrUpstreamUnavailable, "giving up after %d attempts: %s", attempts, lastErr)
}

func (c *OSVClient) do(ctx context.Context, query dtos.OSVQuery) (dtos.OSVQueryResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(query)
	if err != nil {
		return dtos.OSVQueryResponse{}, errors.Wrap(err, "could not marshal query")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/query", bytes.NewReader(body))
	if err != nil {
		return dtos.OSVQueryResponse{}, errors.Wrap(err, "could not create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "sbomguard")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return dtos.OSVQueryResponse{}, errors.Wrap(err, "could not send request")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		// drain to allow connection reuse
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 1<<16))
		return dtos.OSVQueryResponse{}, statusError{statusCode: res.StatusCode}
	}

	var resp dtos.OSVQueryResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxOSVResponseSize)).Decode(&resp); err != nil {
		return dtos.OSVQueryResponse{}, errors.Wrap(err, "could not decode osv response")
	}
	return resp, nil
}

func (c *OSVClient) toFindings(vulns []dtos.OSV) []dtos.VulnerabilityFinding {
	active := make([]dtos.OSV, 0, len(vulns))
	for _, v := range vulns {
		if v.ID != "" && !v.IsWithdrawn() {
			active = append(active, v)
		}
	}
	active = deduplicateByAlias(active)

	findings := make([]dtos.VulnerabilityFinding, 0, len(active))
	seen := make(map[string]struct{}, len(active))
	for _, v := range active {
		if _, ok := seen[v.ID]; ok {
			continue
		}
		seen[v.ID] = struct{}{}

		resolved := c.severity.Resolve(v)
		summary := v.Summary
		if summary == "" {
			summary = firstLine(v.Details)
		}
		findings = append(findings, dtos.VulnerabilityFinding{
			ID:          v.ID,
			Severity:    resolved.Severity,
			CVSSScore:   resolved.CVSSScore,
			CVSSVector:  resolved.CVSSVector,
			Summary:     summary,
			PublishedAt: v.Published,
			Aliases:     v.Aliases,
		})
	}
	SortFindings(findings)
	return findings
}

// buildQuery translates a component into an osv query.
// Components of an unknown ecosystem are queried by purl if possible, components
// without a known version are not queried at all since osv would return every
// advisory ever published for the package.
func buildQuery(component dtos.Component) (dtos.OSVQuery, bool) {
	if component.Version == "" || component.Version == normalize.UnknownVersion {
		return dtos.OSVQuery{}, false
	}

	if component.Ecosystem != "" && component.Ecosystem != normalize.UnknownEcosystem {
		return dtos.OSVQuery{
			Package: dtos.Package{
				Name:      component.Name,
				Ecosystem: component.Ecosystem,
			},
			Version: component.Version,
		}, true
	}

	if component.PackageID == "" {
		return dtos.OSVQuery{}, false
	}
	p, err := packageurl.FromString(component.PackageID)
	if err != nil {
		return dtos.OSVQuery{}, false
	}
	return dtos.OSVQuery{
		Package: dtos.Package{
			Purl: normalize.ToPurlWithoutVersion(p),
		},
		Version: component.Version,
	}, true
}

// withAffectedComponent copies the findings so cached and shared slices are never mutated.
func withAffectedComponent(findings []dtos.VulnerabilityFinding, component dtos.Component) []dtos.VulnerabilityFinding {
	res := make([]dtos.VulnerabilityFinding, len(findings))
	ref := component.Ref()
	for i, f := range findings {
		f.AffectedComponent = ref
		res[i] = f
	}
	return res
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || shared.IsKind(err, shared.ErrorKindCancelled)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
