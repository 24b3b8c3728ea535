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

package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/l3montree-dev/sbomguard/dtos"
	"github.com/l3montree-dev/sbomguard/vulndb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationsShareTheRateLimit(t *testing.T) {
	const rps = 20.0
	const perCorrelation = 6

	var mu sync.Mutex
	var arrivals []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		arrivals = append(arrivals, time.Now())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dtos.OSVQueryResponse{})
	}))
	defer server.Close()

	client := vulndb.NewOSVClient(vulndb.OSVClientConfig{
		BaseURL:    server.URL,
		Timeout:    5 * time.Second,
		Backoff:    vulndb.DefaultBackoffPolicy(),
		Precedence: vulndb.SeverityPrecedenceCanonicalFirst,
	}, vulndb.WithHTTPClient(server.Client()), vulndb.WithLimiter(vulndb.NewRateLimiter(rps)))

	components := func(prefix string) []dtos.Component {
		res := make([]dtos.Component, perCorrelation)
		for i := range res {
			res[i] = dtos.Component{Name: fmt.Sprintf("%s-%d", prefix, i), Version: "1.0.0", Ecosystem: "npm"}
		}
		return res
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	for _, prefix := range []string{"first", "second"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := NewCorrelator(DefaultMaxFailureRatio).Correlate(ctx, components(prefix), client, DefaultConcurrency)
			assert.NoError(t, err)
			assert.Empty(t, res.Failures)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	require.NoError(t, ctx.Err())
	require.Len(t, arrivals, 2*perCorrelation)

	// the limiter admits one request and then one every 1/rps, no matter which correlation asks
	minimum := time.Duration(float64(2*perCorrelation-1) / rps * float64(time.Second))
	assert.GreaterOrEqual(t, elapsed, minimum*9/10)

	sort.Slice(arrivals, func(i, j int) bool { return arrivals[i].Before(arrivals[j]) })
	window := 200 * time.Millisecond
	allowed := int(window.Seconds()*rps) + 2
	for i := range arrivals {
		inWindow := 0
		for _, at := range arrivals[i:] {
			if at.Sub(arrivals[i]) < window {
				inWindow++
			}
		}
		assert.LessOrEqual(t, inWindow, allowed, "too many requests within %s", window)
	}
}
