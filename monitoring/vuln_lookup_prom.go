// Copyright 2026 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// VulnLookupsTotal counts vulnerability lookups by outcome.
// outcome is one of: hit, cache, skipped, not_found, error
var VulnLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sbomguard_vuln_lookups_total",
	Help: "Total number of vulnerability lookups by outcome",
}, []string{"outcome"})

var VulnLookupRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sbomguard_vuln_lookup_retries_total",
	Help: "Total number of retried requests against the vulnerability database",
})

var VulnLookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "sbomguard_vuln_lookup_duration_seconds",
	Help:    "Duration of uncached vulnerability lookups in seconds",
	Buckets: prometheus.DefBuckets,
})
