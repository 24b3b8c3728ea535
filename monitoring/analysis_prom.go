// Copyright 2026 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "sbomguard_analysis_duration_seconds",
	Help:    "Duration of analysis pipeline runs in seconds",
	Buckets: prometheus.DefBuckets,
})

var AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sbomguard_analyses_total",
	Help: "Total number of finished analyses by status and error kind",
}, []string{"status", "error_kind"})

var AnalysisCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sbomguard_analysis_cache_hits_total",
	Help: "Total number of submissions served from a completed analysis",
})

var AnalysesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "sbomguard_analyses_in_flight",
	Help: "Number of analyses currently running on this instance",
})

var QuotaRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sbomguard_quota_rejections_total",
	Help: "Total number of submissions rejected by the usage guard",
})
