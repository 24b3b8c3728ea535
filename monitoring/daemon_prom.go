// Copyright 2026 l3montree GmbH.
// SPDX-License-Identifier: 	AGPL-3.0-or-later

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var StaleAnalysisReaperDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "sbomguard_daemon_stale_analysis_reaper_duration_seconds",
	Help:    "Duration of stale analysis reaper runs in seconds",
	Buckets: prometheus.DefBuckets,
})

var StaleAnalysesReapedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sbomguard_daemon_stale_analyses_reaped_total",
	Help: "Total number of analyses failed by the stale analysis reaper",
})
