// Crossfeed - Cross-Platform Content Preference Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/crossfeed

// Package metrics holds the Prometheus collectors for Crossfeed and small
// Record* helpers so callers never touch label ordering directly. Every
// collector registers with the default registry via promauto and is served
// by the API server at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Write path

	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossfeed_interactions_recorded_total",
			Help: "Interactions recorded, by platform and interaction type",
		},
		[]string{"platform", "type"},
	)

	WriteTxDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crossfeed_write_tx_duration_seconds",
			Help:    "Duration of write transactions including lock wait",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	WriteTxErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossfeed_write_tx_errors_total",
			Help: "Failed write transactions, by operation and error kind",
		},
		[]string{"operation", "kind"},
	)

	// Read path

	ScoreDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crossfeed_score_duration_seconds",
			Help:    "Time to score one item",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	ScoreDegraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossfeed_score_degraded_total",
			Help: "Score terms that fell back to zero after a storage error",
		},
		[]string{"term"},
	)

	ItemsRanked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crossfeed_items_ranked_total",
			Help: "Candidate items passed through Rank",
		},
	)

	// Retention

	PurgeRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossfeed_purge_runs_total",
			Help: "Purge runs by outcome",
		},
		[]string{"outcome"},
	)

	PurgeDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossfeed_purge_deleted_rows_total",
			Help: "Rows deleted by purge, by table",
		},
		[]string{"table"},
	)

	// Auxiliary scorer

	AuxRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossfeed_aux_scorer_requests_total",
			Help: "Auxiliary scorer calls by outcome (ok, error, rate_limited, circuit_open)",
		},
		[]string{"outcome"},
	)

	AuxCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crossfeed_aux_scorer_circuit_state",
			Help: "Auxiliary scorer circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// HTTP API

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crossfeed_api_requests_total",
			Help: "API requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crossfeed_api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crossfeed_api_active_requests",
			Help: "API requests currently being served",
		},
	)
)

// RecordInteraction counts one recorded interaction.
func RecordInteraction(platform, interactionType string) {
	InteractionsRecorded.WithLabelValues(platform, interactionType).Inc()
}

// RecordWriteTx observes one write transaction. errKind is empty on success.
func RecordWriteTx(operation string, duration time.Duration, errKind string) {
	WriteTxDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if errKind != "" {
		WriteTxErrors.WithLabelValues(operation, errKind).Inc()
	}
}

// RecordScore observes the time to score one item.
func RecordScore(duration time.Duration) {
	ScoreDuration.Observe(duration.Seconds())
}

// RecordScoreDegraded counts a score term that fell back to zero.
func RecordScoreDegraded(term string) {
	ScoreDegraded.WithLabelValues(term).Inc()
}

// RecordRank counts items passed through Rank.
func RecordRank(n int) {
	ItemsRanked.Add(float64(n))
}

// RecordPurge records a purge run and its per-table deletions.
func RecordPurge(deleted map[string]int64, err error) {
	if err != nil {
		PurgeRuns.WithLabelValues("error").Inc()
		return
	}
	PurgeRuns.WithLabelValues("ok").Inc()
	for table, n := range deleted {
		PurgeDeleted.WithLabelValues(table).Add(float64(n))
	}
}

// RecordAuxRequest counts one auxiliary scorer call.
func RecordAuxRequest(outcome string) {
	AuxRequests.WithLabelValues(outcome).Inc()
}

// SetAuxCircuitState publishes the breaker state.
func SetAuxCircuitState(state int) {
	AuxCircuitState.Set(float64(state))
}

// RecordAPIRequest observes one served request. route is the matched
// route pattern, not the raw path, to bound label cardinality.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
