// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics holds the Prometheus instrumentation for the
// similarity engine: tokenization timing, candidate-pair volume,
// tiler timing, and cancellations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenizeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simscan_tokenize_duration_seconds",
		Help:    "Tokenization duration per submission in seconds, by language",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"language"})

	candidatePairsTotal = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "simscan_candidate_pairs",
		Help:    "Number of candidate pairs ranked per job",
		Buckets: []float64{0, 1, 10, 40, 100, 200, 500},
	})

	tilerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "simscan_tiler_duration_seconds",
		Help:    "RKR-GST tiling duration per pair in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	jobsCancelledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simscan_jobs_cancelled_total",
		Help: "Total jobs cancelled, by pipeline stage",
	}, []string{"stage"})

	jobsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simscan_jobs_completed_total",
		Help: "Total jobs completed, by outcome",
	}, []string{"outcome"})

	tokenizationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "simscan_tokenization_errors_total",
		Help: "Total per-document tokenization failures",
	})
)

// ObserveTokenizeDuration records how long tokenizing one submission in
// the given language took.
func ObserveTokenizeDuration(language string, seconds float64) {
	tokenizeDuration.WithLabelValues(language).Observe(seconds)
}

// ObserveCandidatePairs records how many candidate pairs a job's rank
// step produced.
func ObserveCandidatePairs(n int) {
	candidatePairsTotal.Observe(float64(n))
}

// ObserveTilerDuration records how long the tiler took for one pair.
func ObserveTilerDuration(seconds float64) {
	tilerDuration.Observe(seconds)
}

// RecordCancellation increments the cancellation counter for the stage
// the job was cancelled in: "tokenize", "rank", or "tile".
func RecordCancellation(stage string) {
	jobsCancelledTotal.WithLabelValues(stage).Inc()
}

// RecordJobCompleted increments the completion counter for the given
// outcome: "ok", "cancelled", or "error".
func RecordJobCompleted(outcome string) {
	jobsCompletedTotal.WithLabelValues(outcome).Inc()
}

// RecordTokenizationError increments the per-document tokenization
// failure counter.
func RecordTokenizationError() {
	tokenizationErrorsTotal.Inc()
}
