// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package repair

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects repair-loop counters. All counters are process-local
// and registered with the given registerer; pass a fresh registry in
// tests to avoid duplicate-registration panics.
type Metrics struct {
	// CyclesTotal counts completed repair cycles by trigger mode and
	// outcome.
	CyclesTotal *prometheus.CounterVec

	// EarlyPassesTotal counts cycles that ended at the pre-check without
	// invoking the AI backend.
	EarlyPassesTotal prometheus.Counter

	// GenerationsTotal counts AI generations by provider family.
	GenerationsTotal *prometheus.CounterVec

	// ApplyFailuresTotal counts cycles that failed while writing
	// generated code.
	ApplyFailuresTotal prometheus.Counter

	// CycleDuration tracks wall time per cycle.
	CycleDuration prometheus.Histogram
}

// NewMetrics registers and returns the repair metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mend",
			Subsystem: "repair",
			Name:      "cycles_total",
			Help:      "Completed repair cycles by trigger mode and outcome.",
		}, []string{"forced", "outcome"}),

		EarlyPassesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mend",
			Subsystem: "repair",
			Name:      "early_passes_total",
			Help:      "Cycles that passed at the pre-check without generation.",
		}),

		GenerationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mend",
			Subsystem: "repair",
			Name:      "generations_total",
			Help:      "AI code generations by provider family.",
		}, []string{"family"}),

		ApplyFailuresTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "mend",
			Subsystem: "repair",
			Name:      "apply_failures_total",
			Help:      "Cycles aborted while applying generated code.",
		}),

		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mend",
			Subsystem: "repair",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time per repair cycle.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}

// DefaultMetrics registers against the global prometheus registry.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}
