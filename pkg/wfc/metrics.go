// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package wfc

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for solver operations. The library
// records through the OpenTelemetry API only; exporter and SDK wiring
// belongs to the embedding application.
var (
	tracer = otel.Tracer("aleutian.wfc")
	meter  = otel.Meter("aleutian.wfc")
)

// Metrics for solver operations.
var (
	observationsTotal   metric.Int64Counter
	removalsTotal       metric.Int64Counter
	contradictionsTotal metric.Int64Counter
	restartsTotal       metric.Int64Counter
	runsCompletedTotal  metric.Int64Counter
	runDuration         metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		observationsTotal, err = meter.Int64Counter(
			"wfc_observations_total",
			metric.WithDescription("Cells collapsed to a single pattern"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		removalsTotal, err = meter.Int64Counter(
			"wfc_pattern_removals_total",
			metric.WithDescription("Patterns removed during constraint propagation"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		contradictionsTotal, err = meter.Int64Counter(
			"wfc_contradictions_total",
			metric.WithDescription("Runs that reached a cell with no possible patterns"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		restartsTotal, err = meter.Int64Counter(
			"wfc_restarts_total",
			metric.WithDescription("Run restarts performed by retry strategies"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runsCompletedTotal, err = meter.Int64Counter(
			"wfc_runs_completed_total",
			metric.WithDescription("Runs that produced a fully decided wave"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runDuration, err = meter.Float64Histogram(
			"wfc_run_duration_seconds",
			metric.WithDescription("Wall time of collapse attempts"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}
