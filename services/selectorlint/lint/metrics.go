// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for lint operations.
var (
	tracer = otel.Tracer("selectorlint.lint")
	meter  = otel.Meter("selectorlint.lint")
)

// Metrics for lint operations.
var (
	lintLatency    metric.Float64Histogram
	offensesTotal  metric.Int64Counter
	correctionsTot metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		lintLatency, err = meter.Float64Histogram(
			"selectorlint_lint_duration_seconds",
			metric.WithDescription("Duration of single-file lint operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		offensesTotal, err = meter.Int64Counter(
			"selectorlint_offenses_total",
			metric.WithDescription("Total number of offenses reported, by rule"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		correctionsTot, err = meter.Int64Counter(
			"selectorlint_corrections_total",
			metric.WithDescription("Total number of offenses corrected by auto-fix"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startLintSpan creates a span for a lint operation.
func startLintSpan(ctx context.Context, name, filePath, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("lint.file_path", filePath),
			attribute.String("lint.run_id", runID),
		),
	)
}

// setLintSpanResult sets the result attributes on a lint span.
func setLintSpanResult(span trace.Span, issueCount, fixableCount, syntaxErrors int) {
	span.SetAttributes(
		attribute.Int("lint.issue_count", issueCount),
		attribute.Int("lint.fixable_count", fixableCount),
		attribute.Int("lint.syntax_error_count", syntaxErrors),
	)
}

// recordLintMetrics records metrics for a lint operation.
func recordLintMetrics(ctx context.Context, duration time.Duration, issues []Issue, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	lintLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Bool("success", success),
	))

	byRule := make(map[string]int64)
	for _, issue := range issues {
		byRule[issue.Rule]++
	}
	for rule, n := range byRule {
		offensesTotal.Add(ctx, n, metric.WithAttributes(
			attribute.String("rule", rule),
		))
	}
}

// recordCorrections records applied auto-fix corrections by rule.
func recordCorrections(ctx context.Context, byRule map[string]int) {
	if err := initMetrics(); err != nil {
		return
	}
	for rule, n := range byRule {
		correctionsTot.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("rule", rule),
		))
	}
}
