// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/templint/services/markup/htmltree"
	"github.com/AleutianAI/templint/services/markup/template"
)

// Package-level tracer and meter for template analysis.
var (
	tracer = otel.Tracer("templint.analyzer")
	meter  = otel.Meter("templint.analyzer")
)

// Metrics for template analysis.
var (
	analyzeLatency  metric.Float64Histogram
	analyzeTotal    metric.Int64Counter
	parseErrorCount metric.Int64Histogram
	resolveFallback metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		analyzeLatency, err = meter.Float64Histogram(
			"templint_analyze_duration_seconds",
			metric.WithDescription("Duration of template serialize and parse"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		analyzeTotal, err = meter.Int64Counter(
			"templint_analyze_total",
			metric.WithDescription("Total number of analyzed templates"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseErrorCount, err = meter.Int64Histogram(
			"templint_parse_errors",
			metric.WithDescription("Number of HTML parse errors per template"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		resolveFallback, err = meter.Int64Counter(
			"templint_resolve_fallback_total",
			metric.WithDescription("Location resolutions that fell back to a coarser range"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordAnalyzeMetrics records metrics for one analysis.
func recordAnalyzeMetrics(ctx context.Context, mode htmltree.RootMode, duration time.Duration, errorCount int) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("mode", mode.String()))
	analyzeLatency.Record(ctx, duration.Seconds(), attrs)
	analyzeTotal.Add(ctx, 1, attrs)
	parseErrorCount.Record(ctx, int64(errorCount), attrs)
}

// recordResolveFallback counts a degraded location resolution.
func recordResolveFallback(ctx context.Context, res resolution) {
	if err := initMetrics(); err != nil {
		return
	}
	resolveFallback.Add(ctx, 1, metric.WithAttributes(attribute.String("level", res.String())))
}

// startAnalyzeSpan creates a span for analyzing one template.
//
// Returns:
//   - ctx: Context with span
//   - span: The created span (caller must call span.End())
func startAnalyzeSpan(ctx context.Context, t *template.Template) (context.Context, trace.Span) {
	return tracer.Start(ctx, "analyzer.New",
		trace.WithAttributes(
			attribute.Int("template.id", int(t.ID)),
			attribute.String("template.tag", t.Tag),
			attribute.Int("template.expressions", len(t.Expressions)),
		),
	)
}

// setAnalyzeSpanResult sets the result attributes on an analyze span.
func setAnalyzeSpanResult(span trace.Span, mode htmltree.RootMode, errorCount int) {
	span.SetAttributes(
		attribute.String("html.mode", mode.String()),
		attribute.Int("html.error_count", errorCount),
	)
}
