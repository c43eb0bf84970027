// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("templint.extract")
	meter  = otel.Meter("templint.extract")
)

var (
	extractLatency     metric.Float64Histogram
	templatesExtracted metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		extractLatency, err = meter.Float64Histogram(
			"templint_extract_duration_seconds",
			metric.WithDescription("Duration of template extraction per file"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		templatesExtracted, err = meter.Int64Histogram(
			"templint_templates_extracted",
			metric.WithDescription("Number of tagged templates found per file"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordExtractMetrics(ctx context.Context, language string, duration time.Duration, count int) {
	if err := initMetrics(); err != nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("language", language))
	extractLatency.Record(ctx, duration.Seconds(), attrs)
	templatesExtracted.Record(ctx, int64(count), attrs)
}

func startExtractSpan(ctx context.Context, path, language string, size int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Extractor.Extract",
		trace.WithAttributes(
			attribute.String("extract.file", path),
			attribute.String("extract.language", language),
			attribute.Int("extract.content_size", size),
		),
	)
}

func setExtractSpanResult(span trace.Span, count int, syntaxErrors bool) {
	span.SetAttributes(
		attribute.Int("extract.template_count", count),
		attribute.Bool("extract.syntax_errors", syntaxErrors),
	)
}
