// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.


package watch

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("templint.watch")
	meter  = otel.Meter("templint.watch")
)

var (
	batchTotal    metric.Int64Counter
	batchFiles    metric.Int64Histogram
	batchFailures metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		batchTotal, err = meter.Int64Counter(
			"templint_watch_batches_total",
			metric.WithDescription("Debounced change batches linted"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		batchFiles, err = meter.Int64Histogram(
			"templint_watch_batch_files",
			metric.WithDescription("Files linted per change batch"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		batchFailures, err = meter.Int64Counter(
			"templint_watch_batch_failures_total",
			metric.WithDescription("Change batches that failed to lint"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startBatchSpan(ctx context.Context, files, removed int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Watcher.lintBatch",
		trace.WithAttributes(
			attribute.Int("watch.files", files),
			attribute.Int("watch.removed", removed),
		),
	)
}

func setBatchSpanResult(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func recordBatch(ctx context.Context, files int, err error) {
	if initMetrics() != nil {
		return
	}
	batchTotal.Add(ctx, 1)
	batchFiles.Record(ctx, int64(files))
	if err != nil {
		batchFailures.Add(ctx, 1)
	}
}
