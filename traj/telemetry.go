/*
 * telemetry.go, part of xmol.
 *
 * Copyright 2024 The xmol authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package traj

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for trajectory reads.
var (
	tracer = otel.Tracer("xmol.traj")
	meter  = otel.Meter("xmol.traj")
)

var (
	framesRead      metric.Int64Counter
	iterateDuration metric.Float64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error
		framesRead, err = meter.Int64Counter(
			"traj_frames_read_total",
			metric.WithDescription("Total number of trajectory frames read"),
		)
		if err != nil {
			metricsErr = err
			return
		}
		iterateDuration, err = meter.Float64Histogram(
			"traj_iterate_duration_seconds",
			metric.WithDescription("Duration of trajectory iterations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Trajectory."+name, trace.WithAttributes(attrs...))
}

// endSpan records err, if any, on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func recordFrames(ctx context.Context, n int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	framesRead.Add(ctx, int64(n), metric.WithAttributes(attribute.Bool("success", success)))
}

func recordIterate(ctx context.Context, d time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}
	iterateDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}
