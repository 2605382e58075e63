/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/gatewaymon/pkg/models"
)

const meterName = "github.com/carverauto/gatewaymon"

// Instrument names.
const (
	ProbeDurationName = "gateway.probe.duration"
	ProbeFailuresName = "gateway.probe.failures"
	CyclesName        = "gateway.cycles"
	CycleDurationName = "gateway.cycle.duration"
	CyclesSkippedName = "gateway.cycles.skipped"
	AvailableName     = "gateway.available"
)

// Recorder records probe and cycle outcomes.
type Recorder struct {
	probeDuration metric.Float64Histogram
	probeFailures metric.Int64Counter
	cycles        metric.Int64Counter
	cycleDuration metric.Float64Histogram
	skipped       metric.Int64Counter
	available     metric.Int64Gauge
}

func NewRecorder(provider metric.MeterProvider) (*Recorder, error) {
	meter := provider.Meter(meterName)

	var (
		r   Recorder
		err error
	)

	if r.probeDuration, err = meter.Float64Histogram(ProbeDurationName,
		metric.WithDescription("Probe latency"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create %s: %w", ProbeDurationName, err)
	}

	if r.probeFailures, err = meter.Int64Counter(ProbeFailuresName,
		metric.WithDescription("Failed probes")); err != nil {
		return nil, fmt.Errorf("create %s: %w", ProbeFailuresName, err)
	}

	if r.cycles, err = meter.Int64Counter(CyclesName,
		metric.WithDescription("Completed poll cycles by resolved state")); err != nil {
		return nil, fmt.Errorf("create %s: %w", CyclesName, err)
	}

	if r.cycleDuration, err = meter.Float64Histogram(CycleDurationName,
		metric.WithDescription("Poll cycle latency"), metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("create %s: %w", CycleDurationName, err)
	}

	if r.skipped, err = meter.Int64Counter(CyclesSkippedName,
		metric.WithDescription("Ticks dropped because a cycle was still running")); err != nil {
		return nil, fmt.Errorf("create %s: %w", CyclesSkippedName, err)
	}

	if r.available, err = meter.Int64Gauge(AvailableName,
		metric.WithDescription("1 when the gateway resolved AVAILABLE in the last cycle")); err != nil {
		return nil, fmt.Errorf("create %s: %w", AvailableName, err)
	}

	return &r, nil
}

func (r *Recorder) ObserveProbe(ctx context.Context, name string, passed bool, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("probe", name), attribute.Bool("passed", passed))

	r.probeDuration.Record(ctx, elapsed.Seconds(), attrs)

	if !passed {
		r.probeFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("probe", name)))
	}
}

func (r *Recorder) ObserveCycle(ctx context.Context, state models.Availability, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("state", state.String()))

	r.cycles.Add(ctx, 1, attrs)
	r.cycleDuration.Record(ctx, elapsed.Seconds(), attrs)

	var up int64
	if state.IsAvailable() {
		up = 1
	}

	r.available.Record(ctx, up)
}

func (r *Recorder) CycleSkipped(ctx context.Context) {
	r.skipped.Add(ctx, 1)
}
