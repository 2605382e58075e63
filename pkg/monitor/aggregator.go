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

package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/carverauto/gatewaymon/pkg/checker"
	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/models"
)

// ProbeObserver receives the outcome of every probe.
type ProbeObserver interface {
	ObserveProbe(ctx context.Context, name string, passed bool, elapsed time.Duration)
}

// probeSets lists the probes each mode requires, in execution order.
var probeSets = map[Mode][]string{
	ModeInfra:  {checker.ProbeICMP, checker.ProbePort, checker.ProbeServices},
	ModeHealth: {checker.ProbeHealth},
}

// Aggregator runs a mode's probes sequentially and combines their results.
type Aggregator struct {
	mode     Mode
	address  string
	probes   []checker.Probe
	observer ProbeObserver
	logger   logger.Logger
}

func NewAggregator(mode Mode, address string, probes []checker.Probe, observer ProbeObserver, log logger.Logger) *Aggregator {
	return &Aggregator{
		mode:     mode,
		address:  address,
		probes:   probes,
		observer: observer,
		logger:   log,
	}
}

// Run evaluates every probe, even after one has failed, and resolves the state.
func (a *Aggregator) Run(ctx context.Context) (models.Availability, []checker.Result) {
	results := make([]checker.Result, 0, len(a.probes))

	for _, p := range a.probes {
		result := a.runProbe(ctx, p)
		a.logResult(&result)

		if a.observer != nil {
			a.observer.ObserveProbe(ctx, result.Probe, result.Passed, result.Elapsed)
		}

		results = append(results, result)
	}

	state := Resolve(a.mode, results)

	if state.IsAvailable() {
		a.logger.Info().Str("gateway", a.address).Msg("Gateway is AVAILABLE")
	} else {
		a.logger.Warn().Str("gateway", a.address).Msg("Gateway is UNAVAILABLE")
	}

	return state, results
}

func (*Aggregator) runProbe(ctx context.Context, p checker.Probe) (result checker.Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", checker.ErrProbePanic, r)
			result = checker.Result{Probe: p.Name(), Message: err.Error(), Err: err, Elapsed: time.Since(start)}
		}
	}()

	return p.Check(ctx)
}

func (a *Aggregator) logResult(r *checker.Result) {
	switch r.Probe {
	case checker.ProbeICMP:
		a.logger.Debug().Dur("elapsed", r.Elapsed).Msgf("Ping %s: %s", a.address, outcome(r.Passed, "Success", "Failed"))
	case checker.ProbePort:
		a.logger.Debug().Dur("elapsed", r.Elapsed).Msgf("Port open: %s", outcome(r.Passed, "Yes", "No"))
	case checker.ProbeServices:
		a.logger.Debug().Dur("elapsed", r.Elapsed).Msgf("Services running: %s", outcome(r.Passed, "Yes", "No"))
	default:
		a.logger.Debug().Str("probe", r.Probe).Bool("passed", r.Passed).Dur("elapsed", r.Elapsed).Msg("Probe finished")
	}

	if r.Err != nil && r.Kind() == checker.FailureInternal {
		a.logger.Error().Err(r.Err).Str("probe", r.Probe).Msg("Probe failed unexpectedly")
	}
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}

	return no
}

// Resolve applies the availability rule: every probe required by mode must be
// present and every result must have passed. Anything else is UNAVAILABLE.
func Resolve(mode Mode, results []checker.Result) models.Availability {
	required, ok := probeSets[mode]
	if !ok {
		return models.Unavailable
	}

	seen := make(map[string]bool, len(results))

	for _, r := range results {
		if !r.Passed {
			return models.Unavailable
		}

		seen[r.Probe] = true
	}

	for _, name := range required {
		if !seen[name] {
			return models.Unavailable
		}
	}

	return models.Available
}
