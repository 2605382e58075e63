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
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/gatewaymon/pkg/checker"
	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/models"
)

var errUnreachable = errors.New("host unreachable")

func mockProbe(ctrl *gomock.Controller, name string, pass bool) *checker.MockProbe {
	p := checker.NewMockProbe(ctrl)
	p.EXPECT().Name().Return(name).AnyTimes()

	result := checker.Result{Probe: name, Passed: pass, Elapsed: time.Millisecond}
	if !pass {
		result.Err = fmt.Errorf("%w: %w", checker.ErrTransport, errUnreachable)
		result.Message = result.Err.Error()
	}

	p.EXPECT().Check(gomock.Any()).Return(result)

	return p
}

type recordingObserver struct {
	probes []string
	states []models.Availability
}

func (r *recordingObserver) ObserveProbe(_ context.Context, name string, _ bool, _ time.Duration) {
	r.probes = append(r.probes, name)
}

func (r *recordingObserver) ObserveCycle(_ context.Context, state models.Availability, _ time.Duration) {
	r.states = append(r.states, state)
}

func TestAggregator_InfraIsANDOfAllProbes(t *testing.T) {
	for mask := 0; mask < 8; mask++ {
		ping, port, services := mask&1 != 0, mask&2 != 0, mask&4 != 0

		t.Run(fmt.Sprintf("ping=%t/port=%t/services=%t", ping, port, services), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			observer := &recordingObserver{}

			probes := []checker.Probe{
				mockProbe(ctrl, checker.ProbeICMP, ping),
				mockProbe(ctrl, checker.ProbePort, port),
				mockProbe(ctrl, checker.ProbeServices, services),
			}

			agg := NewAggregator(ModeInfra, "10.0.0.5", probes, observer, logger.NewTestLogger())
			state, results := agg.Run(context.Background())

			want := models.AvailabilityFromBool(ping && port && services)
			assert.Equal(t, want, state)
			require.Len(t, results, 3, "every probe runs even after a failure")
			assert.Equal(t, []string{checker.ProbeICMP, checker.ProbePort, checker.ProbeServices}, observer.probes)
		})
	}
}

func TestAggregator_ScenarioReachabilityAndConnectivityFail(t *testing.T) {
	ctrl := gomock.NewController(t)

	probes := []checker.Probe{
		mockProbe(ctrl, checker.ProbeICMP, false),
		mockProbe(ctrl, checker.ProbePort, false),
		mockProbe(ctrl, checker.ProbeServices, true),
	}

	state, _ := NewAggregator(ModeInfra, "10.0.0.5", probes, nil, logger.NewTestLogger()).Run(context.Background())

	assert.False(t, state.IsAvailable())
}

func TestAggregator_HealthMode(t *testing.T) {
	for _, pass := range []bool{true, false} {
		ctrl := gomock.NewController(t)
		probes := []checker.Probe{mockProbe(ctrl, checker.ProbeHealth, pass)}

		state, _ := NewAggregator(ModeHealth, "gw", probes, nil, logger.NewTestLogger()).Run(context.Background())

		assert.Equal(t, models.AvailabilityFromBool(pass), state)
	}
}

type panickingProbe struct{}

func (panickingProbe) Name() string { return checker.ProbePort }

func (panickingProbe) Check(context.Context) checker.Result {
	panic("nil dialer")
}

func TestAggregator_RecoversProbePanic(t *testing.T) {
	ctrl := gomock.NewController(t)

	probes := []checker.Probe{
		mockProbe(ctrl, checker.ProbeICMP, true),
		panickingProbe{},
		mockProbe(ctrl, checker.ProbeServices, true),
	}

	state, results := NewAggregator(ModeInfra, "gw", probes, nil, logger.NewTestLogger()).Run(context.Background())

	assert.Equal(t, models.Unavailable, state)
	require.Len(t, results, 3)
	require.ErrorIs(t, results[1].Err, checker.ErrProbePanic)
	assert.Equal(t, checker.FailureInternal, results[1].Kind())
}

func TestResolve(t *testing.T) {
	pass := func(name string) checker.Result { return checker.Result{Probe: name, Passed: true} }
	fail := func(name string) checker.Result { return checker.Result{Probe: name} }

	tests := []struct {
		name    string
		mode    Mode
		results []checker.Result
		want    models.Availability
	}{
		{
			name:    "infra all pass",
			mode:    ModeInfra,
			results: []checker.Result{pass(checker.ProbeICMP), pass(checker.ProbePort), pass(checker.ProbeServices)},
			want:    models.Available,
		},
		{
			name:    "infra missing probe",
			mode:    ModeInfra,
			results: []checker.Result{pass(checker.ProbeICMP), pass(checker.ProbePort)},
			want:    models.Unavailable,
		},
		{
			name:    "infra services fail",
			mode:    ModeInfra,
			results: []checker.Result{pass(checker.ProbeICMP), pass(checker.ProbePort), fail(checker.ProbeServices)},
			want:    models.Unavailable,
		},
		{name: "health pass", mode: ModeHealth, results: []checker.Result{pass(checker.ProbeHealth)}, want: models.Available},
		{name: "health fail", mode: ModeHealth, results: []checker.Result{fail(checker.ProbeHealth)}, want: models.Unavailable},
		{name: "no results", mode: ModeHealth, want: models.Unavailable},
		{name: "unknown mode", mode: "auto", results: []checker.Result{pass(checker.ProbeHealth)}, want: models.Unavailable},
		{
			name:    "extra failing probe",
			mode:    ModeHealth,
			results: []checker.Result{pass(checker.ProbeHealth), fail(checker.ProbePort)},
			want:    models.Unavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.mode, tt.results))
			assert.Equal(t, tt.want, Resolve(tt.mode, tt.results), "resolution is pure")
		})
	}
}
