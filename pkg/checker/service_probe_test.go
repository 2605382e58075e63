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

package checker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/gatewaymon/pkg/checker/service"
	"github.com/carverauto/gatewaymon/pkg/logger"
)

func TestServiceProbe(t *testing.T) {
	names := []string{"greengrass", "nucleus"}

	tests := []struct {
		name      string
		running   bool
		supported bool
		wantPass  bool
		wantKind  FailureKind
	}{
		{name: "all running", running: true, supported: true, wantPass: true, wantKind: FailureNone},
		{name: "service down", running: false, supported: true, wantKind: FailureService},
		{name: "unsupported platform", running: false, supported: false, wantKind: FailurePlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			checker := service.NewMockChecker(ctrl)

			checker.EXPECT().Check(gomock.Any(), names).Return(tt.running)

			if !tt.running {
				checker.EXPECT().Supported().Return(tt.supported)
			}

			if !tt.running && !tt.supported {
				checker.EXPECT().Platform().Return("plan9")
			}

			probe := NewServiceProbe(checker, names, logger.NewTestLogger())
			result := probe.Check(context.Background())

			assert.Equal(t, tt.wantPass, result.Passed)
			assert.Equal(t, tt.wantKind, result.Kind())
			assert.Equal(t, ProbeServices, result.Probe)
		})
	}
}

func TestServiceProbe_CopiesNames(t *testing.T) {
	ctrl := gomock.NewController(t)
	checker := service.NewMockChecker(ctrl)

	names := []string{"greengrass"}
	probe := NewServiceProbe(checker, names, logger.NewTestLogger())
	names[0] = "mutated"

	checker.EXPECT().Check(gomock.Any(), []string{"greengrass"}).Return(true)

	require.True(t, probe.Check(context.Background()).Passed)
}

func TestDefaultRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	registry := NewDefaultRegistry()
	log := logger.NewTestLogger()

	target := &Target{
		Address:    "127.0.0.1",
		Port:       443,
		HealthPath: "/greengrass-gateway/_health",
		Services:   []string{"greengrass"},
		Checker:    service.NewMockChecker(ctrl),
	}

	for _, kind := range []string{ProbeICMP, ProbePort, ProbeServices, ProbeHealth} {
		probe, err := registry.Get(kind, target, log)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, probe.Name())
	}

	_, err := registry.Get("snmp", target, log)
	require.ErrorIs(t, err, errNoProbe)
}

func TestDefaultRegistry_ServicesRequireChecker(t *testing.T) {
	_, err := NewDefaultRegistry().Get(ProbeServices, &Target{}, logger.NewTestLogger())

	require.ErrorIs(t, err, errMissingChecker)
}
