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

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

var errAccessDenied = errors.New("access denied")

type fakeManager struct {
	running map[string]bool
	failOn  string
	queried []string
	closed  bool
}

func (m *fakeManager) IsRunning(name string) (bool, error) {
	m.queried = append(m.queried, name)

	if name == m.failOn {
		return false, errAccessDenied
	}

	return m.running[name], nil
}

func (m *fakeManager) Close() error {
	m.closed = true

	return nil
}

func newTestWindowsChecker(m *fakeManager, openErr error) *WindowsChecker {
	c := NewWindowsChecker(logger.NewTestLogger())
	c.open = func() (serviceManager, error) {
		if openErr != nil {
			return nil, openErr
		}

		return m, nil
	}

	return c
}

func TestWindowsChecker(t *testing.T) {
	tests := []struct {
		name        string
		running     map[string]bool
		failOn      string
		services    []string
		want        bool
		wantQueried []string
	}{
		{
			name:        "all running",
			running:     map[string]bool{"greengrass": true, "W32Time": true},
			services:    []string{"greengrass", "W32Time"},
			want:        true,
			wantQueried: []string{"greengrass", "W32Time"},
		},
		{
			name:        "one stopped",
			running:     map[string]bool{"a": true, "c": true},
			services:    []string{"a", "b", "c"},
			wantQueried: []string{"a", "b"},
		},
		{
			name:        "query error",
			running:     map[string]bool{"a": true},
			failOn:      "a",
			services:    []string{"a"},
			wantQueried: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeManager{running: tt.running, failOn: tt.failOn}

			got := newTestWindowsChecker(m, nil).Check(context.Background(), tt.services)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantQueried, m.queried)
			assert.True(t, m.closed)
		})
	}
}

func TestWindowsChecker_ManagerUnavailable(t *testing.T) {
	c := newTestWindowsChecker(nil, errSCMUnavailable)

	assert.False(t, c.Check(context.Background(), []string{"greengrass"}))
	assert.True(t, c.Check(context.Background(), nil), "empty list never connects")
}

func TestWindowsChecker_CanceledContext(t *testing.T) {
	m := &fakeManager{running: map[string]bool{"a": true}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, newTestWindowsChecker(m, nil).Check(ctx, []string{"a"}))
	assert.Empty(t, m.queried)
}
