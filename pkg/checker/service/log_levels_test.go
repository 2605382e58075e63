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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

func logLevels(t *testing.T, buf *bytes.Buffer) []string {
	t.Helper()

	var levels []string

	scanner := bufio.NewScanner(bytes.NewReader(buf.Bytes()))
	for scanner.Scan() {
		var entry struct {
			Level string `json:"level"`
		}

		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), scanner.Text())

		levels = append(levels, entry.Level)
	}

	return levels
}

func TestCheckers_FailuresNeverLogAtErrorLevel(t *testing.T) {
	tests := []struct {
		name      string
		build     func(log logger.Logger) Checker
		services  []string
		wantLevel string
	}{
		{
			name: "service control manager unavailable",
			build: func(log logger.Logger) Checker {
				c := NewWindowsChecker(log)
				c.open = func() (serviceManager, error) { return nil, errSCMUnavailable }

				return c
			},
			services:  []string{"greengrass"},
			wantLevel: "warn",
		},
		{
			name: "windows query error",
			build: func(log logger.Logger) Checker {
				c := NewWindowsChecker(log)
				c.open = func() (serviceManager, error) {
					return &fakeManager{failOn: "greengrass"}, nil
				}

				return c
			},
			services:  []string{"greengrass"},
			wantLevel: "warn",
		},
		{
			name: "systemd unit inactive",
			build: func(log logger.Logger) Checker {
				c := NewSystemdChecker(time.Second, log)
				c.run = (&fakeSystemctl{states: map[string]string{"greengrass": "failed"}}).run

				return c
			},
			services:  []string{"greengrass"},
			wantLevel: "debug",
		},
		{
			name: "systemd invalid name",
			build: func(log logger.Logger) Checker {
				c := NewSystemdChecker(time.Second, log)
				c.run = (&fakeSystemctl{}).run

				return c
			},
			services:  []string{"green grass;"},
			wantLevel: "warn",
		},
		{
			name: "unsupported platform",
			build: func(log logger.Logger) Checker {
				return NewUnsupportedChecker("darwin", log)
			},
			services:  []string{"launchd"},
			wantLevel: "warn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			c := tt.build(logger.NewWriterLogger(&buf, zerolog.DebugLevel))

			assert.False(t, c.Check(context.Background(), tt.services))

			levels := logLevels(t, &buf)
			assert.Contains(t, levels, tt.wantLevel)
			assert.NotContains(t, levels, "error")
		})
	}
}
