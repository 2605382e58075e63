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
	"os/exec"
	"strings"
	"time"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

const activeState = "active"

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// SystemdChecker asks systemctl whether each unit is active.
type SystemdChecker struct {
	run     commandRunner
	timeout time.Duration
	logger  logger.Logger
}

func NewSystemdChecker(timeout time.Duration, log logger.Logger) *SystemdChecker {
	return &SystemdChecker{
		run:     runCommand,
		timeout: timeout,
		logger:  log,
	}
}

func (*SystemdChecker) Platform() string {
	return PlatformLinux
}

func (*SystemdChecker) Supported() bool {
	return true
}

// Check stops at the first unit that is not active.
func (c *SystemdChecker) Check(ctx context.Context, names []string) bool {
	for _, name := range names {
		if !c.isActive(ctx, name) {
			return false
		}
	}

	return true
}

func (c *SystemdChecker) isActive(ctx context.Context, name string) bool {
	if err := validateServiceName(name); err != nil {
		c.logger.Warn().Err(err).Msg("Refusing to query service")

		return false
	}

	cmdCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	output, err := c.run(cmdCtx, "systemctl", "is-active", name)
	state := strings.TrimSpace(string(output))

	if err != nil {
		c.logger.Debug().Err(err).Str("service", name).Str("state", state).Msg("service running: No")

		return false
	}

	running := state == activeState

	c.logger.Debug().Str("service", name).Str("state", state).Bool("running", running).Msg("Service status")

	return running
}
