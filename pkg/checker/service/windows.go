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

	"github.com/carverauto/gatewaymon/pkg/logger"
)

// serviceManager is an open connection to the Windows service control manager.
type serviceManager interface {
	IsRunning(name string) (bool, error)
	Close() error
}

type managerOpener func() (serviceManager, error)

// WindowsChecker queries the service control manager for each service state.
type WindowsChecker struct {
	open   managerOpener
	logger logger.Logger
}

func NewWindowsChecker(log logger.Logger) *WindowsChecker {
	return &WindowsChecker{
		open:   openServiceManager,
		logger: log,
	}
}

func (*WindowsChecker) Platform() string {
	return PlatformWindows
}

func (*WindowsChecker) Supported() bool {
	return true
}

// Check connects to the service manager once per call and stops at the first
// service that is not running.
func (c *WindowsChecker) Check(ctx context.Context, names []string) bool {
	if len(names) == 0 {
		return true
	}

	m, err := c.open()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to connect to service control manager")

		return false
	}

	defer func() {
		if err := m.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Error closing service control manager")
		}
	}()

	for _, name := range names {
		if ctx.Err() != nil {
			return false
		}

		running, err := m.IsRunning(name)
		if err != nil {
			c.logger.Warn().Err(err).Str("service", name).Msg("Failed to query service")

			return false
		}

		c.logger.Debug().Str("service", name).Bool("running", running).Msg("Service status")

		if !running {
			return false
		}
	}

	return true
}
