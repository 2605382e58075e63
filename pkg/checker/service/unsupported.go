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

// UnsupportedChecker is used on platforms without a service manager integration.
// It reports false for every list, including an empty one.
type UnsupportedChecker struct {
	platform string
	logger   logger.Logger
}

func NewUnsupportedChecker(platform string, log logger.Logger) *UnsupportedChecker {
	return &UnsupportedChecker{platform: platform, logger: log}
}

func (c *UnsupportedChecker) Platform() string {
	return c.platform
}

func (*UnsupportedChecker) Supported() bool {
	return false
}

func (c *UnsupportedChecker) Check(_ context.Context, names []string) bool {
	c.logger.Warn().Str("platform", c.platform).Strs("services", names).Msg("Service checks are not supported on this platform")

	return false
}
