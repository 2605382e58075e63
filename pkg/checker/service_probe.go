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
	"fmt"
	"time"

	"github.com/carverauto/gatewaymon/pkg/checker/service"
	"github.com/carverauto/gatewaymon/pkg/logger"
)

// ServiceProbe requires every listed OS service to be running.
type ServiceProbe struct {
	checker service.Checker
	names   []string
	logger  logger.Logger
}

func NewServiceProbe(checker service.Checker, names []string, log logger.Logger) *ServiceProbe {
	return &ServiceProbe{
		checker: checker,
		names:   append([]string(nil), names...),
		logger:  log,
	}
}

func (*ServiceProbe) Name() string {
	return ProbeServices
}

func (p *ServiceProbe) Check(ctx context.Context) Result {
	start := time.Now()

	if p.checker.Check(ctx, p.names) {
		return passed(ProbeServices, fmt.Sprintf("%d services running", len(p.names)), start)
	}

	if !p.checker.Supported() {
		return failed(ProbeServices, fmt.Errorf("%w: no service checker for %s", ErrPlatform, p.checker.Platform()), start)
	}

	return failed(ProbeServices, fmt.Errorf("%w: %v", ErrServiceDown, p.names), start)
}
