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

// Package service reports whether named operating-system services are running.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"time"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

//go:generate mockgen -destination=mock_service.go -package=service github.com/carverauto/gatewaymon/pkg/checker/service Checker

const (
	PlatformLinux   = "linux"
	PlatformWindows = "windows"

	maxServiceNameLength = 256
)

var (
	// validServiceName allows alphanumerics, hyphens, underscores, periods and systemd template markers.
	validServiceName = regexp.MustCompile(`^[a-zA-Z0-9\-_.@]+$`)

	errInvalidServiceName = errors.New("invalid service name")
	errSCMUnavailable     = errors.New("service control manager unavailable")
)

// Checker answers whether every named service is currently running.
// An empty list is vacuously true. Any error is reported as false.
type Checker interface {
	Platform() string
	Supported() bool
	Check(ctx context.Context, names []string) bool
}

// New returns the checker for the operating system the binary runs on.
func New(timeout time.Duration, log logger.Logger) Checker {
	return NewForPlatform(runtime.GOOS, timeout, log)
}

// NewForPlatform selects the checker variant for goos.
func NewForPlatform(goos string, timeout time.Duration, log logger.Logger) Checker {
	switch goos {
	case PlatformLinux:
		return NewSystemdChecker(timeout, log)
	case PlatformWindows:
		return NewWindowsChecker(log)
	default:
		return NewUnsupportedChecker(goos, log)
	}
}

func validateServiceName(name string) error {
	if len(name) > maxServiceNameLength {
		return fmt.Errorf("%w: name too long (max %d characters)", errInvalidServiceName, maxServiceNameLength)
	}

	if !validServiceName.MatchString(name) {
		return fmt.Errorf("%w: %q", errInvalidServiceName, name)
	}

	return nil
}
