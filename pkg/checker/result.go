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

// Package checker implements the individual gateway probes.
package checker

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -destination=mock_checker.go -package=checker github.com/carverauto/gatewaymon/pkg/checker Probe

var (
	// ErrTransport covers unreachable hosts, refused connections and exceeded timeouts.
	ErrTransport = errors.New("transport failure")
	// ErrPlatform covers missing service tooling and unsupported operating systems.
	ErrPlatform = errors.New("platform failure")
	// ErrProtocol is a non-2xx answer from the health endpoint.
	ErrProtocol = errors.New("protocol failure")
	// ErrUnrecognizedPayload is a health body that matches none of the known formats.
	ErrUnrecognizedPayload = errors.New("unrecognized health payload")
	// ErrServiceDown means a required OS service is not running.
	ErrServiceDown = errors.New("required service not running")
	// ErrGatewayReportedUnavailable is a well-formed health answer reporting UNAVAILABLE.
	ErrGatewayReportedUnavailable = errors.New("gateway reported UNAVAILABLE")
	// ErrProbePanic marks a probe that panicked and was recovered.
	ErrProbePanic = errors.New("probe panicked")
)

// Probe names, also used as registry kinds.
const (
	ProbeICMP     = "icmp"
	ProbePort     = "port"
	ProbeServices = "services"
	ProbeHealth   = "health"
)

// FailureKind classifies why a probe failed.
type FailureKind string

const (
	FailureNone      FailureKind = ""
	FailureTransport FailureKind = "transport"
	FailurePlatform  FailureKind = "platform"
	FailureProtocol  FailureKind = "protocol"
	FailurePayload   FailureKind = "payload"
	FailureService   FailureKind = "service"
	FailureReported  FailureKind = "reported"
	FailureInternal  FailureKind = "internal"
)

// Probe is a single bounded check. Check must never panic on expected failures and
// must return within the probe's configured timeout.
type Probe interface {
	Name() string
	Check(ctx context.Context) Result
}

// Result is the outcome of one probe within one cycle.
type Result struct {
	Probe   string
	Passed  bool
	Message string
	Err     error
	Elapsed time.Duration
}

// Kind derives the failure kind from the wrapped sentinel error.
func (r Result) Kind() FailureKind {
	switch {
	case r.Passed || r.Err == nil:
		return FailureNone
	case errors.Is(r.Err, ErrGatewayReportedUnavailable):
		return FailureReported
	case errors.Is(r.Err, ErrUnrecognizedPayload):
		return FailurePayload
	case errors.Is(r.Err, ErrProtocol):
		return FailureProtocol
	case errors.Is(r.Err, ErrPlatform):
		return FailurePlatform
	case errors.Is(r.Err, ErrServiceDown):
		return FailureService
	case errors.Is(r.Err, ErrTransport):
		return FailureTransport
	default:
		return FailureInternal
	}
}

func passed(name, msg string, start time.Time) Result {
	return Result{Probe: name, Passed: true, Message: msg, Elapsed: time.Since(start)}
}

func failed(name string, err error, start time.Time) Result {
	return Result{Probe: name, Passed: false, Message: err.Error(), Err: err, Elapsed: time.Since(start)}
}
