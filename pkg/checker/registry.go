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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/gatewaymon/pkg/checker/service"
	"github.com/carverauto/gatewaymon/pkg/logger"
)

var (
	errNoProbe        = errors.New("no probe registered")
	errMissingChecker = errors.New("service probe requires a service checker")
)

// Target carries everything a probe factory may need to reach the gateway.
type Target struct {
	Address       string
	Port          int
	Timeout       time.Duration
	HealthPath    string
	Credentials   *Credentials
	TLSSkipVerify bool
	CAFile        string
	Services      []string
	Checker       service.Checker
}

// ProbeCreator builds a probe for a target.
type ProbeCreator func(target *Target, log logger.Logger) (Probe, error)

// Registry defines how to store and retrieve probe factories.
type Registry interface {
	Register(kind string, creator ProbeCreator)
	Get(kind string, target *Target, log logger.Logger) (Probe, error)
}

type probeRegistry struct {
	factories map[string]ProbeCreator
}

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return &probeRegistry{
		factories: make(map[string]ProbeCreator),
	}
}

// NewDefaultRegistry returns a registry with the built-in probe kinds.
func NewDefaultRegistry() Registry {
	r := NewRegistry()

	r.Register(ProbeICMP, func(t *Target, log logger.Logger) (Probe, error) {
		return NewICMPProbe(t.Address, t.Timeout, log), nil
	})

	r.Register(ProbePort, func(t *Target, log logger.Logger) (Probe, error) {
		return NewPortProbe(t.Address, t.Port, t.Timeout, log), nil
	})

	r.Register(ProbeServices, func(t *Target, log logger.Logger) (Probe, error) {
		if t.Checker == nil {
			return nil, errMissingChecker
		}

		return NewServiceProbe(t.Checker, t.Services, log), nil
	})

	r.Register(ProbeHealth, func(t *Target, log logger.Logger) (Probe, error) {
		return NewHealthProbe(&HealthSettings{
			Address:       t.Address,
			Port:          t.Port,
			Path:          t.HealthPath,
			Timeout:       t.Timeout,
			Credentials:   t.Credentials,
			TLSSkipVerify: t.TLSSkipVerify,
			CAFile:        t.CAFile,
		}, log)
	})

	return r
}

func (r *probeRegistry) Register(kind string, creator ProbeCreator) {
	r.factories[kind] = creator
}

func (r *probeRegistry) Get(kind string, target *Target, log logger.Logger) (Probe, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNoProbe, kind)
	}

	return f(target, log)
}
