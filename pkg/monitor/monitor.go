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

package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/carverauto/gatewaymon/pkg/checker"
	"github.com/carverauto/gatewaymon/pkg/checker/service"
	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/models"
)

// CycleObserver receives probe and cycle outcomes, typically a metrics.Recorder.
type CycleObserver interface {
	ProbeObserver
	ObserveCycle(ctx context.Context, state models.Availability, elapsed time.Duration)
}

type options struct {
	registry       checker.Registry
	serviceChecker service.Checker
	envCredentials *checker.Credentials
	observer       CycleObserver
	hostInfo       *models.HostInfo
}

// Option customizes a Monitor.
type Option func(*options)

// WithRegistry replaces the probe registry.
func WithRegistry(r checker.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithServiceChecker replaces the platform-detected service checker.
func WithServiceChecker(c service.Checker) Option {
	return func(o *options) {
		o.serviceChecker = c
	}
}

// WithEnvCredentials supplies the environment credential overrides instead of
// reading them from the process environment.
func WithEnvCredentials(c checker.Credentials) Option {
	return func(o *options) {
		o.envCredentials = &c
	}
}

// WithObserver records probe and cycle outcomes.
func WithObserver(obs CycleObserver) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithHostInfo attaches monitoring-host metadata to the device registration.
func WithHostInfo(info *models.HostInfo) Option {
	return func(o *options) {
		o.hostInfo = info
	}
}

// Monitor runs one availability cycle per call and reports it through the Sink.
type Monitor struct {
	cfg        Config
	device     *models.Device
	aggregator *Aggregator
	emitter    *Emitter
	observer   CycleObserver
	logger     logger.Logger
}

// New validates a private copy of cfg, builds the probe set for its mode and
// prepares the emitter. cfg itself is not modified.
func New(cfg *Config, sink Sink, log logger.Logger, opts ...Option) (*Monitor, error) {
	c := cloneConfig(cfg)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monitor configuration: %w", err)
	}

	o := options{registry: checker.NewDefaultRegistry()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.envCredentials == nil {
		creds, err := LoadCredentialOverrides()
		if err != nil {
			return nil, err
		}

		o.envCredentials = &creds
	}

	target := &checker.Target{
		Address:       c.GatewayAddress,
		Port:          c.Port,
		Timeout:       c.Timeout.Std(),
		HealthPath:    c.HealthPath,
		TLSSkipVerify: c.TLSSkipVerify,
		CAFile:        c.CAFile,
	}

	switch c.Mode {
	case ModeInfra:
		if o.serviceChecker == nil {
			o.serviceChecker = service.New(target.Timeout, log)
		}

		target.Checker = o.serviceChecker
		target.Services = c.ServicesFor(o.serviceChecker.Platform())
	case ModeHealth:
		if creds, ok := checker.ResolveCredentials(*o.envCredentials, c.ConfiguredCredentials()); ok {
			target.Credentials = &creds
		}
	}

	probes := make([]checker.Probe, 0, len(probeSets[c.Mode]))

	for _, kind := range probeSets[c.Mode] {
		p, err := o.registry.Get(kind, target, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s probe: %w", kind, err)
		}

		probes = append(probes, p)
	}

	var probeObserver ProbeObserver
	if o.observer != nil {
		probeObserver = o.observer
	}

	device := NewDevice(&c, o.hostInfo)

	log.Info().
		Str("gateway", c.GatewayAddress).
		Str("mode", string(c.Mode)).
		Dur("interval", c.ReadInterval.Std()).
		Bool("auth", target.Credentials != nil).
		Strs("services", target.Services).
		Msg("Gateway monitor initialized")

	return &Monitor{
		cfg:        c,
		device:     device,
		aggregator: NewAggregator(c.Mode, c.GatewayAddress, probes, probeObserver, log),
		emitter:    NewEmitter(sink, device, log),
		observer:   o.observer,
		logger:     log,
	}, nil
}

func cloneConfig(cfg *Config) Config {
	c := *cfg
	c.WindowsServices = append([]string(nil), cfg.WindowsServices...)
	c.LinuxServices = append([]string(nil), cfg.LinuxServices...)

	return c
}

// Register performs the one-time device registration ahead of the first cycle.
func (m *Monitor) Register(ctx context.Context) bool {
	return m.emitter.Register(ctx)
}

// RunCycle probes the gateway once, emits the resolved state and returns it.
func (m *Monitor) RunCycle(ctx context.Context) models.Availability {
	start := time.Now()

	state, _ := m.aggregator.Run(ctx)
	m.emitter.Emit(ctx, state)

	if m.observer != nil {
		m.observer.ObserveCycle(ctx, state, time.Since(start))
	}

	return state
}

// Poll adapts RunCycle to the poller's cycle signature.
func (m *Monitor) Poll(ctx context.Context) error {
	m.RunCycle(ctx)

	return nil
}

func (m *Monitor) Device() *models.Device {
	return m.device
}

func (m *Monitor) Interval() time.Duration {
	return m.cfg.ReadInterval.Std()
}

func (m *Monitor) Mode() Mode {
	return m.cfg.Mode
}
