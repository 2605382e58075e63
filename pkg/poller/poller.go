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

// Package poller runs a cycle function on a fixed interval without ever overlapping cycles.
package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

var (
	errInvalidInterval = errors.New("poll interval must be positive")
	errMissingCycle    = errors.New("cycle function is required")
	errCyclePanic      = errors.New("cycle panicked")
)

// CycleFunc performs one poll cycle.
type CycleFunc func(ctx context.Context) error

// SkipObserver is notified whenever a tick is dropped because a cycle is still running.
type SkipObserver interface {
	CycleSkipped(ctx context.Context)
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock overrides the wall clock.
func WithClock(clock Clock) Option {
	return func(p *Poller) {
		p.clock = clock
	}
}

// WithSkipObserver registers an observer for skipped ticks.
func WithSkipObserver(o SkipObserver) Option {
	return func(p *Poller) {
		p.skipObserver = o
	}
}

// Poller fires a cycle immediately on Start and then on every tick. A tick that
// arrives while a cycle is in flight is skipped, not queued.
type Poller struct {
	interval     time.Duration
	cycle        CycleFunc
	clock        Clock
	logger       logger.Logger
	skipObserver SkipObserver

	busy    atomic.Bool
	cycles  atomic.Uint64
	skipped atomic.Uint64

	// mu orders startWg.Add in Start against the close of done in Stop.
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
	startWg sync.WaitGroup
	wg      sync.WaitGroup
}

// New creates a poller for cycle.
func New(interval time.Duration, cycle CycleFunc, log logger.Logger, opts ...Option) (*Poller, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %s", errInvalidInterval, interval)
	}

	if cycle == nil {
		return nil, errMissingCycle
	}

	p := &Poller{
		interval: interval,
		cycle:    cycle,
		clock:    RealClock{},
		logger:   log,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Start implements the lifecycle.Service interface. It blocks until Stop is called
// or ctx is canceled.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()

		return nil
	}

	p.startWg.Add(1)
	p.mu.Unlock()

	defer p.startWg.Done()

	ticker := p.clock.Ticker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.interval).Msg("Starting poller")

	p.dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case <-ticker.Chan():
			p.dispatch(ctx)
		}
	}
}

// Stop prevents new cycles and waits for the in-flight one, if any, to finish.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.done)
	}
	p.mu.Unlock()

	finished := make(chan struct{})

	go func() {
		p.startWg.Wait()
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		p.logger.Info().Uint64("cycles", p.cycles.Load()).Uint64("skipped", p.skipped.Load()).Msg("Poller stopped")

		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight cycle: %w", ctx.Err())
	}
}

// Cycles returns the number of cycles started.
func (p *Poller) Cycles() uint64 {
	return p.cycles.Load()
}

// Skipped returns the number of ticks dropped because a cycle was in flight.
func (p *Poller) Skipped() uint64 {
	return p.skipped.Load()
}

func (p *Poller) dispatch(ctx context.Context) {
	if !p.busy.CompareAndSwap(false, true) {
		n := p.skipped.Add(1)

		p.logger.Debug().Uint64("skipped", n).Msg("Previous cycle still running, skipping tick")

		if p.skipObserver != nil {
			p.skipObserver.CycleSkipped(ctx)
		}

		return
	}

	p.cycles.Add(1)
	p.wg.Add(1)

	// The cycle outlives cancellation of ctx; every probe inside it is bounded by its own timeout.
	cycleCtx := context.WithoutCancel(ctx)

	go func() {
		defer p.wg.Done()
		defer p.busy.Store(false)

		if err := p.run(cycleCtx); err != nil {
			p.logger.Error().Err(err).Msg("Error during poll")
		}
	}()
}

func (p *Poller) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errCyclePanic, r)
		}
	}()

	return p.cycle(ctx)
}
