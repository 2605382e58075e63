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

package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

const (
	testInterval = 10 * time.Second
	waitFor      = 2 * time.Second
	pollEvery    = 5 * time.Millisecond
)

type pollerHarness struct {
	poller *Poller
	ticks  chan time.Time
	errCh  chan error
	cancel context.CancelFunc
}

func setupPoller(t *testing.T, cycle CycleFunc, opts ...Option) *pollerHarness {
	t.Helper()

	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	ticker := NewMockTicker(ctrl)

	ticks := make(chan time.Time)

	var tickCh <-chan time.Time = ticks

	clock.EXPECT().Ticker(testInterval).Return(ticker)
	ticker.EXPECT().Chan().Return(tickCh).AnyTimes()
	ticker.EXPECT().Stop()

	opts = append([]Option{WithClock(clock)}, opts...)

	p, err := New(testInterval, cycle, logger.NewTestLogger(), opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	h := &pollerHarness{poller: p, ticks: ticks, errCh: make(chan error, 1), cancel: cancel}

	go func() {
		h.errCh <- p.Start(ctx)
	}()

	t.Cleanup(func() {
		cancel()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), waitFor)
		defer stopCancel()

		_ = p.Stop(stopCtx)
	})

	return h
}

func (h *pollerHarness) tick(t *testing.T) {
	t.Helper()

	select {
	case h.ticks <- time.Now():
	case <-time.After(waitFor):
		t.Fatal("poller did not accept tick")
	}
}

func TestNew_Validation(t *testing.T) {
	noop := func(context.Context) error { return nil }

	_, err := New(0, noop, logger.NewTestLogger())
	require.ErrorIs(t, err, errInvalidInterval)

	_, err = New(time.Second, nil, logger.NewTestLogger())
	require.ErrorIs(t, err, errMissingCycle)
}

func TestPoller_RunsImmediatelyAndOnTick(t *testing.T) {
	var runs atomic.Int32

	h := setupPoller(t, func(context.Context) error {
		runs.Add(1)

		return nil
	})

	require.Eventually(t, func() bool { return runs.Load() == 1 }, waitFor, pollEvery)

	require.Eventually(t, func() bool { return !h.poller.busy.Load() }, waitFor, pollEvery)
	h.tick(t)

	require.Eventually(t, func() bool { return runs.Load() == 2 }, waitFor, pollEvery)
	assert.Equal(t, uint64(2), h.poller.Cycles())
	assert.Zero(t, h.poller.Skipped())
}

type countingObserver struct {
	skips atomic.Int32
}

func (c *countingObserver) CycleSkipped(context.Context) {
	c.skips.Add(1)
}

func TestPoller_SkipsTicksWhileBusy(t *testing.T) {
	release := make(chan struct{})

	var (
		running atomic.Int32
		maxSeen atomic.Int32
		runs    atomic.Int32
	)

	observer := &countingObserver{}

	h := setupPoller(t, func(context.Context) error {
		n := running.Add(1)
		defer running.Add(-1)

		if n > maxSeen.Load() {
			maxSeen.Store(n)
		}

		if runs.Add(1) == 1 {
			<-release
		}

		return nil
	}, WithSkipObserver(observer))

	require.Eventually(t, func() bool { return runs.Load() == 1 }, waitFor, pollEvery)

	for range 3 {
		h.tick(t)
	}

	require.Eventually(t, func() bool { return h.poller.Skipped() == 3 }, waitFor, pollEvery)
	assert.Equal(t, int32(3), observer.skips.Load())
	assert.Equal(t, int32(1), runs.Load())

	close(release)

	require.Eventually(t, func() bool { return !h.poller.busy.Load() }, waitFor, pollEvery)
	h.tick(t)

	require.Eventually(t, func() bool { return runs.Load() == 2 }, waitFor, pollEvery)
	assert.Equal(t, int32(1), maxSeen.Load(), "cycles must never overlap")
}

func TestPoller_StopWaitsForInFlightCycle(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	var finished atomic.Bool

	h := setupPoller(t, func(context.Context) error {
		close(started)
		<-release
		finished.Store(true)

		return nil
	})

	<-started

	stopped := make(chan error, 1)

	go func() {
		stopped <- h.poller.Stop(context.Background())
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a cycle was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)

	select {
	case err := <-stopped:
		require.NoError(t, err)
		assert.True(t, finished.Load())
	case <-time.After(waitFor):
		t.Fatal("Stop did not return")
	}

	select {
	case err := <-h.errCh:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Start did not return after Stop")
	}
}

func TestPoller_StopTimesOut(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	h := setupPoller(t, func(context.Context) error {
		close(started)
		<-release

		return nil
	})

	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := h.poller.Stop(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

var errCycle = errors.New("sink unavailable")

func TestPoller_SurvivesErrorsAndPanics(t *testing.T) {
	var runs atomic.Int32

	h := setupPoller(t, func(context.Context) error {
		switch runs.Add(1) {
		case 1:
			panic("probe exploded")
		case 2:
			return errCycle
		default:
			return nil
		}
	})

	for want := int32(2); want <= 3; want++ {
		require.Eventually(t, func() bool { return !h.poller.busy.Load() && runs.Load() == want-1 }, waitFor, pollEvery)
		h.tick(t)
		require.Eventually(t, func() bool { return runs.Load() == want }, waitFor, pollEvery)
	}
}

func TestPoller_ContextCancelStopsLoop(t *testing.T) {
	h := setupPoller(t, func(context.Context) error { return nil })

	h.cancel()

	select {
	case err := <-h.errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("Start did not return after cancel")
	}
}

func TestPoller_CycleContextSurvivesCancel(t *testing.T) {
	release := make(chan struct{})
	cycleErr := make(chan error, 1)

	h := setupPoller(t, func(ctx context.Context) error {
		<-release
		cycleErr <- ctx.Err()

		return nil
	})

	require.Eventually(t, func() bool { return h.poller.busy.Load() }, waitFor, pollEvery)

	h.cancel()
	close(release)

	select {
	case err := <-cycleErr:
		assert.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("cycle did not finish")
	}
}

func TestPoller_StartAfterStopRunsNothing(t *testing.T) {
	var runs atomic.Int32

	p, err := New(testInterval, func(context.Context) error {
		runs.Add(1)

		return nil
	}, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, p.Stop(context.Background()))
	require.NoError(t, p.Start(context.Background()))

	assert.Zero(t, runs.Load())
	assert.Zero(t, p.Cycles())
}

func TestPoller_NoCycleStartsAfterStopReturns(t *testing.T) {
	for i := 0; i < 200; i++ {
		var runs atomic.Int32

		p, err := New(testInterval, func(context.Context) error {
			runs.Add(1)

			return nil
		}, logger.NewTestLogger())
		require.NoError(t, err)

		startDone := make(chan error, 1)

		go func() {
			startDone <- p.Start(context.Background())
		}()

		stopCtx, cancel := context.WithTimeout(context.Background(), waitFor)
		require.NoError(t, p.Stop(stopCtx))
		cancel()

		atStop := runs.Load()

		select {
		case err := <-startDone:
			require.NoError(t, err)
		case <-time.After(waitFor):
			t.Fatal("Start did not return after Stop")
		}

		require.Equal(t, atStop, runs.Load(), "iteration %d: a cycle ran after Stop returned", i)
	}
}
