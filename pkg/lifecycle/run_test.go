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

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

type fakeService struct {
	startErr error
	stopped  chan struct{}
}

func (f *fakeService) Start(context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	<-f.stopped

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	close(f.stopped)
	return nil
}

func TestRunService_StopsOnContextCancel(t *testing.T) {
	svc := &fakeService{stopped: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)

	go func() {
		done <- RunService(ctx, svc, logger.NewTestLogger())
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunService did not return after cancellation")
	}

	select {
	case <-svc.stopped:
	default:
		t.Fatal("Stop was not called")
	}
}

func TestRunService_PropagatesStartError(t *testing.T) {
	startErr := errors.New("boom")
	svc := &fakeService{startErr: startErr, stopped: make(chan struct{})}

	err := RunService(context.Background(), svc, logger.NewTestLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, startErr)
}

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger("gateway-monitor", &logger.Config{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, log)

	_, err = CreateComponentLogger("gateway-monitor", &logger.Config{Level: "nope"})
	require.Error(t, err)
}
