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
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/models"
)

//go:generate mockgen -destination=mock_monitor.go -package=monitor github.com/carverauto/gatewaymon/pkg/monitor Sink

// Sink is the observation pipeline the monitor reports into.
type Sink interface {
	RegisterDevice(ctx context.Context, device *models.Device) error
	AddObservation(ctx context.Context, obs *models.Observation) error
}

// Emitter registers the device once and reports one observation per cycle.
// Delivery is fire-and-forget: errors are logged and never retried within a cycle.
type Emitter struct {
	sink   Sink
	device *models.Device
	item   models.DataItem
	logger logger.Logger
	now    func() time.Time

	mu         sync.Mutex
	registered bool
}

func NewEmitter(sink Sink, device *models.Device, log logger.Logger) *Emitter {
	item, _ := device.AvailabilityDataItem()

	return &Emitter{
		sink:   sink,
		device: device,
		item:   item,
		logger: log,
		now:    time.Now,
	}
}

// Registered reports whether the device registration has succeeded.
func (e *Emitter) Registered() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.registered
}

// Register adds the device to the sink unless that already happened. A failure is
// logged and the next call tries again.
func (e *Emitter) Register(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registered {
		return true
	}

	if err := e.sink.RegisterDevice(ctx, e.device); err != nil {
		e.logger.Error().Err(err).Str("device_uuid", e.device.UUID).Msg("Failed to register device")

		return false
	}

	e.registered = true

	e.logger.Info().Str("device_id", e.device.ID).Str("device_uuid", e.device.UUID).Msg("Device added")

	return true
}

// Emit makes sure the device is registered and then reports state.
func (e *Emitter) Emit(ctx context.Context, state models.Availability) {
	e.Register(ctx)

	obs := &models.Observation{
		ID:         uuid.NewString(),
		DeviceUUID: e.device.UUID,
		DataItemID: e.item.ID,
		Value:      state,
		Timestamp:  e.now().UTC(),
	}

	if err := e.sink.AddObservation(ctx, obs); err != nil {
		e.logger.Error().Err(err).Str("data_item", obs.DataItemID).Str("value", state.String()).Msg("Failed to emit observation")

		return
	}

	e.logger.Debug().Str("data_item", obs.DataItemID).Str("value", state.String()).Msg("Observation emitted")
}
