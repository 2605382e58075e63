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

package events

import (
	"context"

	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/models"
)

// LogSink writes registrations and observations to the log. It is used when no
// message bus is configured.
type LogSink struct {
	logger logger.Logger
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) RegisterDevice(_ context.Context, device *models.Device) error {
	event := s.logger.Info().
		Str("device_uuid", device.UUID).
		Str("device_id", device.ID).
		Str("device_name", device.Name)

	if item, ok := device.AvailabilityDataItem(); ok {
		event = event.Str("data_item", item.ID)
	}

	event.Msg("Device registered")

	return nil
}

func (s *LogSink) AddObservation(_ context.Context, obs *models.Observation) error {
	s.logger.Info().
		Str("device_uuid", obs.DeviceUUID).
		Str("data_item", obs.DataItemID).
		Str("value", obs.Value.String()).
		Time("timestamp", obs.Timestamp).
		Msg("Availability observation")

	return nil
}

func (*LogSink) Close() error {
	return nil
}
