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

// Package events delivers device registrations and availability observations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/models"
	"github.com/carverauto/gatewaymon/pkg/natsutil"
)

const (
	cloudEventsVersion = "1.0"
	contentTypeJSON    = "application/json"
	clientName         = "gateway-monitor"
)

// connectDelay is the initial backoff between connection attempts.
var connectDelay = 500 * time.Millisecond

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// NATSSink publishes CloudEvents to a JetStream stream.
type NATSSink struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	prefix string
	logger logger.Logger
	now    func() time.Time
}

// NewNATSSink connects with bounded retries, then makes sure the stream exists.
func NewNATSSink(ctx context.Context, cfg *models.NATSConfig, log logger.Logger, opts ...nats.Option) (*NATSSink, error) {
	c := *cfg
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid NATS configuration: %w", err)
	}

	connOpts, err := natsutil.ConnectOptions(c.TLS, log)
	if err != nil {
		return nil, err
	}

	natsOpts := append([]nats.Option{nats.Name(clientName), nats.MaxReconnects(-1)}, connOpts...)
	if c.CredsFile != "" {
		natsOpts = append(natsOpts, nats.UserCredentials(c.CredsFile))
	}

	natsOpts = append(natsOpts, opts...)

	var nc *nats.Conn

	err = retry.Do(
		func() error {
			var err error

			nc, err = nats.Connect(c.URL, natsOpts...)

			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.ConnectAttempts),
		retry.Delay(connectDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			log.Warn().Err(err).Uint("attempt", attempt+1).Str("url", c.URL).Msg("NATS connection failed, retrying")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     c.StreamName,
		Subjects: []string{c.SubjectPrefix + ".>"},
	}); err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create or update stream %s: %w", c.StreamName, err)
	}

	log.Info().Str("stream", c.StreamName).Str("subject_prefix", c.SubjectPrefix).Msg("NATS event sink initialized")

	return &NATSSink{
		nc:     nc,
		js:     js,
		prefix: c.SubjectPrefix,
		logger: log,
		now:    time.Now,
	}, nil
}

// DevicesSubject is where device registrations are published.
func (s *NATSSink) DevicesSubject() string {
	return s.prefix + ".devices"
}

// AvailabilitySubject is where observations for deviceUUID are published.
func (s *NATSSink) AvailabilitySubject(deviceUUID string) string {
	return s.prefix + ".availability." + subjectReplacer.Replace(deviceUUID)
}

func (s *NATSSink) RegisterDevice(ctx context.Context, device *models.Device) error {
	return s.publish(ctx, s.DevicesSubject(), models.EventTypeDeviceRegistered, device.UUID, s.now(), device)
}

func (s *NATSSink) AddObservation(ctx context.Context, obs *models.Observation) error {
	return s.publish(ctx, s.AvailabilitySubject(obs.DeviceUUID), models.EventTypeAvailability, obs.DeviceUUID, obs.Timestamp, obs)
}

func (s *NATSSink) publish(ctx context.Context, subject, eventType, eventSubject string, at time.Time, data interface{}) error {
	event := models.CloudEvent{
		SpecVersion:     cloudEventsVersion,
		ID:              uuid.New().String(),
		Source:          models.EventSource,
		Type:            eventType,
		DataContentType: contentTypeJSON,
		Subject:         eventSubject,
		Time:            &at,
		Data:            data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	ack, err := s.js.Publish(ctx, subject, payload, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	s.logger.Debug().Str("subject", subject).Str("event_id", event.ID).Uint64("seq", ack.Sequence).Msg("Published event")

	return nil
}

// Close drains pending publishes and closes the connection.
func (s *NATSSink) Close() error {
	if s.nc == nil {
		return nil
	}

	if err := s.nc.Drain(); err != nil {
		s.nc.Close()

		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}

	return nil
}
