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

package models

import (
	"errors"
	"time"
)

var errNATSURLRequired = errors.New("nats url is required")

const (
	defaultStreamName      = "gateway-events"
	defaultSubjectPrefix   = "gateway"
	defaultConnectAttempts = 5
)

// NATSConfig configures the NATS JetStream observation sink.
type NATSConfig struct {
	URL             string `json:"url"`
	StreamName      string `json:"stream_name,omitempty"`
	SubjectPrefix   string `json:"subject_prefix,omitempty"`
	CredsFile       string `json:"creds_file,omitempty"`
	ConnectAttempts uint   `json:"connect_attempts,omitempty"`

	TLS *TLSConfig `json:"tls,omitempty"`
}

// TLSConfig points at PEM files for a TLS client. CertFile and KeyFile are
// only needed for mutual TLS.
type TLSConfig struct {
	CertFile   string `json:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
	CAFile     string `json:"ca_file,omitempty"`
	ServerName string `json:"server_name,omitempty"`
}

// Validate ensures the NATS configuration is valid and fills defaults.
func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return errNATSURLRequired
	}

	if c.StreamName == "" {
		c.StreamName = defaultStreamName
	}

	if c.SubjectPrefix == "" {
		c.SubjectPrefix = defaultSubjectPrefix
	}

	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = defaultConnectAttempts
	}

	return nil
}

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

const (
	EventTypeDeviceRegistered = "com.carverauto.gateway.device.registered"
	EventTypeAvailability     = "com.carverauto.gateway.availability"
	EventSource               = "serviceradar/gateway-monitor"
)
