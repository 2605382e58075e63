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

// Package monitor decides whether a Greengrass-style gateway is available and
// reports the result for its device.
package monitor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vrischmann/envconfig"

	"github.com/carverauto/gatewaymon/pkg/checker"
	"github.com/carverauto/gatewaymon/pkg/checker/service"
	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/metrics"
	"github.com/carverauto/gatewaymon/pkg/models"
)

// Mode selects which probe set an instance runs.
type Mode string

const (
	// ModeInfra checks ICMP reachability, the TCP port and the local OS services.
	ModeInfra Mode = "infra"
	// ModeHealth queries the gateway's HTTPS health endpoint.
	ModeHealth Mode = "health"
)

const (
	DefaultPort         = 443
	DefaultTimeout      = 2 * time.Second
	DefaultReadInterval = 10 * time.Second
	DefaultHealthPath   = "/greengrass-gateway/_health"
	DefaultDeviceName   = "greengrass-gateway"

	maxPort = 65535
)

var (
	errMissingMode          = errors.New("mode is required")
	errInvalidMode          = errors.New("invalid mode")
	errMissingAddress       = errors.New("gateway_address is required")
	errInvalidPort          = errors.New("invalid port")
	errNonPositiveTimeout   = errors.New("timeout must be positive")
	errNonPositiveInterval  = errors.New("read_interval must be positive")
	errServicesInHealthMode = errors.New("service lists are only valid in infra mode")
	errNoServices           = errors.New("infra mode requires windows_services or linux_services")
	errEmptyServiceName     = errors.New("service names must not be empty")
)

// Config is the per-instance monitor configuration. It is treated as read-only
// once Validate has run.
type Config struct {
	Mode            Mode            `json:"mode"`
	GatewayAddress  string          `json:"gateway_address"`
	GatewayIP       string          `json:"gateway_ip,omitempty"`
	Port            int             `json:"port"`
	Timeout         models.Duration `json:"timeout"`
	ReadInterval    models.Duration `json:"read_interval"`
	HealthPath      string          `json:"health_path"`
	Username        string          `json:"username,omitempty"`
	Password        string          `json:"password,omitempty"`
	WindowsServices []string        `json:"windows_services,omitempty"`
	LinuxServices   []string        `json:"linux_services,omitempty"`
	TLSSkipVerify   bool            `json:"tls_skip_verify,omitempty"`
	CAFile          string          `json:"ca_file,omitempty"`
	DeviceName      string          `json:"device_name,omitempty"`
}

// Validate applies defaults and enforces the configuration invariants.
func (c *Config) Validate() error {
	c.Mode = Mode(strings.ToLower(strings.TrimSpace(string(c.Mode))))

	switch c.Mode {
	case "":
		return errMissingMode
	case ModeInfra, ModeHealth:
	default:
		return fmt.Errorf("%w: %q (expected %q or %q)", errInvalidMode, c.Mode, ModeInfra, ModeHealth)
	}

	if c.GatewayAddress == "" {
		c.GatewayAddress = c.GatewayIP
	}

	if c.GatewayAddress == "" {
		return errMissingAddress
	}

	c.applyDefaults()

	if c.Port < 1 || c.Port > maxPort {
		return fmt.Errorf("%w: %d", errInvalidPort, c.Port)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("%w: %s", errNonPositiveTimeout, c.Timeout.Std())
	}

	if c.ReadInterval < 0 {
		return fmt.Errorf("%w: %s", errNonPositiveInterval, c.ReadInterval.Std())
	}

	return c.validateServices()
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}

	if c.Timeout == 0 {
		c.Timeout = models.Duration(DefaultTimeout)
	}

	if c.ReadInterval == 0 {
		c.ReadInterval = models.Duration(DefaultReadInterval)
	}

	if c.HealthPath == "" {
		c.HealthPath = DefaultHealthPath
	}

	if c.DeviceName == "" {
		c.DeviceName = DefaultDeviceName
	}
}

func (c *Config) validateServices() error {
	hasServices := len(c.WindowsServices) > 0 || len(c.LinuxServices) > 0

	if c.Mode == ModeHealth {
		if hasServices {
			return errServicesInHealthMode
		}

		return nil
	}

	if !hasServices {
		return errNoServices
	}

	for _, name := range append(append([]string(nil), c.WindowsServices...), c.LinuxServices...) {
		if strings.TrimSpace(name) == "" {
			return errEmptyServiceName
		}
	}

	return nil
}

// ServicesFor returns the service list that applies to platform.
func (c *Config) ServicesFor(platform string) []string {
	switch platform {
	case service.PlatformWindows:
		return c.WindowsServices
	case service.PlatformLinux:
		return c.LinuxServices
	default:
		return append(append([]string(nil), c.WindowsServices...), c.LinuxServices...)
	}
}

// DeviceUUID is the stable identity of the monitored gateway.
func (c *Config) DeviceUUID() string {
	return "gateway-" + c.GatewayAddress
}

// ConfiguredCredentials returns the credentials present in the configuration file.
func (c *Config) ConfiguredCredentials() checker.Credentials {
	return checker.Credentials{Username: c.Username, Password: c.Password}
}

// ServiceConfig is the on-disk configuration of the gateway-monitor binary.
type ServiceConfig struct {
	Config

	Logging *logger.Config     `json:"logging,omitempty"`
	NATS    *models.NATSConfig `json:"nats,omitempty"`
	Metrics *metrics.Config    `json:"metrics,omitempty"`
}

func (c *ServiceConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}

	if c.NATS != nil && c.NATS.URL != "" {
		if err := c.NATS.Validate(); err != nil {
			return fmt.Errorf("invalid nats configuration: %w", err)
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("invalid metrics configuration: %w", err)
		}
	}

	return nil
}

// credentialOverrides are the environment variables that take precedence over
// the configured username and password.
type credentialOverrides struct {
	Username string `envconfig:"GATEWAY_MONITOR_USERNAME,optional"`
	Password string `envconfig:"GATEWAY_MONITOR_PASSWORD,optional"`
}

// LoadCredentialOverrides reads the credential environment variables.
func LoadCredentialOverrides() (checker.Credentials, error) {
	var o credentialOverrides

	if err := envconfig.Init(&o); err != nil {
		return checker.Credentials{}, fmt.Errorf("failed to read credential overrides: %w", err)
	}

	return checker.Credentials{Username: o.Username, Password: o.Password}, nil
}
