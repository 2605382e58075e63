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

// Package metrics exposes cycle and probe instruments through OpenTelemetry.
package metrics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.31.0"
	"google.golang.org/grpc/credentials"

	"github.com/carverauto/gatewaymon/pkg/models"
)

const (
	defaultServiceName    = "gateway-monitor"
	defaultExportInterval = 15 * time.Second
)

var (
	errMissingEndpoint     = errors.New("metrics endpoint is required when metrics are enabled")
	errFailedToParseCACert = errors.New("failed to parse CA certificate")
)

// Config controls the optional OTLP metrics export.
type Config struct {
	Enabled        bool              `json:"enabled"`
	Endpoint       string            `json:"endpoint"`
	Insecure       bool              `json:"insecure"`
	CAFile         string            `json:"ca_file,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	ExportInterval models.Duration   `json:"export_interval,omitempty"`
	ServiceName    string            `json:"service_name,omitempty"`
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.Endpoint == "" {
		return errMissingEndpoint
	}

	if c.ExportInterval <= 0 {
		c.ExportInterval = models.Duration(defaultExportInterval)
	}

	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}

	return nil
}

// Provider owns the meter provider used by the service.
type Provider struct {
	sdk      *sdkmetric.MeterProvider
	provider metric.MeterProvider
}

// NewProvider wires an OTLP gRPC exporter when cfg enables it and falls back to a
// no-op provider otherwise.
func NewProvider(ctx context.Context, cfg *Config, version string) (*Provider, error) {
	if cfg == nil || !cfg.Enabled {
		return &Provider{provider: noop.NewMeterProvider()}, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}

	switch {
	case cfg.Insecure:
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	case cfg.CAFile != "":
		tlsConfig, err := clientTLSConfig(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to setup metrics TLS configuration: %w", err)
		}

		opts = append(opts, otlpmetricgrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig)))
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, otlpmetricgrpc.WithHeaders(cfg.Headers))
	}

	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics resource: %w", err)
	}

	sdk := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.ExportInterval.Std()))),
	)

	return &Provider{sdk: sdk, provider: sdk}, nil
}

func (p *Provider) MeterProvider() metric.MeterProvider {
	return p.provider
}

// Enabled reports whether metrics leave the process.
func (p *Provider) Enabled() bool {
	return p.sdk != nil
}

// Shutdown flushes pending data. It is a no-op for the no-op provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}

	return p.sdk.Shutdown(ctx)
}

func clientTLSConfig(caFile string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, errFailedToParseCACert
	}

	return &tls.Config{MinVersion: tls.VersionTLS12, RootCAs: pool}, nil
}
