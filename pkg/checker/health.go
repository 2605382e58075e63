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

package checker

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/models"
)

const maxHealthBody = 64 << 10

var (
	errInvalidCA        = errors.New("no certificates found in CA file")
	errInvalidHealthURL = errors.New("invalid health URL")
)

// HealthSettings describes how to reach the gateway health endpoint.
type HealthSettings struct {
	Address       string
	Port          int
	Path          string
	Timeout       time.Duration
	Credentials   *Credentials
	TLSSkipVerify bool
	CAFile        string
}

// HealthOption customizes a HealthProbe.
type HealthOption func(*HealthProbe)

// WithHTTPClient replaces the probe's HTTP client. The probe still bounds each
// request with its own timeout.
func WithHTTPClient(client *http.Client) HealthOption {
	return func(p *HealthProbe) {
		p.client = client
	}
}

// HealthProbe queries the gateway's HTTPS health endpoint and interprets the body.
type HealthProbe struct {
	url         string
	timeout     time.Duration
	credentials *Credentials
	client      *http.Client
	logger      logger.Logger
}

func NewHealthProbe(settings *HealthSettings, log logger.Logger, opts ...HealthOption) (*HealthProbe, error) {
	rawURL := healthURL(settings.Address, settings.Port, settings.Path)
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidHealthURL, err)
	}

	p := &HealthProbe{
		url:         rawURL,
		timeout:     settings.Timeout,
		credentials: settings.Credentials,
		logger:      log,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		tlsConfig, err := clientTLSConfig(settings)
		if err != nil {
			return nil, err
		}

		p.client = &http.Client{
			Timeout: settings.Timeout,
			Transport: &http.Transport{
				TLSClientConfig:     tlsConfig,
				TLSHandshakeTimeout: settings.Timeout,
				DisableKeepAlives:   true,
			},
		}
	}

	return p, nil
}

func healthURL(address string, port int, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return "https://" + net.JoinHostPort(address, strconv.Itoa(port)) + path
}

func clientTLSConfig(settings *HealthSettings) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: settings.TLSSkipVerify, //nolint:gosec // operator opt-in for self-signed gateways
	}

	if settings.CAFile == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(settings.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("%w: %s", errInvalidCA, settings.CAFile)
	}

	cfg.RootCAs = pool

	return cfg, nil
}

func (*HealthProbe) Name() string {
	return ProbeHealth
}

// URL returns the endpoint the probe queries.
func (p *HealthProbe) URL() string {
	return p.url
}

// Check passes only when the endpoint answers 2xx with a body that reports AVAILABLE.
func (p *HealthProbe) Check(ctx context.Context) Result {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return failed(ProbeHealth, fmt.Errorf("failed to create request: %w", err), start)
	}

	req.Header.Set("Accept", "application/json, text/plain")

	if p.credentials != nil {
		req.SetBasicAuth(p.credentials.Username, p.credentials.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn().Err(err).Str("url", p.url).Msg("Health request failed")

		return failed(ProbeHealth, fmt.Errorf("%w: %w", ErrTransport, err), start)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		p.logger.Warn().Int("status", resp.StatusCode).Str("url", p.url).Msg("Health endpoint returned non-success status")

		return failed(ProbeHealth, fmt.Errorf("%w: unexpected status %d", ErrProtocol, resp.StatusCode), start)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHealthBody))
	if err != nil {
		p.logger.Warn().Err(err).Str("url", p.url).Msg("Failed to read health response")

		return failed(ProbeHealth, fmt.Errorf("%w: failed to read body: %w", ErrTransport, err), start)
	}

	state, err := ParseHealthPayload(body)
	if err != nil {
		p.logger.Error().Err(err).Str("url", p.url).Msg("Unrecognized health payload")

		return failed(ProbeHealth, err, start)
	}

	if state != models.Available {
		p.logger.Warn().Str("url", p.url).Msg("Gateway reported UNAVAILABLE")

		return failed(ProbeHealth, ErrGatewayReportedUnavailable, start)
	}

	return passed(ProbeHealth, "gateway reported AVAILABLE", start)
}
