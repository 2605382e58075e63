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
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// PortProbe verifies that a TCP connection to the gateway completes within the timeout.
type PortProbe struct {
	host    string
	port    int
	timeout time.Duration
	dial    dialFunc
	logger  logger.Logger
}

func NewPortProbe(host string, port int, timeout time.Duration, log logger.Logger) *PortProbe {
	dialer := &net.Dialer{KeepAlive: -1}

	return &PortProbe{
		host:    host,
		port:    port,
		timeout: timeout,
		dial:    dialer.DialContext,
		logger:  log,
	}
}

func (*PortProbe) Name() string {
	return ProbePort
}

// Check dials host:port and closes the connection immediately on success.
func (p *PortProbe) Check(ctx context.Context) Result {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	addr := net.JoinHostPort(p.host, strconv.Itoa(p.port))

	conn, err := p.dial(probeCtx, "tcp", addr)
	if err != nil {
		if probeCtx.Err() != nil {
			err = probeCtx.Err()
		}

		p.logger.Warn().Err(err).Str("address", addr).Msg("Port check failed")

		return failed(ProbePort, fmt.Errorf("%w: port %d is not accessible: %w", ErrTransport, p.port, err), start)
	}

	if err := conn.Close(); err != nil {
		p.logger.Debug().Err(err).Str("address", addr).Msg("Error closing connection")
	}

	return passed(ProbePort, fmt.Sprintf("port %d open", p.port), start)
}
