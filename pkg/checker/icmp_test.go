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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/icmp"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

var errPermissionDenied = errors.New("operation not permitted")

func TestICMPProbe_SocketUnavailable(t *testing.T) {
	var networks []string

	probe := NewICMPProbe("127.0.0.1", time.Second, logger.NewTestLogger())
	probe.listen = func(network, _ string) (*icmp.PacketConn, error) {
		networks = append(networks, network)

		return nil, errPermissionDenied
	}

	result := probe.Check(context.Background())

	assert.False(t, result.Passed)
	assert.Equal(t, ProbeICMP, result.Probe)
	require.ErrorIs(t, result.Err, ErrTransport)
	require.ErrorIs(t, result.Err, errPermissionDenied)
	assert.Equal(t, []string{"udp4", "ip4:icmp"}, networks)
}

func TestICMPProbe_IPv6UsesIPv6Sockets(t *testing.T) {
	var networks []string

	probe := NewICMPProbe("::1", time.Second, logger.NewTestLogger())
	probe.listen = func(network, _ string) (*icmp.PacketConn, error) {
		networks = append(networks, network)

		return nil, errPermissionDenied
	}

	result := probe.Check(context.Background())

	assert.False(t, result.Passed)
	assert.Equal(t, []string{"udp6", "ip6:ipv6-icmp"}, networks)
}

func TestICMPProbe_UnresolvableHostIsBounded(t *testing.T) {
	timeout := 500 * time.Millisecond
	probe := NewICMPProbe("gateway.invalid", timeout, logger.NewTestLogger())

	start := time.Now()
	result := probe.Check(context.Background())

	assert.False(t, result.Passed)
	require.ErrorIs(t, result.Err, ErrTransport)
	assert.Less(t, time.Since(start), timeout+time.Second)
}

func TestICMPProbe_Loopback(t *testing.T) {
	if !icmpAvailable() {
		t.Skip("ICMP sockets are not permitted in this environment")
	}

	probe := NewICMPProbe("127.0.0.1", 2*time.Second, logger.NewTestLogger())

	result := probe.Check(context.Background())

	require.True(t, result.Passed, result.Message)
	assert.Equal(t, FailureNone, result.Kind())
}

func icmpAvailable() bool {
	for _, network := range []string{"udp4", "ip4:icmp"} {
		conn, err := icmp.ListenPacket(network, "0.0.0.0")
		if err == nil {
			_ = conn.Close()

			return true
		}
	}

	return false
}
