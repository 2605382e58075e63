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
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/carverauto/gatewaymon/pkg/logger"
)

const (
	protocolICMP   = 1
	protocolICMPv6 = 58
	maxPacketSize  = 1500
	identifierMask = 0xffff
)

var (
	errNoAddress   = errors.New("no address found")
	echoPayload    = []byte("serviceradar-gateway-monitor")
	ipv4EchoFamily = icmpFamily{protocolICMP, ipv4.ICMPTypeEcho, ipv4.ICMPTypeEchoReply, "udp4", "ip4:icmp", "0.0.0.0"}
	ipv6EchoFamily = icmpFamily{protocolICMPv6, ipv6.ICMPTypeEchoRequest, ipv6.ICMPTypeEchoReply, "udp6", "ip6:ipv6-icmp", "::"}
)

type icmpFamily struct {
	proto      int
	echo       icmp.Type
	reply      icmp.Type
	udpNetwork string
	rawNetwork string
	listenAddr string
}

type packetListener func(network, address string) (*icmp.PacketConn, error)

// ICMPProbe sends a single echo request and waits for the matching reply.
// It prefers unprivileged datagram ICMP sockets and falls back to raw sockets.
type ICMPProbe struct {
	host       string
	timeout    time.Duration
	resolver   *net.Resolver
	listen     packetListener
	identifier int
	sequence   atomic.Uint32
	logger     logger.Logger
}

func NewICMPProbe(host string, timeout time.Duration, log logger.Logger) *ICMPProbe {
	return &ICMPProbe{
		host:       host,
		timeout:    timeout,
		resolver:   net.DefaultResolver,
		listen:     icmp.ListenPacket,
		identifier: os.Getpid() & identifierMask,
		logger:     log,
	}
}

func (*ICMPProbe) Name() string {
	return ProbeICMP
}

func (p *ICMPProbe) Check(ctx context.Context) Result {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.ping(probeCtx); err != nil {
		p.logger.Warn().Err(err).Str("host", p.host).Msg("Ping failed")

		return failed(ProbeICMP, fmt.Errorf("%w: %w", ErrTransport, err), start)
	}

	return passed(ProbeICMP, "echo reply received", start)
}

func (p *ICMPProbe) ping(ctx context.Context) error {
	ip, err := p.resolve(ctx)
	if err != nil {
		return err
	}

	family := ipv4EchoFamily
	if ip.To4() == nil {
		family = ipv6EchoFamily
	}

	conn, unprivileged, err := p.open(family)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("set deadline: %w", err)
		}
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	seq := int(p.sequence.Add(1) & identifierMask)

	msg := icmp.Message{
		Type: family.echo,
		Code: 0,
		Body: &icmp.Echo{ID: p.identifier, Seq: seq, Data: echoPayload},
	}

	wb, err := msg.Marshal(nil)
	if err != nil {
		return fmt.Errorf("marshal echo: %w", err)
	}

	var dst net.Addr = &net.IPAddr{IP: ip}
	if unprivileged {
		dst = &net.UDPAddr{IP: ip}
	}

	if _, err := conn.WriteTo(wb, dst); err != nil {
		return fmt.Errorf("send echo: %w", err)
	}

	return p.awaitReply(conn, family, ip, seq, unprivileged)
}

func (p *ICMPProbe) awaitReply(conn *icmp.PacketConn, family icmpFamily, ip net.IP, seq int, unprivileged bool) error {
	rb := make([]byte, maxPacketSize)

	for {
		n, peer, err := conn.ReadFrom(rb)
		if err != nil {
			return fmt.Errorf("await echo reply: %w", err)
		}

		if !peerIP(peer).Equal(ip) {
			continue
		}

		rm, err := icmp.ParseMessage(family.proto, rb[:n])
		if err != nil || rm.Type != family.reply {
			continue
		}

		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}

		// The kernel rewrites the identifier on datagram sockets.
		if !unprivileged && echo.ID != p.identifier {
			continue
		}

		return nil
	}
}

func (p *ICMPProbe) open(family icmpFamily) (conn *icmp.PacketConn, unprivileged bool, err error) {
	conn, udpErr := p.listen(family.udpNetwork, family.listenAddr)
	if udpErr == nil {
		return conn, true, nil
	}

	conn, rawErr := p.listen(family.rawNetwork, family.listenAddr)
	if rawErr == nil {
		return conn, false, nil
	}

	return nil, false, fmt.Errorf("open icmp socket: %w", errors.Join(udpErr, rawErr))
}

func (p *ICMPProbe) resolve(ctx context.Context) (net.IP, error) {
	if ip := net.ParseIP(p.host); ip != nil {
		return ip, nil
	}

	addrs, err := p.resolver.LookupIPAddr(ctx, p.host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", p.host, err)
	}

	for _, addr := range addrs {
		if addr.IP.To4() != nil {
			return addr.IP, nil
		}
	}

	if len(addrs) > 0 {
		return addrs[0].IP, nil
	}

	return nil, fmt.Errorf("%w: %s", errNoAddress, p.host)
}

func peerIP(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	default:
		return nil
	}
}
