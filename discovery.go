package euronet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

const discoveryPort = 30303

// "\x07xEuroNET\x00\n"
var discoveryProbe = []byte{0x07, 0x78, 0x45, 0x75, 0x72, 0x6f, 0x4e, 0x45, 0x54, 0x00, 0x0a}

var discoveryAddr net.Addr = &net.UDPAddr{IP: net.IPv4bcast, Port: discoveryPort}

// ErrNotFound means no panel answered the discovery probe.
var ErrNotFound = errors.New("no panel found")

// Device is a panel that answered the discovery probe.
type Device struct {
	Host string
	MAC  string
	Port string
}

// Discover broadcasts the discovery probe in the local network and returns
// the first panel that answers within the timeout.
func Discover(ctx context.Context, timeout time.Duration) (Device, error) {
	var lc net.ListenConfig
	conn, err := lc.ListenPacket(ctx, "udp4", ":0")
	if err != nil {
		return Device{}, fmt.Errorf("could not listen: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return Device{}, fmt.Errorf("could not set deadline: %w", err)
	}

	if _, err := conn.WriteTo(discoveryProbe, discoveryAddr); err != nil {
		return Device{}, fmt.Errorf("could not send discovery probe: %w", err)
	}
	log.Debug("discovery probe sent", "addr", discoveryAddr)

	buf := make([]byte, 1024)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				return Device{}, ErrNotFound
			}
			return Device{}, fmt.Errorf("could not read discovery reply: %w", err)
		}
		dev, ok := parseDiscoveryReply(string(buf[:n]))
		if !ok {
			log.Debug("ignoring discovery reply", "addr", addr)
			continue
		}
		if udp, ok := addr.(*net.UDPAddr); ok {
			dev.Host = udp.IP.String()
		}
		log.Info("panel found", "host", dev.Host, "mac", dev.MAC, "port", dev.Port)
		return dev, nil
	}
}

// the reply is "EURONET\r\n<mac>\r\n<?>\r\n<http port>\r\n".
func parseDiscoveryReply(reply string) (Device, bool) {
	if !strings.HasPrefix(reply, "EURONET\r\n") {
		return Device{}, false
	}
	lines := strings.Split(reply, "\r\n")
	var dev Device
	if len(lines) > 1 {
		dev.MAC = strings.TrimSpace(lines[1])
	}
	if len(lines) > 3 {
		dev.Port = strings.TrimSpace(lines[3])
	}
	return dev, true
}
