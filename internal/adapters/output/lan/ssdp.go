package lan

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"hue-panel/internal/ports"
)

const ssdpMulticast = "239.255.255.250:1900"

var searchTargets = []string{
	"ssdp:all",
	"urn:schemas-upnp-org:device:Basic:1",
	"upnp:rootdevice",
}

// SSDPFinder multicasts M-SEARCH requests and keeps the senders whose
// replies identify a Hue bridge.
type SSDPFinder struct {
	wait   time.Duration
	target string
	logger *slog.Logger
}

var _ ports.BridgeFinder = (*SSDPFinder)(nil)

func NewSSDPFinder(wait time.Duration, logger *slog.Logger) *SSDPFinder {
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SSDPFinder{wait: wait, target: ssdpMulticast, logger: logger.With("component", "ssdp")}
}

func (f *SSDPFinder) Name() string { return "ssdp" }

func (f *SSDPFinder) Find(ctx context.Context) ([]string, error) {
	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	dest, err := net.ResolveUDPAddr("udp4", f.target)
	if err != nil {
		return nil, err
	}
	for _, st := range searchTargets {
		if _, err := conn.WriteTo([]byte(searchRequest(st)), dest); err != nil {
			f.logger.Debug("m-search failed", "st", st, "error", err)
		}
	}

	deadline := time.Now().Add(f.wait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	seen := make(map[string]struct{})
	buf := make([]byte, 4096)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return keys(seen), err
		}
		_ = conn.SetReadDeadline(time.Now().Add(250 * time.Millisecond))
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return keys(seen), err
		}
		udp, ok := addr.(*net.UDPAddr)
		if !ok || !IsBridgeResponse(string(buf[:n])) {
			continue
		}
		ip := udp.IP.String()
		if _, dup := seen[ip]; !dup {
			f.logger.Debug("ssdp reply", "ip", ip)
		}
		seen[ip] = struct{}{}
	}
	return keys(seen), nil
}

// IsBridgeResponse reports whether an SSDP reply comes from a Hue bridge.
// Bridges identify themselves with IpBridge in SERVER and a hue-bridgeid
// header.
func IsBridgeResponse(resp string) bool {
	lower := strings.ToLower(resp)
	return strings.Contains(lower, "ipbridge") || strings.Contains(lower, "hue-bridgeid")
}

func searchRequest(st string) string {
	return "M-SEARCH * HTTP/1.1\r\n" +
		"HOST: " + ssdpMulticast + "\r\n" +
		"MAN: \"ssdp:discover\"\r\n" +
		"MX: 2\r\n" +
		"ST: " + st + "\r\n\r\n"
}
