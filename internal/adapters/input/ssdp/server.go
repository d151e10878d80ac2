// Package ssdp answers UPnP M-SEARCH requests on behalf of the simulated
// bridge so LAN discovery can find it.
package ssdp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
)

const multicastAddr = "239.255.255.250:1900"

type Server struct {
	ip     string
	port   int
	logger *slog.Logger
}

func NewServer(ip string, port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{ip: ip, port: port, logger: logger.With("component", "ssdp")}
}

// Start listens on the SSDP multicast group until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp4", multicastAddr)
	if err != nil {
		return err
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, addr)
	if err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 1024)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		if Matches(string(buf[:n])) {
			s.respond(src)
		}
	}
}

// Matches reports whether msg is an M-SEARCH a bridge would answer.
func Matches(msg string) bool {
	if !strings.Contains(msg, "M-SEARCH") {
		return false
	}
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "urn:schemas-upnp-org:device:basic:1") ||
		strings.Contains(lower, "upnp:rootdevice") ||
		strings.Contains(lower, "ssdp:all")
}

// Response is the unicast reply sent to a matching search.
func (s *Server) Response() string {
	return fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"CACHE-CONTROL: max-age=100\r\n"+
		"EXT:\r\n"+
		"LOCATION: http://%s:%d/description.xml\r\n"+
		"SERVER: Linux/3.14.0 UPnP/1.0 IpBridge/1.26.0\r\n"+
		"hue-bridgeid: 001788FFFE102201\r\n"+
		"ST: urn:schemas-upnp-org:device:basic:1\r\n"+
		"USN: uuid:2f402f80-da50-11e1-9b23-001788102201::urn:schemas-upnp-org:device:basic:1\r\n\r\n", s.ip, s.port)
}

func (s *Server) respond(dest *net.UDPAddr) {
	conn, err := net.DialUDP("udp4", nil, dest)
	if err != nil {
		s.logger.Debug("reply failed", "dest", dest.String(), "error", err)
		return
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(s.Response())); err != nil {
		s.logger.Debug("reply failed", "dest", dest.String(), "error", err)
	}
}
