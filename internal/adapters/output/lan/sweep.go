// Package lan finds Hue bridge candidates on the local network: a brute
// force HTTP sweep of the /24 this host sits on, plus optional mDNS and SSDP
// queries. Nothing here talks to a cloud service.
package lan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"hue-panel/internal/domain/model"
	"hue-panel/internal/ports"
)

const (
	DefaultWorkers      = 32
	DefaultProbeTimeout = 500 * time.Millisecond

	// probeBodyLimit caps how much of a description document is read.
	probeBodyLimit = 64 << 10
)

// ProbeFunc reports whether the host at ip looks like a Hue bridge. It must
// treat any failure as no match.
type ProbeFunc func(ctx context.Context, ip string) bool

// PrefixFunc returns the /24 prefixes to sweep, each ending in a dot.
type PrefixFunc func(ctx context.Context) []string

// Sweeper probes every host .1 to .254 of each prefix with a bounded pool of
// workers.
type Sweeper struct {
	probe    ProbeFunc
	prefixes PrefixFunc
	workers  int
	logger   *slog.Logger
}

var _ ports.BridgeFinder = (*Sweeper)(nil)

type SweepOption func(*Sweeper)

// WithWorkers bounds the number of concurrent probes. Values below one keep
// the default.
func WithWorkers(n int) SweepOption {
	return func(s *Sweeper) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithProbe(p ProbeFunc) SweepOption {
	return func(s *Sweeper) { s.probe = p }
}

func WithPrefixes(p PrefixFunc) SweepOption {
	return func(s *Sweeper) { s.prefixes = p }
}

func WithSweepLogger(l *slog.Logger) SweepOption {
	return func(s *Sweeper) { s.logger = l }
}

// NewSweeper builds a sweep that probes description.xml with the given
// per-host timeout and derives its prefixes from the primary interface,
// falling back to a copy of fallback (model.DefaultFallbackPrefixes when
// empty).
func NewSweeper(probeTimeout time.Duration, fallback []string, opts ...SweepOption) *Sweeper {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	if len(fallback) == 0 {
		fallback = model.DefaultFallbackPrefixes()
	} else {
		fallback = slices.Clone(fallback)
	}
	s := &Sweeper{
		probe:    HTTPProbe(&http.Client{}, probeTimeout),
		workers:  DefaultWorkers,
		logger:   slog.New(slog.DiscardHandler),
		prefixes: func(ctx context.Context) []string { return PrimaryPrefixes(ctx, fallback) },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "sweep")
	return s
}

func (s *Sweeper) Name() string { return "sweep" }

// Find sweeps each prefix in turn. On cancellation it stops issuing probes and
// returns the hits gathered so far together with ctx's error. The returned
// slice is unordered.
func (s *Sweeper) Find(ctx context.Context) ([]string, error) {
	var (
		mu   sync.Mutex
		hits = make(map[string]struct{})
	)

	for _, prefix := range s.prefixes(ctx) {
		if err := ctx.Err(); err != nil {
			return keys(hits), err
		}
		s.logger.Debug("sweeping", "prefix", prefix)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.workers)
		for i := 1; i <= 254; i++ {
			if gctx.Err() != nil {
				break
			}
			ip := fmt.Sprintf("%s%d", prefix, i)
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				if s.probe(gctx, ip) {
					mu.Lock()
					hits[ip] = struct{}{}
					mu.Unlock()
					s.logger.Info("bridge candidate", "ip", ip)
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return keys(hits), err
	}
	return keys(hits), nil
}

// HTTPProbe fetches http://<ip>/description.xml. A host matches when it
// answers 2xx and either the body mentions both "philip" and "bridge" or the
// Server header names IpBridge.
func HTTPProbe(client *http.Client, timeout time.Duration) ProbeFunc {
	return func(ctx context.Context, ip string) bool {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+ip+"/description.xml", nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return false
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, probeBodyLimit))
		if err != nil {
			return false
		}
		txt := strings.ToLower(string(body))
		if strings.Contains(txt, "philip") && strings.Contains(txt, "bridge") {
			return true
		}
		return strings.Contains(strings.ToLower(resp.Header.Get("Server")), "ipbridge")
	}
}

// PrimaryPrefixes returns the /24 of the address the OS would use to reach
// the internet. No packet is sent: connecting a UDP socket only selects a
// route. When that fails, fallback is returned.
func PrimaryPrefixes(ctx context.Context, fallback []string) []string {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp4", "8.8.8.8:80")
	if err != nil {
		return fallback
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return fallback
	}
	if p := prefixOf(addr.IP); p != "" {
		return []string{p}
	}
	return fallback
}

func prefixOf(ip net.IP) string {
	v4 := ip.To4()
	if v4 == nil || v4.IsUnspecified() {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d.", v4[0], v4[1], v4[2])
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
