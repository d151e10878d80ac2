package lan

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/mdns"
	"hue-panel/internal/ports"
)

const hueService = "_hue._tcp"

// QueryFunc runs one mDNS query. mdns.Query satisfies it.
type QueryFunc func(*mdns.QueryParam) error

// MDNSFinder asks the LAN for _hue._tcp services.
type MDNSFinder struct {
	timeout time.Duration
	query   QueryFunc
	logger  *slog.Logger
}

var _ ports.BridgeFinder = (*MDNSFinder)(nil)

func NewMDNSFinder(timeout time.Duration, logger *slog.Logger) *MDNSFinder {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MDNSFinder{
		timeout: timeout,
		query:   mdns.Query,
		logger:  logger.With("component", "mdns"),
	}
}

func (f *MDNSFinder) Name() string { return "mdns" }

func (f *MDNSFinder) Find(ctx context.Context) ([]string, error) {
	entries := make(chan *mdns.ServiceEntry, 10)
	errc := make(chan error, 1)

	go func() {
		params := &mdns.QueryParam{
			Service:             hueService,
			Domain:              "local",
			Timeout:             f.timeout,
			Entries:             entries,
			DisableIPv6:         true,
			WantUnicastResponse: true,
			Logger:              slog.NewLogLogger(f.logger.Handler(), slog.LevelDebug),
		}
		errc <- f.query(params)
		close(entries)
	}()

	seen := make(map[string]struct{})
	for {
		select {
		case <-ctx.Done():
			// The query goroutine still owns entries; drain it so it can exit.
			go func() {
				for range entries {
				}
			}()
			return keys(seen), ctx.Err()
		case entry, ok := <-entries:
			if !ok {
				return keys(seen), <-errc
			}
			if entry == nil || entry.AddrV4 == nil {
				continue
			}
			ip := entry.AddrV4.String()
			f.logger.Debug("mdns entry", "name", entry.Name, "ip", ip)
			seen[ip] = struct{}{}
		}
	}
}
