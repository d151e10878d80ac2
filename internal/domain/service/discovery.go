package service

import (
	"context"
	"log/slog"
	"net/netip"
	"slices"

	"hue-panel/internal/ports"
)

// DiscoveryService merges the candidates of every configured finder.
// Results are candidates, not verified bridges; an empty result means no
// bridge was found and is not an error.
type DiscoveryService struct {
	finders []ports.BridgeFinder
	logger  *slog.Logger
}

var _ ports.Discoverer = (*DiscoveryService)(nil)

func NewDiscoveryService(logger *slog.Logger, finders ...ports.BridgeFinder) *DiscoveryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DiscoveryService{
		finders: finders,
		logger:  logger.With("component", "discovery"),
	}
}

// Discover runs the finders in order and returns the deduplicated candidates
// sorted ascending. A failing finder is logged and skipped. Cancelling ctx
// stops the run and returns what was found so far with ctx's error.
func (s *DiscoveryService) Discover(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, f := range s.finders {
		if err := ctx.Err(); err != nil {
			return SortAddrs(seen), err
		}
		ips, err := f.Find(ctx)
		for _, ip := range ips {
			seen[ip] = struct{}{}
		}
		if err != nil {
			if ctx.Err() != nil {
				return SortAddrs(seen), ctx.Err()
			}
			s.logger.Warn("finder failed", "finder", f.Name(), "error", err)
			continue
		}
		s.logger.Debug("finder done", "finder", f.Name(), "found", len(ips))
	}
	result := SortAddrs(seen)
	s.logger.Info("discovery complete", "candidates", len(result))
	return result, nil
}

// SortAddrs returns the set's members in ascending address order. Values
// that do not parse as IP addresses sort after all addresses, lexically.
func SortAddrs(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for ip := range set {
		out = append(out, ip)
	}
	slices.SortFunc(out, func(a, b string) int {
		pa, errA := netip.ParseAddr(a)
		pb, errB := netip.ParseAddr(b)
		switch {
		case errA == nil && errB == nil:
			if c := pa.Compare(pb); c != 0 {
				return c
			}
		case errA == nil:
			return -1
		case errB == nil:
			return 1
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
	return out
}
