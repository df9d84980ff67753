package forecast

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// probeResult captures one region probe's outcome, indexed by candidate
// position so selection never depends on completion order.
type probeResult struct {
	found bool
	err   error
}

// LocateRegion resolves which remote partition holds a beach by probing every
// candidate region concurrently and joining on all of them. Ties between
// confirmed regions break by candidate order, not arrival order. A probe
// error surfaces only when no region confirmed; with no confirmations and no
// errors the beach is definitively absent and the empty string returns.
func (s *Service) LocateRegion(ctx context.Context, beachID int64) (string, error) {
	start := time.Now()
	results := make([]probeResult, len(s.regions))

	var g errgroup.Group
	for i, region := range s.regions {
		g.Go(func() error {
			meta, err := s.source.ProbeMetadata(ctx, region, beachID)
			results[i] = probeResult{found: err == nil && meta != nil, err: err}
			return nil
		})
	}
	g.Wait() //nolint:errcheck // probe outcomes travel through results

	s.metrics.RegionLocateSeconds.Observe(time.Since(start).Seconds())

	var firstErr error
	for i, r := range results {
		switch {
		case r.found:
			s.metrics.RegionProbes.WithLabelValues("hit").Inc()
			return s.regions[i], nil
		case r.err != nil:
			s.metrics.RegionProbes.WithLabelValues("error").Inc()
			if firstErr == nil {
				firstErr = r.err
			}
		default:
			s.metrics.RegionProbes.WithLabelValues("miss").Inc()
		}
	}

	if firstErr != nil {
		return "", firstErr
	}
	return "", nil
}
