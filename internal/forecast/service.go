// Package forecast turns raw remote forecast documents into canonical charts:
// it resolves which region partition owns a beach, fetches the beach's
// documents, and runs them through domain normalization.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/surfcast/internal/domain"
	"github.com/couchcryptid/surfcast/internal/observability"
)

// ErrBeachNotFound reports that no candidate region holds the beach.
var ErrBeachNotFound = errors.New("beach not found in any region")

// summaryConcurrency bounds parallel per-beach fetches in Summary.
const summaryConcurrency = 4

// Service fetches and normalizes forecasts for beaches.
type Service struct {
	source  domain.ForecastSource
	regions []string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a forecast Service probing the given candidate regions, in
// priority order.
func New(source domain.ForecastSource, regions []string, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		source:  source,
		regions: regions,
		logger:  logger,
		metrics: metrics,
	}
}

// ChartsForBeach locates the beach's region, fetches its raw documents from
// since onward, and returns normalized charts ordered by time ascending.
// The call fails as a whole: there is no partial result alongside an error.
func (s *Service) ChartsForBeach(ctx context.Context, beachID int64, since time.Time) ([]domain.Chart, error) {
	region, err := s.LocateRegion(ctx, beachID)
	if err != nil {
		s.metrics.ForecastFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("locate region for beach %d: %w", beachID, err)
	}
	if region == "" {
		s.metrics.ForecastFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("beach %d: %w", beachID, ErrBeachNotFound)
	}

	rows, err := s.source.ForecastDocuments(ctx, region, beachID, since)
	if err != nil {
		s.metrics.ForecastFetches.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch forecasts for beach %d in %s: %w", beachID, region, err)
	}

	charts, stats := domain.NormalizeForecasts(rows, beachID, since)

	s.metrics.ForecastFetches.WithLabelValues("success").Inc()
	s.metrics.ChartsNormalized.Add(float64(len(charts)))
	s.metrics.RowsSkipped.Add(float64(stats.Skipped))
	s.metrics.SparseRows.Add(float64(stats.Sparse))

	if stats.Sparse > 0 {
		s.logger.Warn("sparse forecast rows normalized to zero-filled charts",
			"beach_id", beachID, "region", region, "sparse", stats.Sparse)
	}
	s.logger.Debug("forecasts normalized",
		"beach_id", beachID, "region", region,
		"charts", len(charts), "skipped", stats.Skipped)

	return charts, nil
}

// LatestChart returns the most recent chart for a beach, or nil when the
// beach has no forecasts from since onward.
func (s *Service) LatestChart(ctx context.Context, beachID int64, since time.Time) (*domain.Chart, error) {
	charts, err := s.ChartsForBeach(ctx, beachID, since)
	if err != nil {
		return nil, err
	}
	if len(charts) == 0 {
		return nil, nil
	}
	latest := charts[len(charts)-1]
	return &latest, nil
}

// Summary fetches the latest chart of each beach concurrently and rolls them
// up into cross-beach averages. Any beach failing fails the whole call.
func (s *Service) Summary(ctx context.Context, beachIDs []int64, since time.Time) (domain.Summary, error) {
	latest := make([]*domain.Chart, len(beachIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryConcurrency)
	for i, id := range beachIDs {
		g.Go(func() error {
			chart, err := s.LatestChart(ctx, id, since)
			if err != nil {
				return err
			}
			latest[i] = chart
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Summary{}, err
	}

	charts := make([]domain.Chart, 0, len(latest))
	for _, c := range latest {
		if c != nil {
			charts = append(charts, *c)
		}
	}
	return domain.AverageCharts(charts), nil
}

// Directory returns the global beach directory.
func (s *Service) Directory(ctx context.Context) ([]domain.Beach, error) {
	beaches, err := s.source.BeachDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch beach directory: %w", err)
	}
	return beaches, nil
}
