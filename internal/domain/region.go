package domain

import (
	"context"
	"time"
)

// RegionMetadata is the per-beach descriptor held in a region's reserved
// metadata document. Refreshed on every fetch, never cached past a request.
type RegionMetadata struct {
	BeachID            int64     `json:"beach_id"`
	Region             string    `json:"region"`
	PlaceName          string    `json:"place_name"`
	EarliestForecast   time.Time `json:"earliest_forecast"`
	LatestForecast     time.Time `json:"latest_forecast"`
	NextForecast       time.Time `json:"next_forecast"`
	TotalForecastCount int       `json:"total_forecast_count"`
	Status             string    `json:"status"`
}

// Beach is one entry of the global beach directory.
type Beach struct {
	ID          int64  `json:"id"`
	Region      string `json:"region"`
	RegionName  string `json:"region_name"`
	RegionOrder int    `json:"region_order"`
	Name        string `json:"name"`
}

// ForecastSource reads forecast documents from the remote document store.
type ForecastSource interface {
	// ForecastDocuments lists a beach's raw forecast documents ordered by
	// timestamp ascending, from since onward.
	ForecastDocuments(ctx context.Context, region string, beachID int64, since time.Time) ([]RawForecast, error)

	// ProbeMetadata reads the beach's metadata document in a region.
	// Returns (nil, nil) when the region definitively does not hold the
	// beach; a non-nil error means the probe itself failed.
	ProbeMetadata(ctx context.Context, region string, beachID int64) (*RegionMetadata, error)

	// BeachDirectory reads the global beach directory.
	BeachDirectory(ctx context.Context) ([]Beach, error)
}
