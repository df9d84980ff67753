// Package surfdb reads forecast documents from the remote surf document
// store over its HTTP read API. It implements domain.ForecastSource.
package surfdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/surfcast/internal/domain"
	"github.com/couchcryptid/surfcast/internal/observability"
)

// ErrNotFound reports a definitive not-found from the remote store, as
// opposed to a system-level failure.
var ErrNotFound = errors.New("surfdb: not found")

// Client reads from the surf forecast document store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a document store client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// ProbeMetadata reads the reserved metadata document of a beach in a region.
// A 404 means the region does not hold the beach and yields (nil, nil).
func (c *Client) ProbeMetadata(ctx context.Context, region string, beachID int64) (*domain.RegionMetadata, error) {
	u := fmt.Sprintf("%s/%s/%d/%s", c.baseURL, url.PathEscape(region), beachID, domain.MetadataDocID)

	var meta domain.RegionMetadata
	err := c.getJSON(ctx, u, "metadata", &meta)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("probe %s/%d: %w", region, beachID, err)
	}
	return &meta, nil
}

// forecastDocument is the wire form of one forecast document: a document id
// plus the flat field payload.
type forecastDocument struct {
	ID string `json:"id"`
	domain.RawForecast
}

type forecastListing struct {
	Documents []forecastDocument `json:"documents"`
}

// ForecastDocuments lists a beach's forecast documents from since onward.
// The server orders by the timestamp field ascending; the reserved metadata
// document is dropped here regardless.
func (c *Client) ForecastDocuments(ctx context.Context, region string, beachID int64, since time.Time) ([]domain.RawForecast, error) {
	u := fmt.Sprintf("%s/%s/%d/forecasts", c.baseURL, url.PathEscape(region), beachID)
	if !since.IsZero() {
		u += "?since=" + strconv.FormatInt(since.Unix(), 10)
	}

	var listing forecastListing
	if err := c.getJSON(ctx, u, "forecasts", &listing); err != nil {
		return nil, fmt.Errorf("list forecasts %s/%d: %w", region, beachID, err)
	}

	rows := make([]domain.RawForecast, 0, len(listing.Documents))
	for _, doc := range listing.Documents {
		if doc.ID == domain.MetadataDocID {
			continue
		}
		row := doc.RawForecast
		row.DocumentID = doc.ID
		rows = append(rows, row)
	}
	return rows, nil
}

// directoryRecord mirrors one beach directory entry. Pointer fields detect
// absent attributes so incomplete records can be dropped.
type directoryRecord struct {
	ID          *int64  `json:"id"`
	Region      *string `json:"region"`
	RegionName  *string `json:"region_name"`
	RegionOrder *int    `json:"region_order"`
	Name        *string `json:"name"`
}

type directoryDocument struct {
	Beaches []directoryRecord `json:"beaches"`
}

// BeachDirectory reads the global beach directory. Records missing any
// required field are dropped silently.
func (c *Client) BeachDirectory(ctx context.Context) ([]domain.Beach, error) {
	var doc directoryDocument
	if err := c.getJSON(ctx, c.baseURL+"/beaches", "directory", &doc); err != nil {
		return nil, fmt.Errorf("fetch beach directory: %w", err)
	}

	beaches := make([]domain.Beach, 0, len(doc.Beaches))
	dropped := 0
	for _, r := range doc.Beaches {
		if r.ID == nil || r.Region == nil || r.RegionName == nil || r.RegionOrder == nil || r.Name == nil {
			dropped++
			continue
		}
		beaches = append(beaches, domain.Beach{
			ID:          *r.ID,
			Region:      *r.Region,
			RegionName:  *r.RegionName,
			RegionOrder: *r.RegionOrder,
			Name:        *r.Name,
		})
	}
	if dropped > 0 {
		c.logger.Debug("dropped incomplete beach directory records", "dropped", dropped)
	}
	return beaches, nil
}

func (c *Client) getJSON(ctx context.Context, fullURL, endpoint string, out any) error {
	start := time.Now()
	defer func() {
		c.metrics.RemoteRequestSeconds.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("surfdb API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
