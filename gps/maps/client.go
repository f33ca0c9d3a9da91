// Package maps fetches walking directions and elevations from the Google Maps
// web services and adapts them to gps.RouteProvider.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Bucknalla/geobeam/gps"
)

const (
	DefaultBaseURL   = "https://maps.googleapis.com/maps/api"
	DefaultMode      = "walking"
	DefaultCacheSize = 4096

	// Number of locations sent in a single elevation request
	elevationBatchSize = 256
)

// Config holds the options for a maps client
type Config struct {
	APIKey     string
	BaseURL    string
	Mode       string // walking, bicycling, driving
	CacheSize  int
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the Directions and Elevation APIs
type Client struct {
	apiKey     string
	baseURL    string
	mode       string
	httpClient *http.Client
	elevations *lru.Cache[gps.LatLon, float64]
	logger     *slog.Logger
}

var _ gps.RouteProvider = (*Client)(nil)

// New creates a maps client, filling unset options with defaults
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Mode == "" {
		cfg.Mode = DefaultMode
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	cache, err := lru.New[gps.LatLon, float64](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create elevation cache: %w", err)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		mode:       cfg.Mode,
		httpClient: cfg.HTTPClient,
		elevations: cache,
		logger:     cfg.Logger,
	}, nil
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type valueField struct {
	Value float64 `json:"value"`
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Steps []struct {
				StartLocation location   `json:"start_location"`
				EndLocation   location   `json:"end_location"`
				Distance      valueField `json:"distance"`
				Duration      valueField `json:"duration"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

type elevationResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		Elevation float64  `json:"elevation"`
		Location  location `json:"location"`
	} `json:"results"`
}

// FetchRoute requests directions from start to end. The first waypoint is the
// start of the first step; every step then contributes its end location and
// length. gps.ErrNoRoute is returned when the service finds no route.
func (c *Client) FetchRoute(ctx context.Context, start, end gps.LatLon) (gps.Directions, error) {
	params := url.Values{}
	params.Set("origin", start.String())
	params.Set("destination", end.String())
	params.Set("mode", c.mode)
	params.Set("departure_time", "now")

	var resp directionsResponse
	if err := c.get(ctx, "directions/json", params, &resp); err != nil {
		return gps.Directions{}, err
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return gps.Directions{}, gps.ErrNoRoute
	default:
		return gps.Directions{}, fmt.Errorf("%w: directions %s %s", ErrAPIStatus, resp.Status, resp.ErrorMessage)
	}
	if len(resp.Routes) == 0 || len(resp.Routes[0].Legs) == 0 || len(resp.Routes[0].Legs[0].Steps) == 0 {
		return gps.Directions{}, gps.ErrNoRoute
	}

	route := resp.Routes[0]
	first := route.Legs[0].Steps[0].StartLocation
	directions := gps.Directions{
		Waypoints: []gps.LatLon{{Lat: first.Lat, Lon: first.Lng}},
		Polyline:  route.OverviewPolyline.Points,
	}
	for _, leg := range route.Legs {
		for _, step := range leg.Steps {
			directions.Waypoints = append(directions.Waypoints, gps.LatLon{Lat: step.EndLocation.Lat, Lon: step.EndLocation.Lng})
			directions.Distances = append(directions.Distances, step.Distance.Value)
			directions.Durations = append(directions.Durations, step.Duration.Value)
		}
	}

	c.logger.Debug("fetched directions", "start", start.String(), "end", end.String(), "waypoints", len(directions.Waypoints))
	return directions, nil
}

// FetchElevations returns one elevation per point, in input order. Points
// already seen are served from the cache; the rest are requested in batches.
func (c *Client) FetchElevations(ctx context.Context, points []gps.LatLon) ([]float64, error) {
	elevations := make([]float64, len(points))

	var missing []int
	for i, p := range points {
		if e, ok := c.elevations.Get(p); ok {
			elevations[i] = e
		} else {
			missing = append(missing, i)
		}
	}

	for start := 0; start < len(missing); start += elevationBatchSize {
		end := min(start+elevationBatchSize, len(missing))
		batch := missing[start:end]

		locations := make([]string, len(batch))
		for j, idx := range batch {
			locations[j] = points[idx].String()
		}

		params := url.Values{}
		params.Set("locations", strings.Join(locations, "|"))

		var resp elevationResponse
		if err := c.get(ctx, "elevation/json", params, &resp); err != nil {
			return nil, err
		}
		if resp.Status != "OK" {
			return nil, fmt.Errorf("%w: elevation %s %s", ErrAPIStatus, resp.Status, resp.ErrorMessage)
		}
		if len(resp.Results) != len(batch) {
			return nil, fmt.Errorf("%w: requested %d, got %d", gps.ErrElevationMismatch, len(batch), len(resp.Results))
		}

		for j, idx := range batch {
			elevations[idx] = resp.Results[j].Elevation
			c.elevations.Add(points[idx], resp.Results[j].Elevation)
		}
	}

	c.logger.Debug("fetched elevations", "points", len(points), "requested", len(missing))
	return elevations, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + "/" + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps API %s returned %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("JSON decode failed: %w", err)
	}
	return nil
}
