package estimate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wolfman30/installer-man/pkg/logging"
)

// ErrLocationNotFound is returned when a ZIP code cannot be placed.
var ErrLocationNotFound = errors.New("estimate: location not found")

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Geocoder resolves a US ZIP code to a coordinate.
type Geocoder interface {
	Locate(ctx context.Context, zip string) (Point, error)
}

// NominatimClient queries a Nominatim-compatible /search endpoint and
// caches hits for the life of the process.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *logging.Logger

	mu    sync.RWMutex
	cache map[string]Point
}

// NominatimConfig configures NominatimClient.
type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// NewNominatimClient creates a geocoder.
func NewNominatimClient(cfg NominatimConfig, logger *logging.Logger) *NominatimClient {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NominatimClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		cache:      make(map[string]Point),
	}
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Locate returns the first US match for zip.
func (c *NominatimClient) Locate(ctx context.Context, zip string) (Point, error) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return Point{}, ErrLocationNotFound
	}

	c.mu.RLock()
	p, ok := c.cache[zip]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	q := url.Values{}
	q.Set("q", zip)
	q.Set("countrycodes", "us")
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("estimate: create geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("estimate: geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("estimate: geocoder returned %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Point{}, fmt.Errorf("estimate: decode geocode response: %w", err)
	}
	if len(places) == 0 {
		return Point{}, fmt.Errorf("%w: %s", ErrLocationNotFound, zip)
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return Point{}, fmt.Errorf("%w: bad coordinates for %s", ErrLocationNotFound, zip)
	}

	p = Point{Lat: lat, Lon: lon}
	c.mu.Lock()
	c.cache[zip] = p
	c.mu.Unlock()
	c.logger.Debug("geocoded zip", "zip", zip, "lat", lat, "lon", lon)
	return p, nil
}
