// Package estimate prices installation work and the travel surcharge.
package estimate

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/wolfman30/installer-man/internal/observability/metrics"
	"github.com/wolfman30/installer-man/pkg/logging"
)

const earthRadiusMiles = 3958.8

// Request asks for a quote. ZIP is optional; without it no travel is charged.
type Request struct {
	Quantities map[string]int `json:"quantities"`
	ZIP        string         `json:"zip,omitempty"`
}

// Travel describes the distance surcharge.
type Travel struct {
	ZIP   string  `json:"zip"`
	Miles int     `json:"miles"`
	Cost  float64 `json:"cost"`
}

// Quote is a priced estimate.
type Quote struct {
	Lines          []Line  `json:"lines"`
	Subtotal       float64 `json:"subtotal"`
	Travel         *Travel `json:"travel,omitempty"`
	Calculated     float64 `json:"calculated"`
	Total          float64 `json:"total"`
	MinimumApplied bool    `json:"minimum_applied"`
	MinimumTopUp   float64 `json:"minimum_top_up,omitempty"`
}

// Estimator computes quotes from a catalog and a geocoder.
type Estimator struct {
	catalog   *Catalog
	geocoder  Geocoder
	originZIP string
	metrics   *metrics.EstimateMetrics
	logger    *logging.Logger
}

// NewEstimator creates an estimator. geocoder may be nil, in which case
// requests with a ZIP fail with ErrLocationNotFound.
func NewEstimator(catalog *Catalog, geocoder Geocoder, originZIP string, m *metrics.EstimateMetrics, logger *logging.Logger) *Estimator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Estimator{
		catalog:   catalog,
		geocoder:  geocoder,
		originZIP: originZIP,
		metrics:   m,
		logger:    logger,
	}
}

// Catalog returns the pricing table.
func (e *Estimator) Catalog() *Catalog {
	return e.catalog
}

// Estimate prices req. The total never drops below the minimum charge.
func (e *Estimator) Estimate(ctx context.Context, req Request) (*Quote, error) {
	lines, subtotal, err := e.catalog.Lines(req.Quantities)
	if err != nil {
		return nil, err
	}

	q := &Quote{Lines: lines, Subtotal: subtotal}
	if zip := strings.TrimSpace(req.ZIP); zip != "" {
		travel, err := e.travel(ctx, zip)
		if err != nil {
			e.metrics.ObserveGeocodeError()
			return nil, err
		}
		q.Travel = travel
	}

	q.Calculated = q.Subtotal
	if q.Travel != nil {
		q.Calculated += q.Travel.Cost
	}
	q.Total = math.Max(e.catalog.MinimumCharge, q.Calculated)
	if q.Calculated < e.catalog.MinimumCharge {
		q.MinimumApplied = true
		q.MinimumTopUp = e.catalog.MinimumCharge - q.Calculated
	}

	e.metrics.ObserveQuote(q.Travel != nil)
	return q, nil
}

func (e *Estimator) travel(ctx context.Context, zip string) (*Travel, error) {
	if e.geocoder == nil {
		return nil, ErrLocationNotFound
	}
	from, err := e.geocoder.Locate(ctx, e.originZIP)
	if err != nil {
		return nil, fmt.Errorf("estimate: locate origin: %w", err)
	}
	to, err := e.geocoder.Locate(ctx, zip)
	if err != nil {
		return nil, fmt.Errorf("estimate: locate %s: %w", zip, err)
	}

	miles := int(math.Round(HaversineMiles(from, to)))
	return &Travel{ZIP: zip, Miles: miles, Cost: e.catalog.TravelCost(miles)}, nil
}

// HaversineMiles is the great-circle distance between a and b.
func HaversineMiles(a, b Point) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
