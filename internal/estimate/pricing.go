package estimate

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed pricing.yaml
var defaultPricing []byte

// ErrUnknownItem is returned when a quote names an item the catalog lacks.
var ErrUnknownItem = errors.New("estimate: unknown item")

// Item is one priced line of work.
type Item struct {
	ID    string  `yaml:"id" json:"id"`
	Label string  `yaml:"label" json:"label"`
	Unit  string  `yaml:"unit" json:"unit"`
	Rate  float64 `yaml:"rate" json:"rate"`
}

// Catalog is the pricing table plus the travel and minimum charge rules.
type Catalog struct {
	Items            []Item  `yaml:"items" json:"items"`
	MinimumCharge    float64 `yaml:"minimum_charge" json:"minimum_charge"`
	FreeRadiusMiles  float64 `yaml:"free_radius_miles" json:"free_radius_miles"`
	PerMileRoundTrip float64 `yaml:"per_mile_round_trip" json:"per_mile_round_trip"`
}

// DefaultCatalog returns the embedded price list.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultPricing)
}

// ParseCatalog decodes a YAML price list.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("estimate: parse pricing: %w", err)
	}
	seen := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		if item.ID == "" {
			return nil, errors.New("estimate: pricing item without id")
		}
		if seen[item.ID] {
			return nil, fmt.Errorf("estimate: duplicate pricing item %q", item.ID)
		}
		seen[item.ID] = true
	}
	return &c, nil
}

func (c *Catalog) item(id string) (Item, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Line is a priced quantity.
type Line struct {
	Item     Item    `json:"item"`
	Quantity int     `json:"quantity"`
	Total    float64 `json:"total"`
}

// Lines prices quantities in catalog order. Negative quantities count as
// zero and zero lines are dropped.
func (c *Catalog) Lines(quantities map[string]int) ([]Line, float64, error) {
	for id := range quantities {
		if _, ok := c.item(id); !ok {
			return nil, 0, fmt.Errorf("%w: %q", ErrUnknownItem, id)
		}
	}

	lines := []Line{}
	var subtotal float64
	for _, item := range c.Items {
		qty := max(0, quantities[item.ID])
		if qty == 0 {
			continue
		}
		total := float64(qty) * item.Rate
		lines = append(lines, Line{Item: item, Quantity: qty, Total: total})
		subtotal += total
	}
	return lines, subtotal, nil
}

// TravelCost charges for every mile beyond the free radius, both ways.
func (c *Catalog) TravelCost(miles int) float64 {
	extra := max(0, float64(miles)-c.FreeRadiusMiles)
	return extra * c.PerMileRoundTrip
}
