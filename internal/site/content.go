// Package site serves the marketing pages and their SEO companions.
package site

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// Hours are the regular opening hours.
type Hours struct {
	Days   []string `yaml:"days" json:"days"`
	Opens  string   `yaml:"opens" json:"opens"`
	Closes string   `yaml:"closes" json:"closes"`
}

// Business describes the company for page metadata and structured data.
type Business struct {
	Name         string   `yaml:"name" json:"name"`
	Tagline      string   `yaml:"tagline" json:"tagline"`
	Description  string   `yaml:"description" json:"description"`
	Phone        string   `yaml:"phone" json:"phone"`
	PhoneDisplay string   `yaml:"phone_display" json:"phone_display"`
	Email        string   `yaml:"email" json:"email"`
	Locality     string   `yaml:"locality" json:"locality"`
	Region       string   `yaml:"region" json:"region"`
	Country      string   `yaml:"country" json:"country"`
	Image        string   `yaml:"image" json:"image"`
	OGImage      string   `yaml:"og_image" json:"og_image"`
	SameAs       []string `yaml:"same_as" json:"same_as"`
	Hours        Hours    `yaml:"hours" json:"hours"`
	Keywords     []string `yaml:"keywords" json:"keywords"`
}

// Service is an offered line of work.
type Service struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Points      []string `yaml:"points" json:"points,omitempty"`
}

// Step is one stage of the customer process.
type Step struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// Image is a review photo.
type Image struct {
	Src string `yaml:"src" json:"src"`
	Alt string `yaml:"alt" json:"alt"`
}

// Review is a customer testimonial.
type Review struct {
	Headline string  `yaml:"headline" json:"headline"`
	Body     string  `yaml:"body" json:"body"`
	Name     string  `yaml:"name" json:"name"`
	Location string  `yaml:"location" json:"location"`
	Images   []Image `yaml:"images" json:"images,omitempty"`
}

// About is the copy for the about page.
type About struct {
	Intro      string   `yaml:"intro" json:"intro"`
	Paragraphs []string `yaml:"paragraphs" json:"paragraphs"`
}

// Content is everything the pages render.
type Content struct {
	Business Business  `yaml:"business" json:"business"`
	Services []Service `yaml:"services" json:"services"`
	Process  []Step    `yaml:"process" json:"process"`
	About    About     `yaml:"about" json:"about"`
	Reviews  []Review  `yaml:"reviews" json:"reviews"`
}

// DefaultContent returns the embedded site content.
func DefaultContent() (*Content, error) {
	return ParseContent(defaultContent)
}

// ParseContent decodes YAML site content.
func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("site: parse content: %w", err)
	}
	if c.Business.Name == "" {
		return nil, errors.New("site: content has no business name")
	}
	return &c, nil
}

// Gallery returns up to limit review photos in review order.
func (c *Content) Gallery(limit int) []Image {
	var out []Image
	for _, r := range c.Reviews {
		for _, img := range r.Images {
			if len(out) == limit {
				return out
			}
			out = append(out, img)
		}
	}
	return out
}

// LocalBusinessJSONLD renders the schema.org HomeAndConstructionBusiness
// description of the company.
func (c *Content) LocalBusinessJSONLD(siteURL string) ([]byte, error) {
	b := c.Business
	offers := make([]map[string]any, 0, len(c.Services))
	for _, s := range c.Services {
		offers = append(offers, map[string]any{
			"@type":       "Offer",
			"itemOffered": map[string]any{"@type": "Service", "name": s.Title},
		})
	}
	doc := map[string]any{
		"@context":  "https://schema.org",
		"@type":     "HomeAndConstructionBusiness",
		"name":      b.Name,
		"url":       siteURL,
		"telephone": b.Phone,
		"email":     b.Email,
		"image":     []string{siteURL + b.Image},
		"address": map[string]any{
			"@type":           "PostalAddress",
			"addressLocality": b.Locality,
			"addressRegion":   b.Region,
			"addressCountry":  b.Country,
		},
		"areaServed": map[string]any{"@type": "City", "name": b.Locality},
		"sameAs":     b.SameAs,
		"openingHoursSpecification": []map[string]any{{
			"@type":     "OpeningHoursSpecification",
			"dayOfWeek": b.Hours.Days,
			"opens":     b.Hours.Opens,
			"closes":    b.Hours.Closes,
		}},
		"makesOffer": offers,
	}
	return json.Marshal(doc)
}
