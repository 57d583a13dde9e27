package config

import (
	"os"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	LogFormat     string
	SiteURL       string
	CORSOrigins   []string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MailTimeout   time.Duration
	OriginZIP     string
	GeocoderURL   string
	GeocoderAgent string
	GeocoderWait  time.Duration

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Delivery is resolved once here and injected into the contact handler.
	Delivery Delivery
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		SiteURL:       strings.TrimRight(firstNonEmpty(getEnv("SITE_URL", ""), getEnv("NEXT_PUBLIC_SITE_URL", ""), "http://localhost:3000"), "/"),
		CORSOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		ReadTimeout:   getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:  getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		MailTimeout:   getEnvAsDuration("MAIL_TIMEOUT", 0),
		OriginZIP:     getEnv("ESTIMATE_ORIGIN_ZIP", "91304"),
		GeocoderURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocoderAgent: getEnv("GEOCODER_USER_AGENT", "installer-man-site/1.0"),
		GeocoderWait:  getEnvAsDuration("GEOCODER_TIMEOUT", 10*time.Second),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		Delivery: ResolveDelivery(os.Getenv),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
