package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SITE_URL", "")
	t.Setenv("NEXT_PUBLIC_SITE_URL", "")
	t.Setenv("MAIL_TIMEOUT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.SiteURL != "http://localhost:3000" {
		t.Fatalf("expected default site url, got %s", cfg.SiteURL)
	}
	if cfg.MailTimeout != 0 {
		t.Fatalf("expected no mail timeout by default, got %s", cfg.MailTimeout)
	}
	if cfg.GeocoderWait != 10*time.Second {
		t.Fatalf("expected default geocoder timeout, got %s", cfg.GeocoderWait)
	}
	if cfg.OriginZIP != "91304" {
		t.Fatalf("expected default origin zip, got %s", cfg.OriginZIP)
	}
	if len(cfg.CORSOrigins) != 0 {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("SITE_URL", "")
	t.Setenv("NEXT_PUBLIC_SITE_URL", "https://installer.example/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://installer.example, ,https://www.installer.example")
	t.Setenv("MAIL_TIMEOUT", "20s")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.SiteURL != "https://installer.example" {
		t.Fatalf("expected public site url fallback without trailing slash, got %s", cfg.SiteURL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected two cors origins, got %v", cfg.CORSOrigins)
	}
	if cfg.MailTimeout != 20*time.Second {
		t.Fatalf("expected mail timeout override, got %s", cfg.MailTimeout)
	}
	if cfg.Delivery.SMTPHost != "smtp.example.com" {
		t.Fatalf("expected delivery resolved from env, got %q", cfg.Delivery.SMTPHost)
	}
}
