package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/installer-man/internal/estimate"
	httpmiddleware "github.com/wolfman30/installer-man/internal/http/middleware"
	"github.com/wolfman30/installer-man/internal/leads"
	"github.com/wolfman30/installer-man/internal/site"
	"github.com/wolfman30/installer-man/pkg/logging"
)

// ReadinessChecker reports whether lead delivery is configured.
type ReadinessChecker interface {
	Ready() bool
}

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	EstimateHandler    *estimate.Handler
	SiteHandler        *site.Handler
	Delivery           ReadinessChecker
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", healthHandler(cfg.Delivery))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.LeadsHandler != nil {
			api.Post("/contact", cfg.LeadsHandler.Submit)
		}
		if cfg.EstimateHandler != nil {
			api.Post("/estimate", cfg.EstimateHandler.Quote)
			api.Get("/estimate/items", cfg.EstimateHandler.Items)
		}
		if cfg.SiteHandler != nil {
			api.Get("/site", cfg.SiteHandler.Info)
		}
	})

	if cfg.SiteHandler != nil {
		r.Get("/", cfg.SiteHandler.Home)
		r.Get("/about", cfg.SiteHandler.About)
		r.Get("/robots.txt", cfg.SiteHandler.Robots)
		r.Get("/sitemap.xml", cfg.SiteHandler.Sitemap)
	}

	return r
}

func healthHandler(delivery ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := struct {
			Status        string `json:"status"`
			DeliveryReady bool   `json:"delivery_ready"`
		}{
			Status:        "ok",
			DeliveryReady: delivery != nil && delivery.Ready(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
