package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/installer-man/internal/api/router"
	appconfig "github.com/wolfman30/installer-man/internal/config"
	"github.com/wolfman30/installer-man/internal/estimate"
	"github.com/wolfman30/installer-man/internal/leads"
	"github.com/wolfman30/installer-man/internal/observability/metrics"
	"github.com/wolfman30/installer-man/internal/site"
	"github.com/wolfman30/installer-man/pkg/logging"
)

// BuildHandler wires every component behind the router. The server and the
// Lambda entrypoint share it.
func BuildHandler(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (http.Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	leadMetrics := metrics.NewLeadMetrics(reg)
	estimateMetrics := metrics.NewEstimateMetrics(reg)

	sender, err := BuildSender(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	leadService := leads.NewService(cfg.Delivery, sender, logger.With("component", "leads"),
		leads.WithMetrics(leadMetrics),
		leads.WithDispatchTimeout(cfg.MailTimeout),
	)

	catalog, err := estimate.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	geocoder := estimate.NewNominatimClient(estimate.NominatimConfig{
		BaseURL:   cfg.GeocoderURL,
		UserAgent: cfg.GeocoderAgent,
		Timeout:   cfg.GeocoderWait,
	}, logger)
	estimator := estimate.NewEstimator(catalog, geocoder, cfg.OriginZIP, estimateMetrics, logger)

	content, err := site.DefaultContent()
	if err != nil {
		return nil, err
	}
	siteHandler, err := site.NewHandler(content, cfg.SiteURL, logger)
	if err != nil {
		return nil, err
	}

	return router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leads.NewHandler(leadService, leadMetrics, logger.With("component", "contact")),
		EstimateHandler:    estimate.NewHandler(estimator, logger),
		SiteHandler:        siteHandler,
		Delivery:           leadService,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSOrigins,
	}), nil
}
