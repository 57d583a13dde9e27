package metrics

import "github.com/prometheus/client_golang/prometheus"

// Lead submission outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeParseError   = "parse_error"
	OutcomeInvalid      = "invalid"
	OutcomeUnconfigured = "unconfigured"
	OutcomeDeliveryFail = "delivery_failed"
	OutcomeError        = "error"
)

// LeadMetrics exposes counters/histograms for the contact form pipeline.
type LeadMetrics struct {
	submissions      *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installer",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "installer",
			Subsystem: "contact",
			Name:      "dispatch_seconds",
			Help:      "Latency of lead notification email dispatch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissions, m.dispatchDuration)
	return m
}

func (m *LeadMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *LeadMetrics) ObserveDispatch(transport string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	m.dispatchDuration.WithLabelValues(transport, status).Observe(seconds)
}

// EstimateMetrics tracks cost estimator usage.
type EstimateMetrics struct {
	quotes        *prometheus.CounterVec
	geocodeErrors prometheus.Counter
}

func NewEstimateMetrics(reg prometheus.Registerer) *EstimateMetrics {
	m := &EstimateMetrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "installer",
			Subsystem: "estimate",
			Name:      "quotes_total",
			Help:      "Estimates computed, split by whether travel was included",
		}, []string{"travel"}),
		geocodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "installer",
			Subsystem: "estimate",
			Name:      "geocode_errors_total",
			Help:      "ZIP lookups that failed",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.quotes, m.geocodeErrors)
	return m
}

func (m *EstimateMetrics) ObserveQuote(withTravel bool) {
	if m == nil {
		return
	}
	label := "false"
	if withTravel {
		label = "true"
	}
	m.quotes.WithLabelValues(label).Inc()
}

func (m *EstimateMetrics) ObserveGeocodeError() {
	if m == nil {
		return
	}
	m.geocodeErrors.Inc()
}
