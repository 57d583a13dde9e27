package leads

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/wolfman30/installer-man/internal/observability/metrics"
	"github.com/wolfman30/installer-man/pkg/logging"
)

// MaxBodyBytes caps the contact form body.
const MaxBodyBytes = 64 << 10

// Handler serves the contact form endpoint.
type Handler struct {
	service Submitter
	metrics *metrics.LeadMetrics
	logger  *logging.Logger
}

// NewHandler creates a new leads handler.
func NewHandler(service Submitter, m *metrics.LeadMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		metrics: m,
		logger:  logger,
	}
}

type successResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

type invalidResponse struct {
	Error  string  `json:"error"`
	Issues []Issue `json:"issues"`
}

type unconfiguredResponse struct {
	Error   string          `json:"error"`
	Missing map[string]bool `json:"missing"`
}

type errorResponse struct {
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// Submit handles POST /api/contact.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		h.fail(w, &ParseError{Err: err})
		return
	}

	lead, err := decodeRequest(r.Header.Get("Content-Type"), body)
	if err != nil {
		h.fail(w, err)
		return
	}

	receipt, err := h.service.Submit(r.Context(), *lead)
	if err != nil {
		h.fail(w, err)
		return
	}

	h.metrics.ObserveSubmission(metrics.OutcomeOK)
	writeJSON(w, http.StatusOK, successResponse{OK: true, ID: receipt.ID})
}

// decodeRequest accepts JSON and, for browsers posting the page form
// without script, URL-encoded bodies.
func decodeRequest(contentType string, body []byte) (*LeadRequest, error) {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "application/x-www-form-urlencoded" {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		return DecodeForm(form)
	}
	return Decode(body)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	var (
		parseErr  *ParseError
		validErr  *ValidationError
		configErr *ConfigurationError
		sendErr   *DeliveryError
	)
	switch {
	case errors.As(err, &validErr):
		h.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		h.logger.Info("contact form rejected", "fields", validErr.Fields())
		writeJSON(w, http.StatusBadRequest, invalidResponse{Error: "Invalid input", Issues: validErr.Issues})
	case errors.As(err, &configErr):
		h.metrics.ObserveSubmission(metrics.OutcomeUnconfigured)
		h.logger.Error("mail delivery not configured", "missing", configErr.Missing)
		writeJSON(w, http.StatusInternalServerError, unconfiguredResponse{Error: "SMTP not configured.", Missing: configErr.Missing})
	case errors.As(err, &sendErr):
		h.metrics.ObserveSubmission(metrics.OutcomeDeliveryFail)
		h.logger.Error("failed to send lead notification", "error", sendErr.Err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Unexpected error", Details: sendErr.Error()})
	case errors.As(err, &parseErr):
		h.metrics.ObserveSubmission(metrics.OutcomeParseError)
		h.logger.Warn("failed to parse contact request", "error", parseErr.Err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Unexpected error", Details: parseErr.Err.Error()})
	default:
		h.metrics.ObserveSubmission(metrics.OutcomeError)
		h.logger.Error("contact submission failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Unexpected error", Details: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
