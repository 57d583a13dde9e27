package estimate

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wolfman30/installer-man/pkg/logging"
)

// Handler serves the estimator endpoints.
type Handler struct {
	estimator *Estimator
	logger    *logging.Logger
}

// NewHandler creates an estimate handler.
func NewHandler(estimator *Estimator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{estimator: estimator, logger: logger}
}

// Items handles GET /api/estimate/items.
func (h *Handler) Items(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.estimator.Catalog())
}

// Quote handles POST /api/estimate.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	quote, err := h.estimator.Estimate(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, quote)
	case errors.Is(err, ErrUnknownItem):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		h.logger.Warn("travel lookup failed", "zip", req.ZIP, "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "Could not locate one of the ZIP codes."})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
