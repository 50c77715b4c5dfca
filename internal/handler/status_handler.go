package handler

import (
	"net/http"
	"strconv"

	"github.com/webmatic/api/internal/metrics"
	"github.com/webmatic/api/internal/service"
	"github.com/webmatic/api/internal/validation"
)

// StatusHandler records and lists status checks.
type StatusHandler struct {
	statusService service.StatusService
	validator     *validation.StatusCheckValidator
	resolver      ClientKeyResolver
	metrics       *metrics.Metrics
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(statusService service.StatusService, resolver ClientKeyResolver, m *metrics.Metrics) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		validator:     validation.NewStatusCheckValidator(),
		resolver:      resolver,
		metrics:       m,
	}
}

// Create handles POST /api/status.
func (h *StatusHandler) Create(w http.ResponseWriter, r *http.Request) error {
	in, err := bind(w, r, h.metrics, "status", h.validator.Validate)
	if err != nil {
		return err
	}
	check, err := h.statusService.Create(r.Context(), in, h.resolver.Resolve(r))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, check)
	return nil
}

// List handles GET /api/status?limit=N.
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) error {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &validation.Error{Fields: []validation.FieldError{
				{Field: "limit", Reason: "doit être un entier"},
			}}
		}
		limit = n
	}

	checks, err := h.statusService.List(r.Context(), limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, checks)
	return nil
}
