package handler

import (
	"net/http"

	"github.com/webmatic/api/internal/metrics"
	"github.com/webmatic/api/internal/model"
	"github.com/webmatic/api/internal/service"
	"github.com/webmatic/api/internal/validation"
)

// contactSuccessMessage is returned with every accepted submission.
const contactSuccessMessage = "Votre message a été envoyé avec succès. Nous vous recontacterons rapidement."

// ContactHandler handles contact form submissions.
type ContactHandler struct {
	contactService service.ContactService
	validator      *validation.ContactValidator
	resolver       ClientKeyResolver
	metrics        *metrics.Metrics
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService, resolver ClientKeyResolver, m *metrics.Metrics) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		validator:      validation.NewContactValidator(),
		resolver:       resolver,
		metrics:        m,
	}
}

// Submit handles POST /api/contact. Invalid forms are rejected with 422 and
// never reach the service.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) error {
	form, err := bind(w, r, h.metrics, "contact", h.validator.Validate)
	if err != nil {
		return err
	}

	sub, err := h.contactService.Submit(r.Context(), form, service.RequestMeta{
		ClientKey: h.resolver.Resolve(r),
		UserAgent: r.Header.Get("User-Agent"),
	})
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, model.ContactReceipt{
		Success:   true,
		Message:   contactSuccessMessage,
		Reference: sub.Reference(),
	})
	return nil
}
