package service

import (
	"context"

	"github.com/webmatic/api/internal/model"
)

// RequestMeta carries request-derived facts stored alongside a record.
type RequestMeta struct {
	ClientKey string
	UserAgent string
}

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit stores an already validated and sanitized form. The returned
	// submission carries the generated ID and receipt timestamp.
	Submit(ctx context.Context, form model.ContactForm, meta RequestMeta) (*model.ContactSubmission, error)
}
