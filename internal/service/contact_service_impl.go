package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/webmatic/api/internal/model"
	"github.com/webmatic/api/internal/repository"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo  repository.ContactRepository
	now   func() time.Time
	newID func() string
}

// NewContactService creates a ContactService backed by the given repository.
func NewContactService(repo repository.ContactRepository) ContactService {
	return &contactServiceImpl{repo: repo, now: time.Now, newID: uuid.NewString}
}

// Submit assigns a fresh ID and UTC receipt time, marks the submission
// unprocessed and persists it.
func (s *contactServiceImpl) Submit(ctx context.Context, form model.ContactForm, meta RequestMeta) (*model.ContactSubmission, error) {
	c := &model.ContactSubmission{
		ID:         s.newID(),
		Name:       form.Name,
		Email:      form.Email,
		Phone:      form.Phone,
		Service:    form.Service,
		Message:    form.Message,
		ClientKey:  meta.ClientKey,
		UserAgent:  meta.UserAgent,
		ReceivedAt: s.now().UTC(),
		Processed:  false,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}
	slog.Info("contact form submission", "client_key", meta.ClientKey, "reference", c.Reference(), "service", c.Service)
	return c, nil
}
