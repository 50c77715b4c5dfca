package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/webmatic/api/internal/model"
	"github.com/webmatic/api/internal/repository"
)

// Limits applied to status-check listings.
const (
	DefaultStatusLimit = 50
	MaxStatusLimit     = 1000
)

// StatusService records and lists status checks.
type StatusService interface {
	Create(ctx context.Context, in model.StatusCheckInput, clientKey string) (*model.StatusCheck, error)
	List(ctx context.Context, limit int) ([]*model.StatusCheck, error)
}

type statusServiceImpl struct {
	repo  repository.StatusCheckRepository
	now   func() time.Time
	newID func() string
}

// NewStatusService creates a StatusService backed by the given repository.
func NewStatusService(repo repository.StatusCheckRepository) StatusService {
	return &statusServiceImpl{repo: repo, now: time.Now, newID: uuid.NewString}
}

func (s *statusServiceImpl) Create(ctx context.Context, in model.StatusCheckInput, clientKey string) (*model.StatusCheck, error) {
	check := &model.StatusCheck{
		ID:         s.newID(),
		ClientName: in.ClientName,
		Timestamp:  s.now().UTC(),
		ClientKey:  clientKey,
	}
	if err := s.repo.Insert(ctx, check); err != nil {
		return nil, err
	}
	slog.Info("status check created", "client_name", check.ClientName, "client_key", clientKey)
	return check, nil
}

// List returns at most limit checks. limit is clamped to [1, MaxStatusLimit];
// zero or negative means DefaultStatusLimit.
func (s *statusServiceImpl) List(ctx context.Context, limit int) ([]*model.StatusCheck, error) {
	switch {
	case limit <= 0:
		limit = DefaultStatusLimit
	case limit > MaxStatusLimit:
		limit = MaxStatusLimit
	}
	checks, err := s.repo.FindLimited(ctx, limit)
	if err != nil {
		return nil, err
	}
	if checks == nil {
		checks = []*model.StatusCheck{}
	}
	return checks, nil
}
