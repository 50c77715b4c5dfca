package service

import (
	"context"
	"time"

	"github.com/webmatic/api/internal/model"
	"github.com/webmatic/api/internal/repository"
)

// RecentWindow is the look-back period for "recent" contact counts.
const RecentWindow = 30 * 24 * time.Hour

// AnalyticsService computes aggregate figures from stored submissions.
type AnalyticsService interface {
	Summary(ctx context.Context) (*model.AnalyticsSummary, error)
}

type analyticsServiceImpl struct {
	contacts repository.ContactRepository
	now      func() time.Time
}

// NewAnalyticsService creates an AnalyticsService over the contact repository.
func NewAnalyticsService(contacts repository.ContactRepository) AnalyticsService {
	return &analyticsServiceImpl{contacts: contacts, now: time.Now}
}

func (s *analyticsServiceImpl) Summary(ctx context.Context) (*model.AnalyticsSummary, error) {
	now := s.now().UTC()
	total, err := s.contacts.Count(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.contacts.CountSince(ctx, now.Add(-RecentWindow))
	if err != nil {
		return nil, err
	}
	return &model.AnalyticsSummary{
		TotalContacts:     total,
		RecentContacts30d: recent,
		LastUpdated:       now,
	}, nil
}
