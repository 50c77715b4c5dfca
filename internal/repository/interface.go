package repository

import (
	"context"
	"time"

	"github.com/webmatic/api/internal/model"
)

// DB reports whether the database is reachable.
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository persists contact submissions.
type ContactRepository interface {
	Insert(ctx context.Context, c *model.ContactSubmission) error
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// StatusCheckRepository persists status checks.
type StatusCheckRepository interface {
	Insert(ctx context.Context, s *model.StatusCheck) error
	// FindLimited returns at most n checks, most recent first.
	FindLimited(ctx context.Context, n int) ([]*model.StatusCheck, error)
}
