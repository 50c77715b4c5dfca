package handler

import (
	"context"
	"time"

	"github.com/webmatic/api/internal/repository"
)

// pingTimeout bounds the database check in /health.
const pingTimeout = 2 * time.Second

// Handler serves the service-level endpoints that need no business logic.
type Handler struct {
	db      repository.DB
	version string
	now     func() time.Time
}

// New creates a Handler. db may be nil when no database is configured.
func New(db repository.DB, version string) *Handler {
	return &Handler{db: db, version: version, now: time.Now}
}

func (h *Handler) databaseStatus(ctx context.Context) string {
	if h.db == nil {
		return "disconnected"
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}

// timestamp is the UTC time formatted for response bodies.
func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}
