package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webmatic/api/internal/model"
)

// PgContactRepository is the PostgreSQL implementation of ContactRepository.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository creates a PgContactRepository backed by the given pool.
func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

// Ensure PgContactRepository implements ContactRepository at compile time.
var _ ContactRepository = (*PgContactRepository)(nil)

// Insert stores c as-is; the ID and timestamp are set by the caller.
func (r *PgContactRepository) Insert(ctx context.Context, c *model.ContactSubmission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO contact_submissions
		   (id, name, email, phone, service, message, client_key, user_agent, received_at, processed)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`,
		c.ID, c.Name, c.Email, c.Phone, c.Service, c.Message,
		c.ClientKey, c.UserAgent, c.ReceivedAt, c.Processed,
	)
	return wrap("insert contact", err)
}

// Count returns the total number of submissions.
func (r *PgContactRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_submissions`).Scan(&n)
	return n, wrap("count contacts", err)
}

// CountSince returns the number of submissions received at or after since.
func (r *PgContactRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM contact_submissions WHERE received_at >= $1`, since,
	).Scan(&n)
	return n, wrap("count recent contacts", err)
}
