package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/webmatic/api/internal/model"
)

// PgStatusCheckRepository is the PostgreSQL implementation of StatusCheckRepository.
type PgStatusCheckRepository struct {
	pool *pgxpool.Pool
}

// NewPgStatusCheckRepository creates a PgStatusCheckRepository backed by the given pool.
func NewPgStatusCheckRepository(pool *pgxpool.Pool) *PgStatusCheckRepository {
	return &PgStatusCheckRepository{pool: pool}
}

var _ StatusCheckRepository = (*PgStatusCheckRepository)(nil)

func (r *PgStatusCheckRepository) Insert(ctx context.Context, s *model.StatusCheck) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO status_checks (id, client_name, checked_at, client_key)
		 VALUES ($1, $2, $3, NULLIF($4, ''))`,
		s.ID, s.ClientName, s.Timestamp, s.ClientKey,
	)
	return wrap("insert status check", err)
}

func (r *PgStatusCheckRepository) FindLimited(ctx context.Context, n int) ([]*model.StatusCheck, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, client_name, checked_at, COALESCE(client_key, '')
		 FROM status_checks
		 ORDER BY checked_at DESC
		 LIMIT $1`, n)
	if err != nil {
		return nil, wrap("list status checks", err)
	}
	defer rows.Close()

	var checks []*model.StatusCheck
	for rows.Next() {
		var s model.StatusCheck
		if err := rows.Scan(&s.ID, &s.ClientName, &s.Timestamp, &s.ClientKey); err != nil {
			return nil, wrap("scan status check", err)
		}
		checks = append(checks, &s)
	}
	return checks, wrap("list status checks", rows.Err())
}
