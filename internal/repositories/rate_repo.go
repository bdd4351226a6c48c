package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RateRepository resolves per-user billing rates. A project-scoped rate wins
// over the user's global rate; no rate at all resolves to 0.0.
type RateRepository interface {
	BillRate(ctx context.Context, userID uuid.UUID, projectID *int64) float64
}

type rateRepo struct {
	db DB
}

func NewRateRepo(db DB) RateRepository {
	return &rateRepo{db: db}
}

func (r *rateRepo) BillRate(ctx context.Context, userID uuid.UUID, projectID *int64) float64 {
	if projectID != nil {
		var rate float64
		query := `SELECT rate FROM user_rates WHERE user_id = $1 AND project_id = $2 ORDER BY valid_from DESC LIMIT 1`
		err := r.db.QueryRow(ctx, query, userID, *projectID).Scan(&rate)
		if err == nil {
			return rate
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return 0.0
		}
	}

	var rate float64
	query := `SELECT rate FROM user_rates WHERE user_id = $1 AND project_id IS NULL ORDER BY valid_from DESC LIMIT 1`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&rate); err != nil {
		return 0.0
	}
	return rate
}
