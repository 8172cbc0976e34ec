package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"affiliate-tracking-service/internal/model"
)

// OfferRepository reads offer definitions. The pipeline never writes
// offers; the admin subsystem owns them.
type OfferRepository interface {
	// Find returns the offer with the given id, or (nil, nil) when no
	// such offer exists.
	Find(ctx context.Context, id int64) (*model.Offer, error)
}

type offerRepository struct {
	db Querier
}

// NewOfferRepository creates an OfferRepository backed by PostgreSQL.
func NewOfferRepository(pool *pgxpool.Pool) OfferRepository {
	return &offerRepository{db: pool}
}

const findOfferQuery = `
	SELECT id, title, url, payout, currency, status, hidden, created_at, updated_at
	FROM offers
	WHERE id = $1
`

func (r *offerRepository) Find(ctx context.Context, id int64) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.QueryRow(ctx, findOfferQuery, id).Scan(
		&offer.ID,
		&offer.Title,
		&offer.URL,
		&offer.Payout,
		&offer.Currency,
		&offer.Status,
		&offer.Hidden,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find offer: %w", err)
	}
	return &offer, nil
}
