package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"affiliate-tracking-service/internal/model"
)

// ConversionRepository defines database operations for conversions.
type ConversionRepository interface {
	// Upsert inserts the conversion or, when a row with the same
	// (offer_id, tx_id) already exists, updates it in place. The write is
	// a single atomic statement so concurrent redelivery of the same
	// event converges on one row. Returns the row id in both branches.
	Upsert(ctx context.Context, conversion model.Conversion) (int64, error)

	// Create inserts a conversion without a transaction id. No
	// deduplication is possible; every call creates a new row.
	Create(ctx context.Context, conversion model.Conversion) (int64, error)
}

type conversionRepository struct {
	db Querier
}

// NewConversionRepository creates a ConversionRepository backed by PostgreSQL.
func NewConversionRepository(pool *pgxpool.Pool) ConversionRepository {
	return &conversionRepository{db: pool}
}

const upsertConversionQuery = `
	INSERT INTO conversions (offer_id, tx_id, event_type, amount, currency, user_id, sub_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (offer_id, tx_id) DO UPDATE SET
		event_type = EXCLUDED.event_type,
		amount     = EXCLUDED.amount,
		currency   = EXCLUDED.currency,
		user_id    = EXCLUDED.user_id,
		sub_id     = EXCLUDED.sub_id,
		updated_at = now()
	RETURNING id
`

func (r *conversionRepository) Upsert(ctx context.Context, conversion model.Conversion) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, upsertConversionQuery,
		conversion.OfferID,
		conversion.TxID,
		string(conversion.Type),
		conversion.Amount,
		nullIfEmpty(conversion.Currency),
		conversion.UserID,
		conversion.SubID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert conversion: %w", err)
	}
	return id, nil
}

const insertConversionQuery = `
	INSERT INTO conversions (offer_id, tx_id, event_type, amount, currency, user_id, sub_id)
	VALUES ($1, NULL, $2, $3, $4, $5, $6)
	RETURNING id
`

func (r *conversionRepository) Create(ctx context.Context, conversion model.Conversion) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, insertConversionQuery,
		conversion.OfferID,
		string(conversion.Type),
		conversion.Amount,
		nullIfEmpty(conversion.Currency),
		conversion.UserID,
		conversion.SubID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	return id, nil
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}
