package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"affiliate-tracking-service/internal/model"
)

// ClickRepository defines database operations for the click log.
type ClickRepository interface {
	// Create inserts a single click. Clicks are append-only.
	Create(ctx context.Context, click model.Click) error

	// FindLatestMatch returns the most recent click for the offer whose
	// click_id or sub_id matches the supplied values (empty values do not
	// match anything). Returns (nil, nil) when no click matches.
	FindLatestMatch(ctx context.Context, offerID int64, clickID, subID string) (*model.Click, error)
}

type clickRepository struct {
	db Querier
}

// NewClickRepository creates a ClickRepository backed by PostgreSQL.
func NewClickRepository(pool *pgxpool.Pool) ClickRepository {
	return &clickRepository{db: pool}
}

const insertClickQuery = `
	INSERT INTO clicks (click_id, offer_id, user_id, sub_id, sub2, sub3, sub4, sub5,
		source, campaign, adset, creative, ip, user_agent, referrer)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

func (r *clickRepository) Create(ctx context.Context, click model.Click) error {
	_, err := r.db.Exec(ctx, insertClickQuery,
		click.ClickID,
		click.OfferID,
		click.UserID,
		click.SubID,
		click.Sub2,
		click.Sub3,
		click.Sub4,
		click.Sub5,
		click.Source,
		click.Campaign,
		click.Adset,
		click.Creative,
		click.IP,
		click.UserAgent,
		click.Referrer,
	)
	if err != nil {
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// Last-click attribution: ties are broken by the most recently created row.
const latestMatchQuery = `
	SELECT id, click_id, offer_id, user_id, sub_id, created_at
	FROM clicks
	WHERE offer_id = $1
	  AND ((click_id = $2 AND $2 <> '') OR (sub_id = $3 AND $3 <> ''))
	ORDER BY created_at DESC, id DESC
	LIMIT 1
`

func (r *clickRepository) FindLatestMatch(ctx context.Context, offerID int64, clickID, subID string) (*model.Click, error) {
	var click model.Click
	err := r.db.QueryRow(ctx, latestMatchQuery, offerID, clickID, subID).Scan(
		&click.ID,
		&click.ClickID,
		&click.OfferID,
		&click.UserID,
		&click.SubID,
		&click.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest click: %w", err)
	}
	return &click, nil
}
