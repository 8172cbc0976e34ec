package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations ensures required tables exist. This keeps the service
// self-contained without an external migration step. The offers table is
// owned by the admin subsystem; it is created here only so the pipeline
// can run standalone in dev and test environments.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS offers (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			url         TEXT NOT NULL DEFAULT '',
			payout      NUMERIC(12,2),
			currency    VARCHAR(8) NOT NULL DEFAULT 'USD',
			status      VARCHAR(16) NOT NULL DEFAULT 'active',
			hidden      BOOLEAN NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS clicks (
			id          BIGSERIAL PRIMARY KEY,
			click_id    VARCHAR(64) NOT NULL UNIQUE,
			offer_id    BIGINT NOT NULL,
			user_id     BIGINT,
			sub_id      TEXT NOT NULL DEFAULT '',
			sub2        TEXT NOT NULL DEFAULT '',
			sub3        TEXT NOT NULL DEFAULT '',
			sub4        TEXT NOT NULL DEFAULT '',
			sub5        TEXT NOT NULL DEFAULT '',
			source      TEXT NOT NULL DEFAULT '',
			campaign    TEXT NOT NULL DEFAULT '',
			adset       TEXT NOT NULL DEFAULT '',
			creative    TEXT NOT NULL DEFAULT '',
			ip          TEXT NOT NULL DEFAULT '',
			user_agent  TEXT NOT NULL DEFAULT '',
			referrer    TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_clicks_offer_click ON clicks (offer_id, click_id)`,
		`CREATE INDEX IF NOT EXISTS idx_clicks_offer_sub ON clicks (offer_id, sub_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS conversions (
			id          BIGSERIAL PRIMARY KEY,
			offer_id    BIGINT NOT NULL,
			tx_id       TEXT,
			event_type  VARCHAR(16) NOT NULL DEFAULT 'REG',
			amount      NUMERIC(14,4),
			currency    VARCHAR(8),
			user_id     BIGINT,
			sub_id      TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// NULL tx_ids never conflict, so tx-less postbacks always insert
		// fresh rows while keyed redelivery converges on one row.
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_conversions_offer_tx ON conversions (offer_id, tx_id)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}
