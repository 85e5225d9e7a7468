package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied at startup. Statements are idempotent so a restart
// against an existing database is a no-op.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		owner_name      TEXT NOT NULL,
		currency        TEXT NOT NULL,
		credit_limit    BIGINT NOT NULL,
		current_balance BIGINT NOT NULL DEFAULT 0,
		status          TEXT NOT NULL DEFAULT 'active',
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		account_id     UUID NOT NULL REFERENCES accounts(id),
		status         TEXT NOT NULL DEFAULT 'active',
		spending_limit BIGINT,
		brand          TEXT NOT NULL DEFAULT '',
		last_four      TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id                UUID PRIMARY KEY,
		card_id           UUID NOT NULL,
		account_id        UUID,
		amount            BIGINT NOT NULL,
		currency          TEXT NOT NULL,
		merchant_name     TEXT NOT NULL DEFAULT '',
		merchant_category TEXT NOT NULL DEFAULT '',
		merchant_address  TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL,
		denial_reason     TEXT,
		created_at        TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_account_created
		ON transactions (account_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS statements (
		id              UUID PRIMARY KEY,
		account_id      UUID NOT NULL REFERENCES accounts(id),
		period_start    TIMESTAMPTZ NOT NULL,
		period_end      TIMESTAMPTZ NOT NULL,
		opening_balance BIGINT NOT NULL,
		total_spent     BIGINT NOT NULL,
		closing_balance BIGINT NOT NULL,
		minimum_payment BIGINT NOT NULL,
		due_date        TIMESTAMPTZ NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		key_hash   TEXT PRIMARY KEY,
		account_id UUID NOT NULL REFERENCES accounts(id),
		key_prefix TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS webhook_jobs (
		id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		url         TEXT NOT NULL,
		payload     JSONB NOT NULL,
		status      TEXT NOT NULL DEFAULT 'PENDING',
		attempts    INT NOT NULL DEFAULT 0,
		next_run_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
