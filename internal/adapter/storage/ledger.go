package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
)

// LedgerRepository is the durable transaction record and per-account balance.
// If webhookURL is set, every newly recorded transaction also enqueues a
// delivery job in the same database transaction, so an event exists iff its
// record does.
type LedgerRepository struct {
	db         *pgxpool.Pool
	webhookURL string
}

func NewLedgerRepository(db *pgxpool.Pool, webhookURL string) *LedgerRepository {
	return &LedgerRepository{db: db, webhookURL: webhookURL}
}

func (r *LedgerRepository) FindTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, card_id, COALESCE(account_id, '00000000-0000-0000-0000-000000000000'),
			amount, currency, merchant_name, merchant_category, merchant_address,
			status, COALESCE(denial_reason, ''), created_at
		FROM transactions WHERE id = $1`

	var t domain.Transaction
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.CardID, &t.AccountID, &t.Amount, &t.Currency,
		&t.MerchantName, &t.MerchantCategory, &t.MerchantAddress,
		&t.Status, &t.DenialReason, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &t, nil
}

// CreateTransactionIfAbsent is the compare-and-insert the authorizer's
// idempotency protocol rests on. ON CONFLICT DO NOTHING makes the insert a
// no-op when the ID already exists; the loser gets the winner's row back.
func (r *LedgerRepository) CreateTransactionIfAbsent(ctx context.Context, t domain.Transaction) (bool, *domain.Transaction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var accountID *uuid.UUID
	if t.AccountID != uuid.Nil {
		accountID = &t.AccountID
	}
	var reason *string
	if t.DenialReason != "" {
		s := string(t.DenialReason)
		reason = &s
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO transactions
			(id, card_id, account_id, amount, currency, merchant_name, merchant_category, merchant_address, status, denial_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`,
		t.ID, t.CardID, accountID, t.Amount, t.Currency,
		t.MerchantName, t.MerchantCategory, t.MerchantAddress,
		t.Status, reason, t.CreatedAt,
	)
	if err != nil {
		return false, nil, fmt.Errorf("insert transaction: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Lost the race: hand back the recorded verdict.
		existing, err := r.FindTransaction(ctx, t.ID)
		if err != nil {
			return false, nil, err
		}
		if existing == nil {
			return false, nil, fmt.Errorf("transaction %s vanished after conflict", t.ID)
		}
		return false, existing, nil
	}

	if r.webhookURL != "" {
		payload, err := json.Marshal(map[string]interface{}{
			"event": "transaction." + string(t.Status),
			"data": map[string]interface{}{
				"transaction_id": t.ID,
				"card_id":        t.CardID,
				"amount":         t.Amount,
				"currency":       t.Currency,
				"status":         t.Status,
				"timestamp":      t.CreatedAt,
			},
		})
		if err != nil {
			return false, nil, fmt.Errorf("marshal webhook payload: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO webhook_jobs (url, payload) VALUES ($1, $2)`,
			r.webhookURL, payload); err != nil {
			return false, nil, fmt.Errorf("queue webhook: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, nil, fmt.Errorf("commit: %w", err)
	}
	return true, nil, nil
}

// AddToBalance applies the approved amount as a single atomic increment.
func (r *LedgerRepository) AddToBalance(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET current_balance = current_balance + $1, updated_at = now()
		WHERE id = $2
		RETURNING id, owner_name, currency, credit_limit, current_balance, status, created_at, updated_at
	`
	var acc domain.Account
	err := r.db.QueryRow(ctx, query, amount, accountID).Scan(
		&acc.ID, &acc.OwnerName, &acc.Currency, &acc.CreditLimit,
		&acc.CurrentBalance, &acc.Status, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add to balance: %w", err)
	}
	return &acc, nil
}

// GetHistory fetches the most recent transactions for an account.
func (r *LedgerRepository) GetHistory(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Transaction, error) {
	query := `SELECT id, card_id, account_id, amount, currency, merchant_name, merchant_category, merchant_address,
			status, COALESCE(denial_reason, ''), created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("transaction history: %w", err)
	}
	defer rows.Close()

	var history []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.CardID, &t.AccountID, &t.Amount, &t.Currency,
			&t.MerchantName, &t.MerchantCategory, &t.MerchantAddress,
			&t.Status, &t.DenialReason, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		history = append(history, t)
	}
	return history, rows.Err()
}
