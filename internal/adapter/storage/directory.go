package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
)

// DirectoryRepository is the Postgres account/card directory. Lookups return
// (nil, nil) for a missing row; errors are reserved for real failures so the
// authorizer can tell "not found" from "don't know".
type DirectoryRepository struct {
	db *pgxpool.Pool
}

func NewDirectoryRepository(db *pgxpool.Pool) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT id, owner_name, currency, credit_limit, current_balance, status, created_at, updated_at
		FROM accounts WHERE id = $1`

	var acc domain.Account
	err := r.db.QueryRow(ctx, query, id).Scan(
		&acc.ID, &acc.OwnerName, &acc.Currency, &acc.CreditLimit,
		&acc.CurrentBalance, &acc.Status, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &acc, nil
}

func (r *DirectoryRepository) FindCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT id, account_id, status, spending_limit, brand, last_four, created_at
		FROM cards WHERE id = $1`

	var card domain.Card
	err := r.db.QueryRow(ctx, query, id).Scan(
		&card.ID, &card.AccountID, &card.Status, &card.SpendingLimit,
		&card.Brand, &card.LastFour, &card.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find card: %w", err)
	}
	return &card, nil
}

// CreateAccount opens a new active account with a zero balance. Accounts are
// managed here, outside the decision core.
func (r *DirectoryRepository) CreateAccount(ctx context.Context, ownerName string, currency domain.Currency, creditLimit int64) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (owner_name, currency, credit_limit, current_balance)
		VALUES ($1, $2, $3, 0)
		RETURNING id, owner_name, currency, credit_limit, current_balance, status, created_at, updated_at
	`
	var acc domain.Account
	err := r.db.QueryRow(ctx, query, ownerName, currency, creditLimit).Scan(
		&acc.ID, &acc.OwnerName, &acc.Currency, &acc.CreditLimit,
		&acc.CurrentBalance, &acc.Status, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return &acc, nil
}

// CreateCard issues a card on an account. spendingLimit may be nil.
func (r *DirectoryRepository) CreateCard(ctx context.Context, accountID uuid.UUID, spendingLimit *int64, brand domain.CardBrand, lastFour string) (*domain.Card, error) {
	query := `
		INSERT INTO cards (account_id, spending_limit, brand, last_four)
		VALUES ($1, $2, $3, $4)
		RETURNING id, account_id, status, spending_limit, brand, last_four, created_at
	`
	var card domain.Card
	err := r.db.QueryRow(ctx, query, accountID, spendingLimit, brand, lastFour).Scan(
		&card.ID, &card.AccountID, &card.Status, &card.SpendingLimit,
		&card.Brand, &card.LastFour, &card.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return &card, nil
}

// SaveAPIKey stores the hashed admin key for the account.
func (r *DirectoryRepository) SaveAPIKey(ctx context.Context, accountID uuid.UUID, keyHash string, keyPrefix string) error {
	query := `INSERT INTO api_keys (key_hash, account_id, key_prefix) VALUES ($1, $2, $3)`

	if _, err := r.db.Exec(ctx, query, keyHash, accountID, keyPrefix); err != nil {
		return fmt.Errorf("failed to save api key: %w", err)
	}
	return nil
}
