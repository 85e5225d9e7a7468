package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
)

// StatementRepository backs the monthly statement batch. It only reads
// approved transactions; the aggregator never sees denials.
type StatementRepository struct {
	db *pgxpool.Pool
}

func NewStatementRepository(db *pgxpool.Pool) *StatementRepository {
	return &StatementRepository{db: db}
}

func (r *StatementRepository) ListActiveAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT id, owner_name, currency, credit_limit, current_balance, status, created_at, updated_at
		FROM accounts WHERE status = 'active' ORDER BY created_at`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var acc domain.Account
		if err := rows.Scan(
			&acc.ID, &acc.OwnerName, &acc.Currency, &acc.CreditLimit,
			&acc.CurrentBalance, &acc.Status, &acc.CreatedAt, &acc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (r *StatementRepository) FindLatestStatement(ctx context.Context, accountID uuid.UUID) (*domain.Statement, error) {
	query := `SELECT id, account_id, period_start, period_end, opening_balance, total_spent,
			closing_balance, minimum_payment, due_date, created_at
		FROM statements WHERE account_id = $1
		ORDER BY period_end DESC LIMIT 1`

	var st domain.Statement
	err := r.db.QueryRow(ctx, query, accountID).Scan(
		&st.ID, &st.AccountID, &st.PeriodStart, &st.PeriodEnd,
		&st.OpeningBalance, &st.TotalSpent, &st.ClosingBalance,
		&st.MinimumPayment, &st.DueDate, &st.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest statement: %w", err)
	}
	return &st, nil
}

func (r *StatementRepository) ListApprovedTransactions(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	query := `SELECT id, card_id, account_id, amount, currency, merchant_name, merchant_category, merchant_address,
			status, COALESCE(denial_reason, ''), created_at
		FROM transactions
		WHERE account_id = $1 AND status = 'approved'
			AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list approved transactions: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(
			&t.ID, &t.CardID, &t.AccountID, &t.Amount, &t.Currency,
			&t.MerchantName, &t.MerchantCategory, &t.MerchantAddress,
			&t.Status, &t.DenialReason, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *StatementRepository) CreateStatement(ctx context.Context, st *domain.Statement) error {
	query := `
		INSERT INTO statements
			(id, account_id, period_start, period_end, opening_balance, total_spent, closing_balance, minimum_payment, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		st.ID, st.AccountID, st.PeriodStart, st.PeriodEnd,
		st.OpeningBalance, st.TotalSpent, st.ClosingBalance,
		st.MinimumPayment, st.DueDate, st.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create statement: %w", err)
	}
	return nil
}
