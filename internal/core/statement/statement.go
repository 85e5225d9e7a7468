package statement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
)

const (
	// minimumPaymentFloor is the smallest non-zero minimum payment, in minor
	// units. Balances under the floor are due in full.
	minimumPaymentFloor int64 = 2500

	// minimumPaymentPercent of the closing balance, rounded up.
	minimumPaymentPercent int64 = 2

	// graceDays between period end and the payment due date.
	graceDays = 25
)

// Store is the read/write surface the aggregator needs. It only ever reads
// approved transactions; denials never reach a statement.
type Store interface {
	ListActiveAccounts(ctx context.Context) ([]domain.Account, error)
	FindLatestStatement(ctx context.Context, accountID uuid.UUID) (*domain.Statement, error)
	ListApprovedTransactions(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error)
	CreateStatement(ctx context.Context, st *domain.Statement) error
}

// Service produces billing statements from the ledger. It is a batch reader:
// it never participates in live authorization decisions.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// GenerateForAccount builds and persists one statement for the inclusive
// period [start, end]. The opening balance is the prior statement's closing
// balance, or zero for a first statement. Payments are not modeled, so the
// closing balance is opening plus approved spend.
func (s *Service) GenerateForAccount(ctx context.Context, accountID uuid.UUID, start, end time.Time) (*domain.Statement, error) {
	prior, err := s.store.FindLatestStatement(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("find latest statement: %w", err)
	}

	var opening int64
	if prior != nil {
		opening = prior.ClosingBalance
	}

	txs, err := s.store.ListApprovedTransactions(ctx, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list approved transactions: %w", err)
	}

	var spent int64
	for _, tx := range txs {
		spent += tx.Amount
	}

	closing := opening + spent

	st := &domain.Statement{
		ID:             uuid.New(),
		AccountID:      accountID,
		PeriodStart:    start,
		PeriodEnd:      end,
		OpeningBalance: opening,
		TotalSpent:     spent,
		ClosingBalance: closing,
		MinimumPayment: minimumPayment(closing),
		DueDate:        end.AddDate(0, 0, graceDays),
		CreatedAt:      s.now().UTC(),
	}

	if err := s.store.CreateStatement(ctx, st); err != nil {
		return nil, fmt.Errorf("create statement: %w", err)
	}

	slog.Info("statement generated",
		"account_id", accountID,
		"period_start", start.Format(time.DateOnly),
		"period_end", end.Format(time.DateOnly),
		"closing_balance", closing)

	return st, nil
}

// GenerateMonthly runs the whole-book batch for the prior calendar month:
// one statement per active account. There is no guard against re-running for
// a period that already has statements; running it twice for the same month
// creates duplicates. Callers own the schedule.
func (s *Service) GenerateMonthly(ctx context.Context) ([]domain.Statement, error) {
	start, end := priorMonth(s.now().UTC())

	accounts, err := s.store.ListActiveAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}

	statements := make([]domain.Statement, 0, len(accounts))
	for _, acc := range accounts {
		st, err := s.GenerateForAccount(ctx, acc.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", acc.ID, err)
		}
		statements = append(statements, *st)
	}

	return statements, nil
}

// minimumPayment: zero for a credit or zero balance, the full balance under
// the floor, otherwise the larger of 2% (rounded up) and the floor.
func minimumPayment(closing int64) int64 {
	if closing <= 0 {
		return 0
	}
	if closing < minimumPaymentFloor {
		return closing
	}
	pct := (closing*minimumPaymentPercent + 99) / 100 // integer ceil
	if pct < minimumPaymentFloor {
		return minimumPaymentFloor
	}
	return pct
}

// priorMonth returns the inclusive bounds of the calendar month before the
// one containing now, in UTC.
func priorMonth(now time.Time) (start, end time.Time) {
	firstOfCurrent := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start = firstOfCurrent.AddDate(0, -1, 0)
	end = firstOfCurrent.Add(-time.Nanosecond)
	return start, end
}
