// Package memory is a mutex-guarded, map-backed implementation of every
// storage interface the core depends on. Tests inject it in place of the
// Postgres adapters; the guarantees match (atomic insert-if-absent on
// transaction IDs, atomic per-account balance increments).
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
)

type Store struct {
	mu           sync.Mutex
	accounts     map[uuid.UUID]domain.Account
	cards        map[uuid.UUID]domain.Card
	transactions map[uuid.UUID]domain.Transaction
	statements   map[uuid.UUID][]domain.Statement
}

func NewStore() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]domain.Account),
		cards:        make(map[uuid.UUID]domain.Card),
		transactions: make(map[uuid.UUID]domain.Transaction),
		statements:   make(map[uuid.UUID][]domain.Statement),
	}
}

// PutAccount seeds or replaces an account.
func (s *Store) PutAccount(acc domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acc.ID] = acc
}

// PutCard seeds or replaces a card.
func (s *Store) PutCard(card domain.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.ID] = card
}

// PutStatement seeds a prior statement.
func (s *Store) PutStatement(st domain.Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements[st.AccountID] = append(s.statements[st.AccountID], st)
}

func (s *Store) FindCard(_ context.Context, id uuid.UUID) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[id]
	if !ok {
		return nil, nil
	}
	return &card, nil
}

func (s *Store) FindAccount(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

func (s *Store) FindTransaction(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return nil, nil
	}
	return &tx, nil
}

func (s *Store) CreateTransactionIfAbsent(_ context.Context, tx domain.Transaction) (bool, *domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.transactions[tx.ID]; ok {
		return false, &existing, nil
	}
	s.transactions[tx.ID] = tx
	return true, nil, nil
}

func (s *Store) AddToBalance(_ context.Context, accountID uuid.UUID, amount int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accounts[accountID]
	acc.CurrentBalance += amount
	acc.UpdatedAt = time.Now().UTC()
	s.accounts[accountID] = acc
	return &acc, nil
}

func (s *Store) ListActiveAccounts(_ context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Account
	for _, acc := range s.accounts {
		if acc.Status == domain.AccountActive {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (s *Store) FindLatestStatement(_ context.Context, accountID uuid.UUID) (*domain.Statement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sts := s.statements[accountID]
	if len(sts) == 0 {
		return nil, nil
	}
	latest := sts[0]
	for _, st := range sts[1:] {
		if st.PeriodEnd.After(latest.PeriodEnd) {
			latest = st
		}
	}
	return &latest, nil
}

func (s *Store) ListApprovedTransactions(_ context.Context, accountID uuid.UUID, start, end time.Time) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range s.transactions {
		if tx.AccountID != accountID || tx.Status != domain.TransactionApproved {
			continue
		}
		// [start, end] inclusive on both ends.
		if tx.CreatedAt.Before(start) || tx.CreatedAt.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) CreateStatement(_ context.Context, st *domain.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statements[st.AccountID] = append(s.statements[st.AccountID], *st)
	return nil
}

// TransactionCount reports how many transaction records exist; tests use it
// to assert exactly-once recording.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

// StatementCount reports how many statements exist for the account.
func (s *Store) StatementCount(accountID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.statements[accountID])
}
