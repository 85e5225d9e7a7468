package authorizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
)

// Directory is the read-mostly account/card lookup the authorizer depends on.
// A (nil, nil) return means "not found"; a non-nil error always means the
// collaborator failed and the outcome is undetermined, never a denial.
type Directory interface {
	FindCard(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	FindAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
}

// Ledger is the durable transaction record plus the per-account balance.
// CreateTransactionIfAbsent must be an atomic compare-and-insert on the
// transaction ID, and AddToBalance an atomic per-account increment.
type Ledger interface {
	FindTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	CreateTransactionIfAbsent(ctx context.Context, tx domain.Transaction) (created bool, existing *domain.Transaction, err error)
	AddToBalance(ctx context.Context, accountID uuid.UUID, amount int64) (*domain.Account, error)
}

// Service decides incoming transactions and records the outcome exactly once
// per transaction ID. It is the single entry point the transport layer calls.
type Service struct {
	directory Directory
	ledger    Ledger
	accounts  keyedMutex
	now       func() time.Time
}

func NewService(directory Directory, ledger Ledger) *Service {
	return &Service{
		directory: directory,
		ledger:    ledger,
		now:       time.Now,
	}
}

// Submit runs the idempotency protocol around the rule chain:
//
//  1. A transaction already recorded under this ID short-circuits to its
//     stored verdict. No rules re-run, no balance touched.
//  2. Otherwise the rule chain decides against current card/account
//     snapshots, read under a per-account lock so two concurrent
//     transactions can't both pass the credit check on a stale balance.
//  3. The record is inserted with compare-and-insert; the loser of a
//     same-ID race adopts the winner's verdict instead of applying its own.
//     Only the winning approved submission moves the balance.
//
// The caller gets a bare bool. Denial reasons stay in the ledger.
func (s *Service) Submit(ctx context.Context, req domain.AuthorizationRequest) (bool, error) {
	if existing, err := s.ledger.FindTransaction(ctx, req.ID); err != nil {
		return false, fmt.Errorf("idempotency lookup: %w", err)
	} else if existing != nil {
		slog.Info("duplicate transaction, replaying verdict",
			"transaction_id", req.ID, "status", existing.Status)
		return existing.Status == domain.TransactionApproved, nil
	}

	card, err := s.directory.FindCard(ctx, req.CardID)
	if err != nil {
		return false, fmt.Errorf("card lookup: %w", err)
	}

	var account *domain.Account
	if card != nil {
		// The lock spans read-balance, decide and write-balance for this
		// account. Keyed by the card's account so two different requests
		// against one account serialize even before the account is loaded.
		unlock := s.accounts.lock(card.AccountID)
		defer unlock()

		account, err = s.directory.FindAccount(ctx, card.AccountID)
		if err != nil {
			return false, fmt.Errorf("account lookup: %w", err)
		}
	}

	verdict := domain.Decide(req, card, account)

	record := domain.Transaction{
		ID:               req.ID,
		CardID:           req.CardID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		MerchantName:     req.MerchantName,
		MerchantCategory: req.MerchantCategory,
		MerchantAddress:  req.MerchantAddress,
		CreatedAt:        s.now().UTC(),
	}
	if card != nil {
		record.AccountID = card.AccountID
	}
	if verdict.Approved {
		record.Status = domain.TransactionApproved
	} else {
		record.Status = domain.TransactionDenied
		record.DenialReason = verdict.Reason
	}

	created, existing, err := s.ledger.CreateTransactionIfAbsent(ctx, record)
	if err != nil {
		return false, fmt.Errorf("record transaction: %w", err)
	}
	if !created {
		// A duplicate won the insert race between our idempotency check and
		// now. Its verdict is the one that counts; it owns the balance move.
		slog.Info("lost insert race, adopting recorded verdict",
			"transaction_id", req.ID, "status", existing.Status)
		return existing.Status == domain.TransactionApproved, nil
	}

	if verdict.Approved {
		if _, err := s.ledger.AddToBalance(ctx, verdict.Account.ID, req.Amount); err != nil {
			return false, fmt.Errorf("apply balance: %w", err)
		}
		slog.Info("transaction approved",
			"transaction_id", req.ID, "account_id", verdict.Account.ID, "amount", req.Amount)
	} else {
		slog.Info("transaction denied",
			"transaction_id", req.ID, "reason", verdict.Reason)
	}

	return verdict.Approved, nil
}
