package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountFrozen AccountStatus = "frozen"
	AccountClosed AccountStatus = "closed"
)

type CardStatus string

const (
	CardActive    CardStatus = "active"
	CardFrozen    CardStatus = "frozen"
	CardCancelled CardStatus = "cancelled"
)

type TransactionStatus string

const (
	TransactionApproved TransactionStatus = "approved"
	TransactionDenied   TransactionStatus = "denied"
)

// Account is a credit account. CurrentBalance is the amount owed in minor
// units and may only change through the authorizer's approved-transaction
// path (or a payment, which this service does not model).
type Account struct {
	ID             uuid.UUID     `json:"id"`
	OwnerName      string        `json:"owner_name"`
	Currency       Currency      `json:"currency"`
	CreditLimit    int64         `json:"credit_limit"`
	CurrentBalance int64         `json:"current_balance"`
	Status         AccountStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Card belongs to exactly one account. SpendingLimit is optional; nil means
// the card has no per-card cap and only the account credit limit applies.
type Card struct {
	ID            uuid.UUID  `json:"id"`
	AccountID     uuid.UUID  `json:"account_id"`
	Status        CardStatus `json:"status"`
	SpendingLimit *int64     `json:"spending_limit,omitempty"`
	Brand         CardBrand  `json:"brand,omitempty"`
	LastFour      string     `json:"last_four,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Transaction is the persisted outcome of one authorization. The ID comes
// from the upstream event source and doubles as the idempotency key; a record
// is created at most once per ID and never mutated afterwards.
type Transaction struct {
	ID               uuid.UUID         `json:"id"`
	CardID           uuid.UUID         `json:"card_id"`
	AccountID        uuid.UUID         `json:"account_id"`
	Amount           int64             `json:"amount"`
	Currency         Currency          `json:"currency"`
	MerchantName     string            `json:"merchant_name"`
	MerchantCategory string            `json:"merchant_category"`
	MerchantAddress  string            `json:"merchant_address"`
	Status           TransactionStatus `json:"status"`
	DenialReason     DenialReason      `json:"denial_reason,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// Statement summarizes the approved spend of one account over one billing
// period. Created once per account per period, never mutated.
type Statement struct {
	ID             uuid.UUID `json:"id"`
	AccountID      uuid.UUID `json:"account_id"`
	PeriodStart    time.Time `json:"period_start"`
	PeriodEnd      time.Time `json:"period_end"`
	OpeningBalance int64     `json:"opening_balance"`
	TotalSpent     int64     `json:"total_spent"`
	ClosingBalance int64     `json:"closing_balance"`
	MinimumPayment int64     `json:"minimum_payment"`
	DueDate        time.Time `json:"due_date"`
	CreatedAt      time.Time `json:"created_at"`
}
