package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ptr(v int64) *int64 { return &v }

func activeAccount(limit, balance int64) *Account {
	return &Account{ID: uuid.New(), CreditLimit: limit, CurrentBalance: balance, Status: AccountActive}
}

func activeCard(accountID uuid.UUID) *Card {
	return &Card{ID: uuid.New(), AccountID: accountID, Status: CardActive}
}

func TestDecideRuleChain(t *testing.T) {
	acc := activeAccount(100_000, 0)

	tests := []struct {
		name    string
		amount  int64
		card    *Card
		account *Account
		want    DenialReason
	}{
		{
			name:   "missing card",
			amount: 1000,
			card:   nil,
			// Account problems are never reached when the card is missing.
			account: &Account{Status: AccountClosed},
			want:    ReasonCardNotFound,
		},
		{
			name:    "frozen card wins over closed account",
			amount:  1000,
			card:    &Card{ID: uuid.New(), AccountID: acc.ID, Status: CardFrozen},
			account: &Account{ID: acc.ID, Status: AccountClosed},
			want:    ReasonCardNotActive,
		},
		{
			name:    "cancelled card",
			amount:  1000,
			card:    &Card{ID: uuid.New(), AccountID: acc.ID, Status: CardCancelled},
			account: acc,
			want:    ReasonCardNotActive,
		},
		{
			name:    "missing account",
			amount:  1000,
			card:    activeCard(acc.ID),
			account: nil,
			want:    ReasonAccountNotFound,
		},
		{
			name:    "frozen account",
			amount:  1000,
			card:    activeCard(acc.ID),
			account: &Account{ID: acc.ID, CreditLimit: 100_000, Status: AccountFrozen},
			want:    ReasonAccountNotActive,
		},
		{
			name:    "over credit limit",
			amount:  60_000,
			card:    activeCard(acc.ID),
			account: activeAccount(100_000, 50_000),
			want:    ReasonInsufficientCredit,
		},
		{
			name:    "credit limit checked before card limit",
			amount:  200_000,
			card:    &Card{ID: uuid.New(), AccountID: acc.ID, Status: CardActive, SpendingLimit: ptr(10_000)},
			account: activeAccount(100_000, 0),
			want:    ReasonInsufficientCredit,
		},
		{
			name:    "over card spending limit",
			amount:  15_000,
			card:    &Card{ID: uuid.New(), AccountID: acc.ID, Status: CardActive, SpendingLimit: ptr(10_000)},
			account: activeAccount(100_000, 0),
			want:    ReasonExceedsCardLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := AuthorizationRequest{ID: uuid.New(), Amount: tt.amount}
			if tt.card != nil {
				req.CardID = tt.card.ID
			}
			v := Decide(req, tt.card, tt.account)
			assert.False(t, v.Approved)
			assert.Equal(t, tt.want, v.Reason)
		})
	}
}

func TestDecideApproved(t *testing.T) {
	acc := activeAccount(100_000, 0)
	card := activeCard(acc.ID)

	v := Decide(AuthorizationRequest{ID: uuid.New(), CardID: card.ID, Amount: 50_000}, card, acc)

	assert.True(t, v.Approved)
	assert.Empty(t, v.Reason)
	// Approval hands back the resolved snapshots so callers skip a re-lookup.
	assert.Same(t, card, v.Card)
	assert.Same(t, acc, v.Account)
}

func TestDecideBalanceExactlyAtLimit(t *testing.T) {
	// 50_000 + 50_000 == 100_000: landing exactly on the limit is approved.
	acc := activeAccount(100_000, 50_000)
	card := activeCard(acc.ID)

	v := Decide(AuthorizationRequest{ID: uuid.New(), CardID: card.ID, Amount: 50_000}, card, acc)
	assert.True(t, v.Approved)

	// One cent more is denied.
	v = Decide(AuthorizationRequest{ID: uuid.New(), CardID: card.ID, Amount: 50_001}, card, acc)
	assert.False(t, v.Approved)
	assert.Equal(t, ReasonInsufficientCredit, v.Reason)
}

func TestDecideAmountExactlyAtCardLimit(t *testing.T) {
	acc := activeAccount(100_000, 0)
	card := &Card{ID: uuid.New(), AccountID: acc.ID, Status: CardActive, SpendingLimit: ptr(10_000)}

	v := Decide(AuthorizationRequest{ID: uuid.New(), CardID: card.ID, Amount: 10_000}, card, acc)
	assert.True(t, v.Approved)
}

func TestValidateCardNumber(t *testing.T) {
	tests := []struct {
		number string
		ok     bool
		brand  CardBrand
	}{
		{"4242 4242 4242 4242", true, Visa},
		{"5555-5555-5555-4444", true, Mastercard},
		{"4242424242424241", false, Unknown}, // fails Luhn
		{"378282246310005", false, Unknown},  // Amex not accepted
		{"", false, Unknown},
		{"not-a-number", false, Unknown},
	}
	for _, tt := range tests {
		ok, brand := ValidateCardNumber(tt.number)
		assert.Equal(t, tt.ok, ok, tt.number)
		assert.Equal(t, tt.brand, brand, tt.number)
	}
}

func TestCurrencyIsValid(t *testing.T) {
	assert.True(t, USD.IsValid())
	assert.True(t, TZS.IsValid())
	assert.False(t, Currency("usd").IsValid())
	assert.False(t, Currency("US").IsValid())
	assert.False(t, Currency("DOLLARS").IsValid())
}
