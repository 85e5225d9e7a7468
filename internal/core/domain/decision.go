package domain

import "github.com/google/uuid"

// DenialReason is recorded on the transaction for audit and idempotent
// replay. It never crosses the transport boundary; callers only get a bool.
type DenialReason string

const (
	ReasonCardNotFound       DenialReason = "card_not_found"
	ReasonCardNotActive      DenialReason = "card_not_active"
	ReasonAccountNotFound    DenialReason = "account_not_found"
	ReasonAccountNotActive   DenialReason = "account_not_active"
	ReasonInsufficientCredit DenialReason = "insufficient_credit"
	ReasonExceedsCardLimit   DenialReason = "exceeds_card_limit"
)

// AuthorizationRequest is one incoming card-transaction event. ID is supplied
// by the upstream source and is the idempotency key.
type AuthorizationRequest struct {
	ID               uuid.UUID
	CardID           uuid.UUID
	Amount           int64
	Currency         Currency
	MerchantName     string
	MerchantCategory string
	MerchantAddress  string
}

// Verdict is the outcome of the rule chain. On approval Card and Account
// carry the snapshots the rules resolved, so callers don't need a second
// lookup before recording the transaction.
type Verdict struct {
	Approved bool
	Reason   DenialReason
	Card     *Card
	Account  *Account
}

// Decide runs the ordered rule chain against the given card and account
// snapshots (nil means the lookup found nothing). It performs no I/O and no
// mutation.
//
// The order is a contract: the first failing rule names the denial reason, so
// a request that violates several rules always reports the earliest one. A
// missing card reports card_not_found even if its account would also have
// failed, because the account is never reached.
func Decide(req AuthorizationRequest, card *Card, account *Account) Verdict {
	if card == nil {
		return Verdict{Reason: ReasonCardNotFound}
	}
	if card.Status != CardActive {
		return Verdict{Reason: ReasonCardNotActive}
	}
	if account == nil {
		return Verdict{Reason: ReasonAccountNotFound}
	}
	if account.Status != AccountActive {
		return Verdict{Reason: ReasonAccountNotActive}
	}
	// Strict >: landing exactly on the credit limit is allowed.
	if account.CurrentBalance+req.Amount > account.CreditLimit {
		return Verdict{Reason: ReasonInsufficientCredit}
	}
	if card.SpendingLimit != nil && req.Amount > *card.SpendingLimit {
		return Verdict{Reason: ReasonExceedsCardLimit}
	}
	return Verdict{Approved: true, Card: card, Account: account}
}
