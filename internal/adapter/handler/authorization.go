package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/cardauth/internal/core/authorizer"
	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
)

type AuthorizationHandler struct {
	Service *authorizer.Service
}

// AuthorizeRequest is the upstream transaction event. The id is the event
// source's identifier and doubles as the idempotency key.
type AuthorizeRequest struct {
	ID       string `json:"id"`
	CardID   string `json:"card_id"`
	Amount   int64  `json:"amount"` // minor units (cents)
	Currency string `json:"currency"`
	Merchant struct {
		Name         string `json:"name"`
		CategoryCode string `json:"category_code"`
		Address      string `json:"address"`
	} `json:"merchant"`
}

// Authorize decides one transaction. The response is boolean-only by design:
// denial reasons stay in the ledger for audit and never cross this boundary.
func (h *AuthorizationHandler) Authorize(c *fiber.Ctx) error {
	var req AuthorizeRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Warn("invalid transaction body", "error", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	txID, err := uuid.Parse(req.ID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID format"})
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid card ID format"})
	}
	if req.Amount < 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Amount must not be negative"})
	}
	currency := domain.Currency(req.Currency)
	if !currency.IsValid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid currency code"})
	}

	approved, err := h.Service.Submit(c.Context(), domain.AuthorizationRequest{
		ID:               txID,
		CardID:           cardID,
		Amount:           req.Amount,
		Currency:         currency,
		MerchantName:     req.Merchant.Name,
		MerchantCategory: req.Merchant.CategoryCode,
		MerchantAddress:  req.Merchant.Address,
	})
	if err != nil {
		// Undetermined outcome: no record was written, so a retry gets a real
		// decision. Fail closed at this boundary.
		slog.Error("authorization undetermined", "error", err, "transaction_id", txID)
		authorizationsTotal.WithLabelValues("undetermined").Inc()
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{"approved": false})
	}

	if approved {
		authorizationsTotal.WithLabelValues("approved").Inc()
	} else {
		authorizationsTotal.WithLabelValues("denied").Inc()
	}

	return c.JSON(fiber.Map{"approved": approved})
}
