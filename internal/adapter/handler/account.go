package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/cardauth/internal/adapter/storage"
	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
	"github.com/ibrahimkeyboad/cardauth/internal/core/security"
)

// AccountHandler is the admin surface for the account/card directory. The
// decision core never creates accounts or cards; it only reads them.
type AccountHandler struct {
	Repo *storage.DirectoryRepository
}

type CreateAccountRequest struct {
	OwnerName   string `json:"owner_name"`
	Currency    string `json:"currency"`
	CreditLimit int64  `json:"credit_limit"` // minor units
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req CreateAccountRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Warn("invalid account body", "error", err)
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.OwnerName == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Owner Name is required"})
	}
	currency := domain.Currency(req.Currency)
	if !currency.IsValid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid currency code"})
	}
	if req.CreditLimit <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Credit limit must be positive"})
	}

	account, err := h.Repo.CreateAccount(c.Context(), req.OwnerName, currency, req.CreditLimit)
	if err != nil {
		slog.Error("failed to create account", "error", err, "owner", req.OwnerName)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create account"})
	}

	slog.Info("account created", "id", account.ID, "owner", req.OwnerName)
	return c.Status(http.StatusCreated).JSON(account)
}

type CreateCardRequest struct {
	CardNumber    string `json:"card_number"`
	SpendingLimit *int64 `json:"spending_limit,omitempty"` // minor units, optional
}

func (h *AccountHandler) CreateCard(c *fiber.Ctx) error {
	accountUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Account ID format"})
	}

	var req CreateCardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	pan := strings.NewReplacer(" ", "", "-", "").Replace(req.CardNumber)
	ok, brand := domain.ValidateCardNumber(pan)
	if !ok {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid card. We only accept Visa and Mastercard.",
		})
	}
	if req.SpendingLimit != nil && *req.SpendingLimit <= 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Spending limit must be positive"})
	}

	// The PAN is validated and dropped; only brand and last four are kept.
	lastFour := pan[len(pan)-4:]
	card, err := h.Repo.CreateCard(c.Context(), accountUUID, req.SpendingLimit, brand, lastFour)
	if err != nil {
		slog.Error("failed to create card", "error", err, "account_id", accountUUID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create card"})
	}

	slog.Info("card issued", "id", card.ID, "account_id", accountUUID, "brand", brand)
	return c.Status(http.StatusCreated).JSON(card)
}

func (h *AccountHandler) GenerateKey(c *fiber.Ctx) error {
	accountUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Account ID format"})
	}

	realKey, keyHash, err := security.GenerateAPIKey()
	if err != nil {
		slog.Error("crypto error generating key", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Crypto error"})
	}

	if err := h.Repo.SaveAPIKey(c.Context(), accountUUID, keyHash, "sk_live_"); err != nil {
		slog.Error("failed to save API key", "error", err, "account_id", accountUUID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save key"})
	}

	slog.Info("API key generated", "account_id", accountUUID)

	// Shown once; only the hash is stored.
	return c.JSON(fiber.Map{
		"api_key": realKey,
		"warning": "Save this now! We won't show it again.",
	})
}
