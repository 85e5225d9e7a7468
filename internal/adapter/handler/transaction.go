package handler

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/cardauth/internal/adapter/storage"
)

// TransactionHandler serves read-only transaction queries for the admin
// layer. Records here include denial reasons; this surface is internal, not
// the upstream event source's boundary.
type TransactionHandler struct {
	Repo *storage.LedgerRepository
}

func (h *TransactionHandler) GetHistory(c *fiber.Ctx) error {
	accountUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Account ID"})
	}

	history, err := h.Repo.GetHistory(c.Context(), accountUUID, 10)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch history"})
	}

	return c.JSON(fiber.Map{"transactions": history})
}
