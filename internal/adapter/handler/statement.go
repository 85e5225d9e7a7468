package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ibrahimkeyboad/cardauth/internal/core/statement"
)

// StatementHandler exposes the billing batch to the admin layer.
type StatementHandler struct {
	Service *statement.Service
}

// RunMonthly generates one statement per active account for the prior
// calendar month. Running it twice for the same month creates duplicates;
// the schedule is the caller's responsibility.
func (h *StatementHandler) RunMonthly(c *fiber.Ctx) error {
	statements, err := h.Service.GenerateMonthly(c.Context())
	if err != nil {
		slog.Error("monthly statement run failed", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Statement run failed"})
	}

	slog.Info("monthly statement run complete", "count", len(statements))
	return c.JSON(fiber.Map{"statements": statements})
}

type GenerateStatementRequest struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
}

// GenerateForAccount builds one statement for an explicit period.
func (h *StatementHandler) GenerateForAccount(c *fiber.Ctx) error {
	accountUUID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid Account ID format"})
	}

	var req GenerateStatementRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() || req.PeriodEnd.Before(req.PeriodStart) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid statement period"})
	}

	st, err := h.Service.GenerateForAccount(c.Context(), accountUUID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		slog.Error("statement generation failed", "error", err, "account_id", accountUUID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not generate statement"})
	}

	return c.Status(http.StatusCreated).JSON(st)
}
