package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Protected authenticates admin requests by API key. Keys are stored hashed;
// the lookup is by SHA-256 of the presented key, never plain text.
func Protected(db *pgxpool.Pool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization") // "Bearer sk_live_..."
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Missing API Key"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid Header Format"})
		}

		hash := sha256.Sum256([]byte(parts[1]))
		hashedKey := hex.EncodeToString(hash[:])

		var accountID string
		err := db.QueryRow(c.Context(),
			"SELECT account_id FROM api_keys WHERE key_hash = $1", hashedKey).Scan(&accountID)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid API Key"})
		}

		c.Locals("account_id", accountID)
		return c.Next()
	}
}
