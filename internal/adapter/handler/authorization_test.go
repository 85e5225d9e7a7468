package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahimkeyboad/cardauth/internal/adapter/handler"
	"github.com/ibrahimkeyboad/cardauth/internal/adapter/storage/memory"
	"github.com/ibrahimkeyboad/cardauth/internal/core/authorizer"
	"github.com/ibrahimkeyboad/cardauth/internal/core/domain"
)

func newApp(svc *authorizer.Service) *fiber.App {
	app := fiber.New()
	h := &handler.AuthorizationHandler{Service: svc}
	app.Post("/v1/transactions", h.Authorize)
	return app
}

func postJSON(t *testing.T, app *fiber.App, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestAuthorizeApproved(t *testing.T) {
	store := memory.NewStore()
	acc := domain.Account{ID: uuid.New(), CreditLimit: 100_000, Status: domain.AccountActive}
	card := domain.Card{ID: uuid.New(), AccountID: acc.ID, Status: domain.CardActive}
	store.PutAccount(acc)
	store.PutCard(card)

	app := newApp(authorizer.NewService(store, store))

	body := fmt.Sprintf(`{
		"id": %q, "card_id": %q, "amount": 50000, "currency": "USD",
		"merchant": {"name": "BOOKSTORE", "category_code": "5942", "address": "123 Main St"}
	}`, uuid.New(), card.ID)

	resp, decoded := postJSON(t, app, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decoded["approved"])
}

func TestAuthorizeDeniedResponseIsBooleanOnly(t *testing.T) {
	store := memory.NewStore()
	app := newApp(authorizer.NewService(store, store))

	// Unknown card: denied and recorded, but the reason must not leak out.
	body := fmt.Sprintf(`{"id": %q, "card_id": %q, "amount": 1000, "currency": "USD"}`,
		uuid.New(), uuid.New())

	resp, decoded := postJSON(t, app, body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, decoded["approved"])
	assert.NotContains(t, decoded, "reason")
	assert.NotContains(t, decoded, "denial_reason")
}

func TestAuthorizeMalformedInput(t *testing.T) {
	store := memory.NewStore()
	app := newApp(authorizer.NewService(store, store))

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"bad transaction id", fmt.Sprintf(`{"id": "nope", "card_id": %q, "amount": 1, "currency": "USD"}`, uuid.New())},
		{"bad card id", fmt.Sprintf(`{"id": %q, "card_id": "nope", "amount": 1, "currency": "USD"}`, uuid.New())},
		{"negative amount", fmt.Sprintf(`{"id": %q, "card_id": %q, "amount": -5, "currency": "USD"}`, uuid.New(), uuid.New())},
		{"bad currency", fmt.Sprintf(`{"id": %q, "card_id": %q, "amount": 1, "currency": "dollars"}`, uuid.New(), uuid.New())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, app, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	// Malformed input is rejected before the engine: nothing recorded.
	assert.Equal(t, 0, store.TransactionCount())
}

type downDirectory struct{}

func (downDirectory) FindCard(context.Context, uuid.UUID) (*domain.Card, error) {
	return nil, errors.New("directory down")
}

func (downDirectory) FindAccount(context.Context, uuid.UUID) (*domain.Account, error) {
	return nil, errors.New("directory down")
}

func TestAuthorizeFailsClosedOnCollaboratorFailure(t *testing.T) {
	store := memory.NewStore()
	app := newApp(authorizer.NewService(downDirectory{}, store))

	body := fmt.Sprintf(`{"id": %q, "card_id": %q, "amount": 1000, "currency": "USD"}`,
		uuid.New(), uuid.New())

	resp, decoded := postJSON(t, app, body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, false, decoded["approved"])
	// Undetermined must not leave a record behind.
	assert.Equal(t, 0, store.TransactionCount())
}
