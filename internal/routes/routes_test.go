package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/keyvend/keyvend/internal/config"
	"github.com/keyvend/keyvend/internal/logging"
)

func setupDevApp(t *testing.T) *fiber.App {
	t.Helper()

	prices, err := config.ParseTierPrices("day=15000,week=80000,month=250000")
	if err != nil {
		t.Fatalf("parse prices: %v", err)
	}
	cfg := config.Config{
		AppName:           "KeyVend",
		AppEnv:            "test",
		Port:              "0",
		TierPrices:        prices,
		IntentTTL:         15 * time.Minute,
		SweepSchedule:     "@every 10m",
		StrictAmount:      true,
		SuccessStatus:     "success",
		IdempotencyTTL:    time.Minute,
		DepositsPerMinute: 5,
	}

	app := fiber.New()
	if _, err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func request(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, payload
}

// Full loop: request a deposit, confirm it over the webhook, check the
// balance, then buy a key with the credited funds.
func TestDepositWebhookPurchaseFlow(t *testing.T) {
	app := setupDevApp(t)

	status, payload := request(t, app, fiber.MethodPost, "/api/v1/deposits",
		`{"user_id":"user-a","amount":20000}`)
	if status != fiber.StatusCreated {
		t.Fatalf("deposit request: expected 201, got %d: %s", status, payload)
	}
	var deposit struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(payload, &deposit); err != nil {
		t.Fatalf("decode deposit: %v", err)
	}
	if deposit.Code == "" {
		t.Fatal("expected a memo code")
	}

	webhookBody := fmt.Sprintf(`{"content":"ck %s","transferAmount":20000,"transactionId":"bank-1"}`, deposit.Code)
	status, payload = request(t, app, fiber.MethodPost, "/webhooks/bank", webhookBody)
	if status != fiber.StatusOK {
		t.Fatalf("webhook: expected 200, got %d: %s", status, payload)
	}

	// Replay is acknowledged but credits nothing more.
	status, _ = request(t, app, fiber.MethodPost, "/webhooks/bank", webhookBody)
	if status != fiber.StatusOK {
		t.Fatalf("webhook replay: expected 200, got %d", status)
	}

	status, payload = request(t, app, fiber.MethodGet, "/api/v1/users/user-a/balance", "")
	if status != fiber.StatusOK {
		t.Fatalf("balance: expected 200, got %d", status)
	}
	var balance struct {
		Balance int64 `json:"balance"`
	}
	if err := json.Unmarshal(payload, &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance.Balance != 20_000 {
		t.Fatalf("expected balance 20000 after single credit, got %d", balance.Balance)
	}

	// Purchasing from an unstocked tier must not move the balance.
	status, _ = request(t, app, fiber.MethodPost, "/api/v1/purchases",
		`{"user_id":"user-a","tier":"day"}`)
	if status != fiber.StatusConflict {
		t.Fatalf("purchase from empty tier: expected 409, got %d", status)
	}

	status, payload = request(t, app, fiber.MethodGet, "/api/v1/users/user-a/balance", "")
	if status != fiber.StatusOK {
		t.Fatalf("balance after refund: expected 200, got %d", status)
	}
	if err := json.Unmarshal(payload, &balance); err != nil {
		t.Fatalf("decode balance: %v", err)
	}
	if balance.Balance != 20_000 {
		t.Fatalf("expected balance 20000 after refunded attempt, got %d", balance.Balance)
	}
}

func TestAdminRoutesRejectWithoutToken(t *testing.T) {
	app := setupDevApp(t)

	status, _ := request(t, app, fiber.MethodPost, "/api/v1/admin/tiers/day/keys",
		`{"keys":["K1"]}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without admin token, got %d", status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	app := setupDevApp(t)

	status, _ := request(t, app, fiber.MethodGet, "/healthz", "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
}
