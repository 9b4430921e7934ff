package webhook

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler is the HTTP boundary the payment provider posts to.
type Handler struct {
	reconciler *Reconciler
	logger     *slog.Logger
}

// NewHandler constructs a webhook handler.
func NewHandler(reconciler *Reconciler, logger *slog.Logger) *Handler {
	return &Handler{reconciler: reconciler, logger: logger}
}

// Receive ingests a bank transfer notification. Any structurally parseable
// request is acknowledged with 200 whatever the reconciliation outcome, so
// the provider never retry-storms over application-level mismatches. 400 is
// reserved for bodies missing required fields; 500 for storage failure.
func (h *Handler) Receive(c *fiber.Ctx) error {
	n, err := Normalize(c.Body())
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformed), errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	result, err := h.reconciler.Process(c.UserContext(), n)
	if err != nil {
		h.logger.Error("webhook reconciliation failed", "tx_id", n.TransactionID, "error", err)
		return fiber.NewError(http.StatusInternalServerError, "reconciliation failed")
	}

	if result.Outcome != OutcomeCredited {
		h.logger.Info("webhook event not credited",
			"outcome", string(result.Outcome), "tx_id", n.TransactionID)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"outcome": string(result.Outcome),
	})
}
