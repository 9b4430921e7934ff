package shop

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/keyvend/keyvend/internal/inventory"
	"github.com/keyvend/keyvend/internal/ledger"
)

// Handler exposes the user-facing and admin HTTP endpoints.
type Handler struct {
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a shop handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validate: validator.New()}
}

// RequestDeposit registers a deposit intent and returns the memo code.
func (h *Handler) RequestDeposit(c *fiber.Ctx) error {
	var req DepositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.RequestDeposit(c.UserContext(), req.UserID, req.Amount)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			return fiber.NewError(http.StatusBadRequest, "deposit amount must be positive")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(DepositResponse{
		Code:      result.Code,
		Amount:    result.Amount,
		ExpiresAt: result.ExpiresAt,
		QRPNG:     result.QRPNG,
	})
}

// Balance reports the user's current balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	user := c.Params("userId")
	if user == "" {
		return fiber.NewError(http.StatusBadRequest, "user id is required")
	}

	balance, err := h.service.BalanceOf(c.UserContext(), user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"user_id": user, "balance": balance})
}

// Purchase debits the tier price and returns an allocated key.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Purchase(c.UserContext(), req.UserID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTier):
			return fiber.NewError(http.StatusBadRequest, "unrecognized tier")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusPaymentRequired, "insufficient funds")
		case errors.Is(err, ErrOutOfStock):
			return fiber.NewError(http.StatusConflict, "tier out of stock")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(PurchaseResponse{
		ReceiptID:  result.ReceiptID,
		Tier:       result.Tier,
		Price:      result.Price,
		Key:        result.Key,
		NewBalance: result.NewBalance,
	})
}

// AddKeys appends keys to a tier's queue (admin).
func (h *Handler) AddKeys(c *fiber.Ctx) error {
	tier := c.Params("tier")

	var req AddKeysRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.AddKeys(c.UserContext(), tier, req.Keys); err != nil {
		if errors.Is(err, inventory.ErrInvalidTier) {
			return fiber.NewError(http.StatusBadRequest, "unrecognized tier")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	remaining, err := h.service.Remaining(c.UserContext(), tier)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"tier": tier, "added": len(req.Keys), "remaining": remaining})
}

// TierStatus reports the remaining stock and price for a tier (admin).
func (h *Handler) TierStatus(c *fiber.Ctx) error {
	tier := c.Params("tier")

	remaining, err := h.service.Remaining(c.UserContext(), tier)
	if err != nil {
		if errors.Is(err, inventory.ErrInvalidTier) {
			return fiber.NewError(http.StatusBadRequest, "unrecognized tier")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	price, _ := h.service.Price(tier)
	return c.JSON(fiber.Map{"tier": tier, "remaining": remaining, "price": price})
}
