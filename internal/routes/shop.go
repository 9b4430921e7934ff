package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/keyvend/keyvend/internal/shop"
)

// RegisterShopRoutes wires the user-facing deposit, balance, and purchase endpoints.
func RegisterShopRoutes(r fiber.Router, h *shop.Handler, depositLimiter fiber.Handler) {
	r.Post("/deposits", depositLimiter, h.RequestDeposit)
	r.Get("/users/:userId/balance", h.Balance)
	r.Post("/purchases", h.Purchase)
}
