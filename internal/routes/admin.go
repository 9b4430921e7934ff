package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/keyvend/keyvend/internal/shop"
)

// RegisterAdminRoutes wires the restock and stock-inspection endpoints.
func RegisterAdminRoutes(r fiber.Router, h *shop.Handler) {
	r.Post("/tiers/:tier/keys", h.AddKeys)
	r.Get("/tiers/:tier", h.TierStatus)
}
