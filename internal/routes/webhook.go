package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/keyvend/keyvend/internal/webhook"
)

// RegisterWebhookRoutes wires the payment-provider callback endpoint.
func RegisterWebhookRoutes(app *fiber.App, h *webhook.Handler) {
	app.Post("/webhooks/bank", h.Receive)
}
