package billingRoutes

import (
	billingController "academy/controllers/billing"
	billingValidator "academy/validators/billing"

	"github.com/gofiber/fiber/v2"
)

func SetupBillingRoutes(app *fiber.App, h *billingController.BillingController, member ...fiber.Handler) {
	billingGroup := app.Group("/billing", member...)

	billingGroup.Post("/checkout", billingValidator.Checkout(), h.Checkout)
	billingGroup.Post("/portal", h.Portal)

	// Authenticated by the signature header, not a JWT
	app.Post("/webhooks/stripe", h.StripeWebhook)
}
