package billingValidator

import (
	"strings"

	"academy/middleware"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

// CheckoutRequest buys either a subscription plan or a single course
type CheckoutRequest struct {
	Tier     string `json:"tier" validate:"omitempty,oneof=STARTER PRO TEAM"`
	CourseID uint   `json:"course_id"`
}

func Checkout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(CheckoutRequest)
		if err := c.BodyParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		req.Tier = strings.ToUpper(strings.TrimSpace(req.Tier))

		errors := validators.Struct(req)
		if errors == nil {
			errors = make(map[string]string)
		}
		if (req.Tier == "") == (req.CourseID == 0) {
			errors["tier"] = "Provide either a plan tier or a course_id!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCheckout", req)
		return c.Next()
	}
}
