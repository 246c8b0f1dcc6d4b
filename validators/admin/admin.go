package adminValidator

import (
	"academy/middleware"
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type RecentUsersQuery struct {
	Limit *int `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

func ApproveCourse() fiber.Handler {
	return validators.IDParam("id", "courseID", "Course ID")
}

func RecentUsers() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := new(RecentUsersQuery)
		if err := c.QueryParser(req); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := validators.Struct(req); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedRecentUsers", req)
		return c.Next()
	}
}
