package middleware

import (
	"academy/database"
	"academy/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequireRole returns a middleware that loads the caller and checks their
// role against the allowed ones. The role is read from the database, not
// the token. With no roles any active user passes.
func RequireRole(db *gorm.DB, roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var user models.User
		err := db.WithContext(c.UserContext()).
			Where("id = ? AND is_deleted = ?", userID, false).
			First(&user).Error
		if err != nil {
			if database.IsNotFound(err) {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		if len(roles) > 0 && !user.HasRole(roles...) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser returns the user loaded by RequireRole
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	u, ok := c.Locals("user").(models.User)
	return u, ok
}
