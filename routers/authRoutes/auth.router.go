package authRoutes

import (
	authController "academy/controllers/auth"
	authValidator "academy/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, h *authController.AuthController, auth, loadUser fiber.Handler) {
	authGroup := app.Group("/auth")

	authGroup.Post("/signup", authValidator.Signup(), h.Signup)
	authGroup.Post("/login", authValidator.Login(), h.Login)
	authGroup.Get("/me", auth, loadUser, h.Profile)
	authGroup.Put("/change/login/password", auth, loadUser, authValidator.ChangePassword(), h.ChangeLoginPassword)
}
