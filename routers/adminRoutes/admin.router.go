package adminRoutes

import (
	adminController "academy/controllers/admin"
	adminValidator "academy/validators/admin"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes mounts the admin area behind the given auth chain
func SetupAdminRoutes(app *fiber.App, h *adminController.AdminController, admin ...fiber.Handler) {
	adminGroup := app.Group("/admin", admin...)

	// Course approval
	adminGroup.Get("/courses/pending", h.PendingCourses)
	adminGroup.Post("/courses/:id/approve", adminValidator.ApproveCourse(), h.ApproveCourse)

	// Dashboard
	adminGroup.Get("/users/recent", adminValidator.RecentUsers(), h.RecentUsers)
	adminGroup.Get("/dashboard/stats", h.DashboardStats)
}
