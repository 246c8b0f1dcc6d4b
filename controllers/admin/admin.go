package adminController

import (
	"academy/middleware"
	"academy/services/approval"
	"academy/services/dashboard"
	adminValidator "academy/validators/admin"

	"github.com/gofiber/fiber/v2"
)

type AdminController struct {
	Approvals *approval.Workflow
	Dashboard *dashboard.Service
}

// PendingCourses lists drafts awaiting review, oldest first
func (h *AdminController) PendingCourses(c *fiber.Ctx) error {
	courses, err := h.Approvals.ListPending(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending courses fetched successfully!", courses)
}

// ApproveCourse publishes a draft. Approving a published course returns it unchanged.
func (h *AdminController) ApproveCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)

	course, err := h.Approvals.Approve(c.UserContext(), courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course approved successfully!", course)
}

func (h *AdminController) RecentUsers(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRecentUsers").(*adminValidator.RecentUsersQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	limit := 0
	if reqData.Limit != nil {
		limit = *reqData.Limit
	}

	users, err := h.Dashboard.RecentUsers(c.UserContext(), limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Recent users fetched successfully!", users)
}

func (h *AdminController) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.Dashboard.Stats(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", stats)
}
