package controllers

import (
	"academy/middleware"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse enrolls the caller in a published course
func (h *CourseController) EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	courseID := c.Locals("courseID").(uint)

	e, err := h.Enrollments.Enroll(c.UserContext(), userID, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", e)
}

// GetUserEnrollmentsList is the learner dashboard
func (h *CourseController) GetUserEnrollmentsList(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	enrollments, err := h.Enrollments.ListForUser(c.UserContext(), userID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", enrollments)
}
