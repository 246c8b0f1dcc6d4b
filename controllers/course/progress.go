package controllers

import (
	"academy/middleware"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// MarkLessonProgress completes or un-completes a lesson for the caller
func (h *CourseController) MarkLessonProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedLessonCompletion").(*courseValidator.LessonCompletionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	res, err := h.Progress.SetLessonCompletion(c.UserContext(), userID, reqData.LessonID, *reqData.Completed)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", res)
}

// RecordWatchTime stores the caller's playback position
func (h *CourseController) RecordWatchTime(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedWatchTime").(*courseValidator.WatchTimeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := h.Progress.RecordWatchTime(c.UserContext(), userID, reqData.LessonID, *reqData.WatchTime); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Watch time saved!", nil)
}
