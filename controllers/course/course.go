package controllers

import (
	"academy/middleware"
	"academy/services/authoring"
	"academy/services/catalog"
	"academy/services/enrollment"
	"academy/services/labs"
	"academy/services/progress"
	"academy/services/quiz"

	"github.com/gofiber/fiber/v2"
)

// CourseController serves the learner and instructor course endpoints
type CourseController struct {
	Catalog     *catalog.Catalog
	Enrollments *enrollment.Manager
	Progress    *progress.Tracker
	Quizzes     *quiz.Grader
	Authoring   *authoring.Service
	Labs        *labs.Service
}

// GetAllCourses lists published courses
func (h *CourseController) GetAllCourses(c *fiber.Ctx) error {
	courses, err := h.Catalog.ListPublished(c.UserContext())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

// GetCourseDetails returns a published course outline with the caller's enrollment
func (h *CourseController) GetCourseDetails(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	courseID := c.Locals("courseID").(uint)

	detail, err := h.Catalog.GetPublished(c.UserContext(), userID, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", detail)
}

// GetLesson returns a lesson the caller can reach
func (h *CourseController) GetLesson(c *fiber.Ctx) error {
	userID, _ := middleware.UserID(c)
	courseID := c.Locals("courseID").(uint)
	lessonID := c.Locals("lessonID").(uint)

	view, err := h.Catalog.GetLesson(c.UserContext(), userID, courseID, lessonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", view)
}
