package controllers

import (
	"academy/middleware"
	"academy/services/quiz"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SubmitQuiz grades the caller's answers on the server
func (h *CourseController) SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedQuizSubmit").(*courseValidator.QuizSubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	res, err := h.Quizzes.Submit(c.UserContext(), userID, reqData.QuizID, quiz.Answers(reqData.Answers))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	message := "Quiz failed, try again!"
	if res.Passed {
		message = "Quiz passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, res)
}

// GetQuizAttempts lists the caller's attempts, newest first
func (h *CourseController) GetQuizAttempts(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	quizID := c.Locals("quizID").(uint)

	attempts, err := h.Quizzes.Attempts(c.UserContext(), userID, quizID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", attempts)
}
