package controllers

import (
	"strings"

	"academy/middleware"
	"academy/services/labs"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SubmitLab accepts a multipart form with an optional "text" field and an
// optional "evidence" file
func (h *CourseController) SubmitLab(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	labID := c.Locals("labID").(uint)

	in := labs.Submission{Text: c.FormValue("text")}
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid multipart form!", nil)
		}
		if files := form.File["evidence"]; len(files) > 0 {
			file := files[0]
			if file.Size > labs.MaxEvidenceSize {
				return middleware.JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, "Evidence file is too large!", nil)
			}
			src, err := file.Open()
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read evidence file!", nil)
			}
			defer src.Close()
			in.Evidence = &labs.Evidence{Filename: file.Filename, Body: src}
		}
	}

	sub, err := h.Labs.Submit(c.UserContext(), userID, labID, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lab submitted successfully!", sub)
}

// ListLabSubmissions is the grading queue for one lab
func (h *CourseController) ListLabSubmissions(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	labID := c.Locals("labID").(uint)

	subs, err := h.Labs.ListSubmissions(c.UserContext(), user, labID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", subs)
}

func (h *CourseController) GradeSubmission(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	submissionID := c.Locals("submissionID").(uint)
	reqData, ok := c.Locals("validatedGrade").(*courseValidator.GradeSubmissionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	sub, err := h.Labs.Grade(c.UserContext(), user, submissionID, labs.Grade{
		Points:   *reqData.Points,
		Feedback: reqData.Feedback,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded successfully!", sub)
}
