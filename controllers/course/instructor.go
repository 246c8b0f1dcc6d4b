package controllers

import (
	"academy/middleware"
	"academy/services/authoring"
	courseValidator "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// CreateCourse creates a draft course owned by the caller
func (h *CourseController) CreateCourse(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := h.Authoring.CreateCourse(c.UserContext(), user, authoring.CourseInput{
		Title:        reqData.Title,
		Description:  reqData.Description,
		Price:        reqData.Price,
		ThumbnailURL: reqData.ThumbnailURL,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// ListOwnCourses lists the caller's courses in every status
func (h *CourseController) ListOwnCourses(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)

	courses, err := h.Authoring.ListOwned(c.UserContext(), user)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func (h *CourseController) CreateModule(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedModule").(*courseValidator.CreateModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module, err := h.Authoring.AddModule(c.UserContext(), user, courseID, authoring.ModuleInput{
		Title:       reqData.Title,
		Description: reqData.Description,
		OrderIndex:  reqData.OrderIndex,
		IsPublished: reqData.IsPublished,
		IsFree:      reqData.IsFree,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

func (h *CourseController) PublishModule(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	moduleID := c.Locals("moduleID").(uint)
	reqData, ok := c.Locals("validatedModulePublish").(*courseValidator.PublishModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module, err := h.Authoring.SetModulePublished(c.UserContext(), user, moduleID, *reqData.IsPublished)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

func (h *CourseController) CreateLesson(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	moduleID := c.Locals("moduleID").(uint)
	reqData, ok := c.Locals("validatedLesson").(*courseValidator.CreateLessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := h.Authoring.AddLesson(c.UserContext(), user, moduleID, authoring.LessonInput{
		Title:      reqData.Title,
		Content:    reqData.Content,
		VideoURL:   reqData.VideoURL,
		Duration:   reqData.Duration,
		OrderIndex: reqData.OrderIndex,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

func (h *CourseController) CreateQuiz(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	lessonID := c.Locals("lessonID").(uint)
	reqData, ok := c.Locals("validatedQuiz").(*courseValidator.CreateQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	in := authoring.QuizInput{Title: reqData.Title, PassingScore: reqData.PassingScore}
	for _, q := range reqData.Questions {
		in.Questions = append(in.Questions, authoring.QuestionInput{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	quiz, err := h.Authoring.AddQuiz(c.UserContext(), user, lessonID, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

func (h *CourseController) CreateLab(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	lessonID := c.Locals("lessonID").(uint)
	reqData, ok := c.Locals("validatedLab").(*courseValidator.CreateLabRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lab, err := h.Authoring.AddLab(c.UserContext(), user, lessonID, authoring.LabInput{
		Title:              reqData.Title,
		Description:        reqData.Description,
		Instructions:       reqData.Instructions,
		RequiresText:       reqData.RequiresText,
		RequiresPhoto:      reqData.RequiresPhoto,
		RequiresVideo:      reqData.RequiresVideo,
		RequiresFileUpload: reqData.RequiresFileUpload,
		IsGraded:           reqData.IsGraded,
		MaxPoints:          reqData.MaxPoints,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lab created successfully!", lab)
}
