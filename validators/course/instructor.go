package courseValidator

import (
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateCourseRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Price        int64  `json:"price" validate:"min=0"` // cents
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" validate:"min=0"`
	IsPublished bool   `json:"is_published"`
	IsFree      bool   `json:"is_free"`
}

type PublishModuleRequest struct {
	IsPublished *bool `json:"is_published" validate:"required"`
}

type CreateLessonRequest struct {
	Title      string `json:"title" validate:"required,max=200"`
	Content    string `json:"content"`
	VideoURL   string `json:"video_url" validate:"omitempty,url"`
	Duration   int    `json:"duration" validate:"min=0"`
	OrderIndex int    `json:"order_index" validate:"min=0"`
}

type QuestionRequest struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Explanation   string   `json:"explanation"`
}

type CreateQuizRequest struct {
	Title        string            `json:"title" validate:"required"`
	PassingScore int               `json:"passing_score" validate:"min=0,max=100"`
	Questions    []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

type CreateLabRequest struct {
	Title              string `json:"title" validate:"required,max=200"`
	Description        string `json:"description"`
	Instructions       string `json:"instructions"`
	RequiresText       bool   `json:"requires_text"`
	RequiresPhoto      bool   `json:"requires_photo"`
	RequiresVideo      bool   `json:"requires_video"`
	RequiresFileUpload bool   `json:"requires_file_upload"`
	IsGraded           bool   `json:"is_graded"`
	MaxPoints          int    `json:"max_points" validate:"min=0"`
}

type GradeSubmissionRequest struct {
	Points   *int   `json:"points" validate:"required,min=0"`
	Feedback string `json:"feedback" validate:"max=5000"`
}

func CreateCourse() fiber.Handler {
	return validators.Body[CreateCourseRequest]("validatedCourse")
}

func CreateModule() fiber.Handler {
	return validators.Body[CreateModuleRequest]("validatedModule")
}

func PublishModule() fiber.Handler {
	return validators.Body[PublishModuleRequest]("validatedModulePublish")
}

func CreateLesson() fiber.Handler {
	return validators.Body[CreateLessonRequest]("validatedLesson")
}

func CreateQuiz() fiber.Handler {
	return validators.Body[CreateQuizRequest]("validatedQuiz")
}

func CreateLab() fiber.Handler {
	return validators.Body[CreateLabRequest]("validatedLab")
}

func GradeSubmission() fiber.Handler {
	return validators.Body[GradeSubmissionRequest]("validatedGrade")
}
