package courseValidator

import (
	"academy/validators"

	"github.com/gofiber/fiber/v2"
)

type LessonCompletionRequest struct {
	LessonID  uint  `json:"lesson_id" validate:"required"`
	Completed *bool `json:"completed" validate:"required"`
}

type WatchTimeRequest struct {
	LessonID  uint `json:"lesson_id" validate:"required"`
	WatchTime *int `json:"watch_time" validate:"required,min=0"`
}

// QuizSubmitRequest maps question id to the selected option text. Any
// client-computed score in the body is ignored.
type QuizSubmitRequest struct {
	QuizID  uint              `json:"quiz_id" validate:"required"`
	Answers map[string]string `json:"answers" validate:"required"`
}

// CourseID reads the course id route parameter into Locals "courseID"
func CourseID(param string) fiber.Handler {
	return validators.IDParam(param, "courseID", "Course ID")
}

func LessonID(param string) fiber.Handler {
	return validators.IDParam(param, "lessonID", "Lesson ID")
}

func ModuleID(param string) fiber.Handler {
	return validators.IDParam(param, "moduleID", "Module ID")
}

func LabID(param string) fiber.Handler {
	return validators.IDParam(param, "labID", "Lab ID")
}

func SubmissionID(param string) fiber.Handler {
	return validators.IDParam(param, "submissionID", "Submission ID")
}

func LessonCompletion() fiber.Handler {
	return validators.Body[LessonCompletionRequest]("validatedLessonCompletion")
}

func WatchTime() fiber.Handler {
	return validators.Body[WatchTimeRequest]("validatedWatchTime")
}

func QuizSubmit() fiber.Handler {
	return validators.Body[QuizSubmitRequest]("validatedQuizSubmit")
}

func QuizID(param string) fiber.Handler {
	return validators.IDParam(param, "quizID", "Quiz ID")
}
