package courseRoutes

import (
	controllers "academy/controllers/course"
	validators "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all learner-facing course routes
func SetupCourseRoutes(app *fiber.App, h *controllers.CourseController, auth fiber.Handler) {
	courseGroup := app.Group("/courses")

	// Catalog
	courseGroup.Get("/", auth, h.GetAllCourses)
	courseGroup.Get("/:id", auth, validators.CourseID("id"), h.GetCourseDetails)

	// Enrollment
	courseGroup.Post("/:id/enroll", auth, validators.CourseID("id"), h.EnrollInCourse)

	// Lesson viewing
	courseGroup.Get("/:courseId/lessons/:lessonId", auth, validators.CourseID("courseId"), validators.LessonID("lessonId"), h.GetLesson)

	// Progress tracking
	progressGroup := app.Group("/progress")
	progressGroup.Post("/lesson", auth, validators.LessonCompletion(), h.MarkLessonProgress)
	progressGroup.Post("/video", auth, validators.WatchTime(), h.RecordWatchTime)

	// Quiz
	quizGroup := app.Group("/quiz")
	quizGroup.Post("/submit", auth, validators.QuizSubmit(), h.SubmitQuiz)
	quizGroup.Get("/:quizId/attempts", auth, validators.QuizID("quizId"), h.GetQuizAttempts)

	// Labs
	app.Post("/labs/:labId/submissions", auth, validators.LabID("labId"), h.SubmitLab)

	// Learner dashboard
	app.Get("/me/enrollments", auth, h.GetUserEnrollmentsList)
}
