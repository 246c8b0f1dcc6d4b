package courseRoutes

import (
	controllers "academy/controllers/course"
	validators "academy/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupInstructorRoutes sets up course authoring and grading routes.
// instructor must authenticate and load an INSTRUCTOR or ADMIN caller.
func SetupInstructorRoutes(app *fiber.App, h *controllers.CourseController, instructor ...fiber.Handler) {
	instructorGroup := app.Group("/instructor", instructor...)

	// Course authoring
	instructorGroup.Post("/courses", validators.CreateCourse(), h.CreateCourse)
	instructorGroup.Get("/courses", h.ListOwnCourses)
	instructorGroup.Post("/courses/:id/modules", validators.CourseID("id"), validators.CreateModule(), h.CreateModule)
	instructorGroup.Put("/modules/:id/publish", validators.ModuleID("id"), validators.PublishModule(), h.PublishModule)
	instructorGroup.Post("/modules/:id/lessons", validators.ModuleID("id"), validators.CreateLesson(), h.CreateLesson)
	instructorGroup.Post("/lessons/:id/quiz", validators.LessonID("id"), validators.CreateQuiz(), h.CreateQuiz)
	instructorGroup.Post("/lessons/:id/labs", validators.LessonID("id"), validators.CreateLab(), h.CreateLab)

	// Grading
	instructorGroup.Get("/labs/:labId/submissions", validators.LabID("labId"), h.ListLabSubmissions)

	gradeGroup := app.Group("/labs/submissions", instructor...)
	gradeGroup.Post("/:id/grade", validators.SubmissionID("id"), validators.GradeSubmission(), h.GradeSubmission)
}
