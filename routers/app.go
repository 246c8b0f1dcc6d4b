package routers

import (
	"time"

	"academy/config"
	adminController "academy/controllers/admin"
	authController "academy/controllers/auth"
	billingController "academy/controllers/billing"
	courseController "academy/controllers/course"
	"academy/mailer"
	"academy/middleware"
	"academy/models"
	"academy/payments"
	adminRoutes "academy/routers/adminRoutes"
	authRoutes "academy/routers/authRoutes"
	billingRoutes "academy/routers/billingRoutes"
	courseRoutes "academy/routers/courseRoutes"
	"academy/services/approval"
	"academy/services/authoring"
	"academy/services/catalog"
	"academy/services/dashboard"
	"academy/services/enrollment"
	"academy/services/labs"
	"academy/services/progress"
	"academy/services/quiz"
	"academy/services/subscription"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

const requestTimeout = 30 * time.Second

// Deps are the shared resources the HTTP app is built from
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Notifier *mailer.Notifier
	Payments payments.Provider
}

// NewApp builds the services and mounts every route group
func NewApp(d Deps) *fiber.App {
	cfg, db := d.Config, d.DB

	app := fiber.New(fiber.Config{
		AppName:   "academy",
		BodyLimit: int(labs.MaxEvidenceSize) + 1<<20,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))
	app.Use(middleware.RequestID(requestTimeout))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Uploaded lab evidence
	app.Static("/uploads", cfg.UploadDir)

	enrollments := enrollment.NewManager(db, d.Notifier)

	auth := middleware.JWTMiddleware(cfg.JWTKey)
	loadUser := middleware.RequireRole(db)
	member := []fiber.Handler{auth, loadUser}
	instructor := []fiber.Handler{auth, middleware.RequireRole(db, models.RoleInstructor, models.RoleAdmin)}
	admin := []fiber.Handler{auth, middleware.RequireRole(db, models.RoleAdmin)}

	authRoutes.SetupAuthRoutes(app, &authController.AuthController{
		DB:        db,
		JWTKey:    cfg.JWTKey,
		JWTTTL:    cfg.JWTTTL,
		SaltRound: cfg.SaltRound,
		Mailer:    d.Notifier,
	}, auth, loadUser)

	courses := &courseController.CourseController{
		Catalog:     catalog.NewCatalog(db),
		Enrollments: enrollments,
		Progress:    progress.NewTracker(db),
		Quizzes:     quiz.NewGrader(db),
		Authoring:   authoring.NewService(db),
		Labs:        labs.NewService(db, cfg.UploadDir),
	}
	courseRoutes.SetupCourseRoutes(app, courses, auth)
	courseRoutes.SetupInstructorRoutes(app, courses, instructor...)

	billingRoutes.SetupBillingRoutes(app, &billingController.BillingController{
		DB:            db,
		Payments:      d.Payments,
		Subscriptions: subscription.NewSynchronizer(db, enrollments),
	}, member...)

	adminRoutes.SetupAdminRoutes(app, &adminController.AdminController{
		Approvals: approval.NewWorkflow(db, d.Notifier),
		Dashboard: dashboard.NewService(db),
	}, admin...)

	return app
}
