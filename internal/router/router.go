package router

import (
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jackma2003/edubridge-api/internal/config"
	"github.com/jackma2003/edubridge-api/internal/handler"
	"github.com/jackma2003/edubridge-api/internal/middleware"
	"github.com/jackma2003/edubridge-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	CourseHandler   *handler.CourseHandler
	ProgressHandler *handler.ProgressHandler
	PlannerHandler  *handler.PlannerHandler
	UploadHandler   *handler.UploadHandler
	AdminHandler    *handler.AdminHandler
	JWTMiddleware   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	studentOnly := middleware.RequireRole(models.RoleStudent)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	verifiedTeacher := middleware.RequireVerifiedTeacher()

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.UserHandler.Register(users)
		deps.UserHandler.RegisterDashboard(users.Group("", studentOnly))
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses")
		// student and authoring routes first so /enrolled and /import are
		// not shadowed by /:id
		deps.CourseHandler.RegisterStudent(courses.Group("", jwtMiddleware, studentOnly))
		deps.CourseHandler.RegisterAuthoring(courses.Group("", jwtMiddleware, verifiedTeacher))
		deps.CourseHandler.RegisterOwner(courses.Group("", jwtMiddleware))
		deps.CourseHandler.RegisterPublic(courses)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.RegisterStudent(progress.Group("", studentOnly))
		deps.ProgressHandler.Register(progress)
	}

	if deps.PlannerHandler != nil {
		planner := api.Group("/planner", jwtMiddleware)
		deps.PlannerHandler.Register(planner)
	}

	if deps.UploadHandler != nil {
		uploads := api.Group("/uploads", jwtMiddleware, verifiedTeacher)
		deps.UploadHandler.Register(uploads)
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, adminOnly, middleware.RateLimit("admin", 120, time.Minute))
		deps.AdminHandler.Register(admin)
	}
}
