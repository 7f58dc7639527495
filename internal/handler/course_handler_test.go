package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/handler"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/repository"
	"github.com/jackma2003/edubridge-api/internal/service"
)

type courseTestEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// fakeAuth injects the identity the JWT middleware would normally bind.
func fakeAuth(userID uint, role string, verified bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		c.Locals("user_role", role)
		c.Locals("user_verified", verified)
		return c.Next()
	}
}

func newCourseTestEnv(t *testing.T, userID uint, role string, verified bool) courseTestEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	// the in-memory database lives and dies with its connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Course{}, &models.Module{}, &models.ContentItem{},
		&models.Enrollment{}, &models.Rating{},
	))

	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	validate := validator.New()

	courseSvc := service.NewCourseService(courseRepo, enrollmentRepo, validate, zerolog.Nop())
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, service.NewEventPublisher(nil, "test", zerolog.Nop()), zerolog.Nop())
	dashboardSvc := service.NewDashboardService(enrollmentRepo, repository.NewProgressRepository(db), nil, 0, zerolog.Nop())

	h := handler.NewCourseHandler(courseSvc, enrollmentSvc, dashboardSvc, zerolog.Nop())

	app := fiber.New()
	courses := app.Group("/api/courses", fakeAuth(userID, role, verified))
	h.RegisterStudent(courses)
	h.RegisterAuthoring(courses)
	h.RegisterOwner(courses)
	h.RegisterPublic(courses)

	return courseTestEnv{app: app, db: db}
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func coursePayload() map[string]any {
	return map[string]any{
		"title":        "Intro to Go",
		"description":  "Learn the basics.",
		"level":        "beginner",
		"is_published": true,
		"modules": []map[string]any{
			{
				"title": "Getting Started",
				"content": []map[string]any{
					{"type": "video", "title": "Welcome", "duration": 10},
				},
			},
		},
	}
}

func TestCreateAndFetchCourse(t *testing.T) {
	env := newCourseTestEnv(t, 7, models.RoleTeacher, true)

	resp := postJSON(t, env.app, "/api/courses", coursePayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/courses/intro-to-go", nil)
	fetched, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, fetched.StatusCode)

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(fetched.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.Equal(t, "Intro to Go", envelope.Data.Title)
}

func TestCreateCourseRejectsInvalidPayload(t *testing.T) {
	env := newCourseTestEnv(t, 7, models.RoleTeacher, true)

	payload := coursePayload()
	payload["modules"] = []map[string]any{}
	resp := postJSON(t, env.app, "/api/courses", payload)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnrollTwiceReturnsConflict(t *testing.T) {
	teacherEnv := newCourseTestEnv(t, 7, models.RoleTeacher, true)
	resp := postJSON(t, teacherEnv.app, "/api/courses", coursePayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// rebuild the app with a student identity against the same database
	db := teacherEnv.db
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	h := handler.NewCourseHandler(
		service.NewCourseService(courseRepo, enrollmentRepo, validator.New(), zerolog.Nop()),
		service.NewEnrollmentService(enrollmentRepo, courseRepo, service.NewEventPublisher(nil, "test", zerolog.Nop()), zerolog.Nop()),
		service.NewDashboardService(enrollmentRepo, repository.NewProgressRepository(db), nil, 0, zerolog.Nop()),
		zerolog.Nop(),
	)
	app := fiber.New()
	courses := app.Group("/api/courses", fakeAuth(42, models.RoleStudent, true))
	h.RegisterStudent(courses)
	h.RegisterPublic(courses)

	resp = postJSON(t, app, "/api/courses/1/enroll", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/api/courses/1/enroll", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/courses/enrolled", nil)
	listed, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listed.StatusCode)

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(listed.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
}

func TestDeleteCourseByNonOwnerIsForbidden(t *testing.T) {
	owner := newCourseTestEnv(t, 7, models.RoleTeacher, true)
	resp := postJSON(t, owner.app, "/api/courses", coursePayload())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	db := owner.db
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	h := handler.NewCourseHandler(
		service.NewCourseService(courseRepo, enrollmentRepo, validator.New(), zerolog.Nop()),
		service.NewEnrollmentService(enrollmentRepo, courseRepo, service.NewEventPublisher(nil, "test", zerolog.Nop()), zerolog.Nop()),
		service.NewDashboardService(enrollmentRepo, repository.NewProgressRepository(db), nil, 0, zerolog.Nop()),
		zerolog.Nop(),
	)
	app := fiber.New()
	courses := app.Group("/api/courses", fakeAuth(8, models.RoleTeacher, true))
	h.RegisterOwner(courses)

	req := httptest.NewRequest(http.MethodDelete, "/api/courses/1", nil)
	denied, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, denied.StatusCode)
}
