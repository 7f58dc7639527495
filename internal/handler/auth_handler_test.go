package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

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

func newAuthTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.TeacherProfile{}))

	svc := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewTeacherProfileRepository(db),
		validator.New(),
		"test-secret",
		time.Hour,
		zerolog.Nop(),
	)

	app := fiber.New()
	handler.NewAuthHandler(svc, zerolog.Nop()).Register(app.Group("/api/auth"))
	return app
}

func TestRegisterAndLoginFlow(t *testing.T) {
	app := newAuthTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", map[string]any{
		"username": "alice01",
		"email":    "alice@example.com",
		"password": "password123",
		"name":     "Alice",
		"role":     "student",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope struct {
		Data struct {
			Token string `json:"token"`
			User  struct {
				IsVerified bool `json:"is_verified"`
			} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.NotEmpty(t, envelope.Data.Token)
	require.True(t, envelope.Data.User.IsVerified)

	resp = postJSON(t, app, "/api/auth/register", map[string]any{
		"username": "alice01",
		"email":    "other@example.com",
		"password": "password123",
		"name":     "Alice",
		"role":     "student",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", map[string]any{
		"username": "alice01",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", map[string]any{
		"username": "alice01",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterValidatesPayload(t *testing.T) {
	app := newAuthTestApp(t)

	resp := postJSON(t, app, "/api/auth/register", map[string]any{
		"username": "x",
		"email":    "not-an-email",
		"password": "short",
		"name":     "A",
		"role":     "admin",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
