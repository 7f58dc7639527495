package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
)

func newAuthService(users *memoryUserRepo, profiles *memoryProfileRepo) AuthService {
	return NewAuthService(users, profiles, testValidator(), "test-secret", time.Hour, testLogger())
}

func TestRegisterStudentIsVerifiedImmediately(t *testing.T) {
	users := newMemoryUserRepo()
	profiles := newMemoryProfileRepo(users)
	svc := newAuthService(users, profiles)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "Alice01",
		Email:    "Alice@example.com",
		Password: "password123",
		Name:     "Alice",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.True(t, resp.User.IsVerified)
	require.Equal(t, "alice01", resp.User.Username)
	require.Equal(t, "alice@example.com", resp.User.Email)
	require.Empty(t, profiles.profiles)
}

func TestRegisterTeacherCreatesPendingApplication(t *testing.T) {
	users := newMemoryUserRepo()
	profiles := newMemoryProfileRepo(users)
	svc := newAuthService(users, profiles)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username:    "profbob",
		Email:       "bob@example.com",
		Password:    "password123",
		Name:        "Bob",
		Role:        models.RoleTeacher,
		Title:       "Lecturer",
		Institution: "State University",
	})
	require.NoError(t, err)
	require.False(t, resp.User.IsVerified)

	profile, err := profiles.GetByUserID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	require.Equal(t, models.TeacherStatusPending, profile.Status)
	require.Equal(t, "Lecturer", profile.Title)
}

func TestRegisterRejectsDuplicateAccounts(t *testing.T) {
	users := newMemoryUserRepo()
	profiles := newMemoryProfileRepo(users)
	svc := newAuthService(users, profiles)

	payload := dto.RegisterRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "password123",
		Name:     "Carol",
		Role:     models.RoleStudent,
	}
	_, err := svc.Register(context.Background(), payload)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrAccountExists)

	payload.Username = "carol2"
	_, err = svc.Register(context.Background(), payload)
	require.ErrorIs(t, err, ErrAccountExists)
}

func TestLoginChecksPassword(t *testing.T) {
	users := newMemoryUserRepo()
	profiles := newMemoryProfileRepo(users)
	svc := newAuthService(users, profiles)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "password123",
		Name:     "Dave",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "dave", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "DAVE", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
}

func TestTokenCarriesRoleAndVerification(t *testing.T) {
	users := newMemoryUserRepo()
	profiles := newMemoryProfileRepo(users)
	svc := newAuthService(users, profiles)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "erin",
		Email:    "erin@example.com",
		Password: "password123",
		Name:     "Erin",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)

	parsed, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, models.RoleTeacher, claims["role"])
	require.Equal(t, false, claims["verified"])
}
