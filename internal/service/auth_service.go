package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the username/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountExists indicates the username or email is already taken.
	ErrAccountExists = errors.New("account already exists")
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error)
}

type authService struct {
	users     repository.UserRepository
	profiles  repository.TeacherProfileRepository
	validator *validator.Validate
	secret    string
	tokenTTL  time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuthService builds the authentication service.
func NewAuthService(users repository.UserRepository, profiles repository.TeacherProfileRepository, validate *validator.Validate, secret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		profiles:  profiles,
		validator: validate,
		secret:    secret,
		tokenTTL:  tokenTTL,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	username := strings.ToLower(strings.TrimSpace(payload.Username))
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return dto.AuthResponse{}, ErrAccountExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return dto.AuthResponse{}, ErrAccountExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AuthResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	// Students are usable immediately; teachers stay unverified until an
	// admin approves their application.
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(payload.Name),
		Role:         payload.Role,
		IsVerified:   payload.Role == models.RoleStudent,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.AuthResponse{}, err
	}

	if user.Role == models.RoleTeacher {
		profile := models.TeacherProfile{
			UserID:      user.ID,
			Title:       strings.TrimSpace(payload.Title),
			Institution: strings.TrimSpace(payload.Institution),
			Expertise:   strings.TrimSpace(payload.Expertise),
			Biography:   strings.TrimSpace(payload.Biography),
			Status:      models.TeacherStatusPending,
		}
		if err := s.profiles.Create(ctx, &profile); err != nil {
			return dto.AuthResponse{}, err
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("account registered")

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.AuthResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AuthResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(payload.Username)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, ErrInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.AuthResponse{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}

	return dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

// issueToken signs role and verification into the token so route guards never
// have to trust client-held state.
func (s *authService) issueToken(user models.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"role":     user.Role,
		"verified": user.IsVerified,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}
