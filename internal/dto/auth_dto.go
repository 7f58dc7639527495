package dto

import (
	"time"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// RegisterRequest describes the payload for creating an account. Teacher
// registrations carry the profile fields that form the verification
// application.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Name        string `json:"name" validate:"required,min=2"`
	Role        string `json:"role" validate:"required,oneof=student teacher"`
	Title       string `json:"title" validate:"omitempty,max=255"`
	Institution string `json:"institution" validate:"omitempty,max=255"`
	Expertise   string `json:"expertise" validate:"omitempty,max=255"`
	Biography   string `json:"biography" validate:"omitempty,max=4000"`
}

// LoginRequest describes the payload for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token and the authenticated user.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the serialized representation of a user account.
type UserResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:         model.ID,
		Username:   model.Username,
		Email:      model.Email,
		Name:       model.Name,
		Role:       model.Role,
		IsVerified: model.IsVerified,
		CreatedAt:  model.CreatedAt,
	}
}

// UserUpdateRequest describes the mutable profile fields.
type UserUpdateRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2"`
	Email *string `json:"email" validate:"omitempty,email"`
}
