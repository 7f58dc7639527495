package dto

import (
	"time"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// RejectTeacherRequest carries the mandatory rejection reason.
type RejectTeacherRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=4000"`
}

// TeacherApplicationResponse is the serialized teacher profile for admin review.
type TeacherApplicationResponse struct {
	ID              uint      `json:"id"`
	UserID          uint      `json:"user_id"`
	Username        string    `json:"username"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Title           string    `json:"title"`
	Institution     string    `json:"institution"`
	Expertise       string    `json:"expertise"`
	Biography       string    `json:"biography"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewTeacherApplicationResponse converts a profile model into a DTO.
func NewTeacherApplicationResponse(model models.TeacherProfile) TeacherApplicationResponse {
	return TeacherApplicationResponse{
		ID:              model.ID,
		UserID:          model.UserID,
		Username:        model.User.Username,
		Name:            model.User.Name,
		Email:           model.User.Email,
		Title:           model.Title,
		Institution:     model.Institution,
		Expertise:       model.Expertise,
		Biography:       model.Biography,
		Status:          model.Status,
		RejectionReason: model.RejectionReason,
		CreatedAt:       model.CreatedAt,
	}
}

// ActivityResponse is one audit log entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	ActorID    uint                   `json:"actor_id"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   *uint                  `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:         model.ID,
		ActorID:    model.ActorID,
		ActorRole:  model.ActorRole,
		Action:     model.Action,
		EntityType: model.EntityType,
		EntityID:   model.EntityID,
		Metadata:   model.Metadata,
		CreatedAt:  model.CreatedAt,
	}
}

// ActivityListResponse wraps a paginated audit trail.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// UserListResponse wraps a paginated account listing.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}
