package dto

import (
	"time"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// GoalCreateRequest describes a new learning goal.
type GoalCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=4000"`
	TargetDate  string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
}

// GoalUpdateRequest describes a partial goal update.
type GoalUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	TargetDate  *string `json:"target_date" validate:"omitempty,datetime=2006-01-02"`
	IsCompleted *bool   `json:"is_completed"`
}

// GoalResponse is the serialized learning goal.
type GoalResponse struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewGoalResponse converts a goal model into a DTO.
func NewGoalResponse(model models.LearningGoal) GoalResponse {
	return GoalResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		TargetDate:  model.TargetDate,
		IsCompleted: model.IsCompleted,
		CreatedAt:   model.CreatedAt,
	}
}

// SessionCreateRequest describes a new study session.
type SessionCreateRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=255"`
	CourseID *uint  `json:"course_id" validate:"omitempty,gt=0"`
	StartsAt string `json:"starts_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndsAt   string `json:"ends_at" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Notes    string `json:"notes" validate:"omitempty,max=4000"`
}

// SessionUpdateRequest describes a partial session update.
type SessionUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=255"`
	StartsAt *string `json:"starts_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndsAt   *string `json:"ends_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Notes    *string `json:"notes" validate:"omitempty,max=4000"`
}

// SessionResponse is the serialized study session.
type SessionResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CourseID  *uint     `json:"course_id,omitempty"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSessionResponse converts a session model into a DTO.
func NewSessionResponse(model models.StudySession) SessionResponse {
	return SessionResponse{
		ID:        model.ID,
		Title:     model.Title,
		CourseID:  model.CourseID,
		StartsAt:  model.StartsAt,
		EndsAt:    model.EndsAt,
		Notes:     model.Notes,
		CreatedAt: model.CreatedAt,
	}
}

// UploadResponse reports a stored course material file.
type UploadResponse struct {
	ID        uint      `json:"id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUploadResponse converts an upload record into a DTO.
func NewUploadResponse(model models.UploadRecord) UploadResponse {
	return UploadResponse{
		ID:        model.ID,
		FileName:  model.FileName,
		URL:       model.URL,
		MimeType:  model.MimeType,
		SizeBytes: model.SizeBytes,
		Checksum:  model.Checksum,
		CreatedAt: model.CreatedAt,
	}
}
