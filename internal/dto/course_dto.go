package dto

import (
	"encoding/json"
	"time"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// ContentItemRequest describes one content item inside a module payload.
type ContentItemRequest struct {
	Type           string `json:"type" validate:"required,oneof=video document quiz assignment"`
	Title          string `json:"title" validate:"required,min=1,max=255"`
	Description    string `json:"description" validate:"omitempty,max=4000"`
	URL            string `json:"url" validate:"omitempty,url,max=512"`
	Duration       int    `json:"duration" validate:"gte=0"`
	IsDownloadable bool   `json:"is_downloadable"`
}

// ModuleRequest describes one module inside a course payload. Every module
// must carry at least one content item.
type ModuleRequest struct {
	Title       string               `json:"title" validate:"required,min=1,max=255"`
	Description string               `json:"description" validate:"omitempty,max=4000"`
	Content     []ContentItemRequest `json:"content" validate:"required,min=1,dive"`
}

// CourseCreateRequest describes the payload for authoring a course.
type CourseCreateRequest struct {
	Title       string          `json:"title" validate:"required,min=3,max=255"`
	Description string          `json:"description" validate:"omitempty,max=8000"`
	Level       string          `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Topics      []string        `json:"topics" validate:"omitempty,dive,min=1"`
	Languages   []string        `json:"languages" validate:"omitempty,dive,min=1"`
	IsPublished bool            `json:"is_published"`
	Modules     []ModuleRequest `json:"modules" validate:"required,min=1,dive"`
}

// CourseUpdateRequest describes a partial course update. Replacing modules is
// all-or-nothing: when present the payload must satisfy the same invariant as
// creation.
type CourseUpdateRequest struct {
	Title       *string         `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string         `json:"description" validate:"omitempty,max=8000"`
	Level       *string         `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Topics      []string        `json:"topics" validate:"omitempty,dive,min=1"`
	Languages   []string        `json:"languages" validate:"omitempty,dive,min=1"`
	IsPublished *bool           `json:"is_published"`
	Modules     []ModuleRequest `json:"modules" validate:"omitempty,min=1,dive"`
}

// CourseListRequest carries the list filters.
type CourseListRequest struct {
	Search   string
	Level    string
	Page     int
	PageSize int
}

// RatingRequest describes a student review of a course.
type RatingRequest struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review string `json:"review" validate:"omitempty,max=4000"`
}

// ContentItemResponse is the serialized content item.
type ContentItemResponse struct {
	ID             uint   `json:"id"`
	Type           string `json:"type"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	URL            string `json:"url"`
	Duration       int    `json:"duration"`
	IsDownloadable bool   `json:"is_downloadable"`
}

// ModuleResponse is the serialized module with ordered content.
type ModuleResponse struct {
	ID          uint                  `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Content     []ContentItemResponse `json:"content"`
}

// CourseResponse is the serialized course returned to API clients.
type CourseResponse struct {
	ID            uint             `json:"id"`
	Title         string           `json:"title"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Level         string           `json:"level"`
	InstructorID  uint             `json:"instructor_id"`
	Instructor    string           `json:"instructor"`
	Topics        []string         `json:"topics"`
	Languages     []string         `json:"languages"`
	IsPublished   bool             `json:"is_published"`
	Modules       []ModuleResponse `json:"modules"`
	AverageRating float64          `json:"average_rating"`
	RatingCount   int              `json:"rating_count"`
	EnrolledCount int64            `json:"enrolled_count"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewCourseResponse converts a course model into a DTO.
func NewCourseResponse(model models.Course, enrolledCount int64) CourseResponse {
	modules := make([]ModuleResponse, 0, len(model.Modules))
	for _, module := range model.Modules {
		content := make([]ContentItemResponse, 0, len(module.Content))
		for _, item := range module.Content {
			content = append(content, ContentItemResponse{
				ID:             item.ID,
				Type:           string(item.Type),
				Title:          item.Title,
				Description:    item.Description,
				URL:            item.URL,
				Duration:       item.Duration,
				IsDownloadable: item.IsDownloadable,
			})
		}
		modules = append(modules, ModuleResponse{
			ID:          module.ID,
			Title:       module.Title,
			Description: module.Description,
			Content:     content,
		})
	}

	var ratingTotal int
	for _, rating := range model.Ratings {
		ratingTotal += rating.Rating
	}
	var averageRating float64
	if len(model.Ratings) > 0 {
		averageRating = float64(ratingTotal) / float64(len(model.Ratings))
	}

	return CourseResponse{
		ID:            model.ID,
		Title:         model.Title,
		Slug:          model.Slug,
		Description:   model.Description,
		Level:         model.Level,
		InstructorID:  model.InstructorID,
		Instructor:    model.Instructor.Name,
		Topics:        decodeStringList(model.Topics),
		Languages:     decodeStringList(model.Languages),
		IsPublished:   model.IsPublished,
		Modules:       modules,
		AverageRating: averageRating,
		RatingCount:   len(model.Ratings),
		EnrolledCount: enrolledCount,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// CourseListResponse wraps a paginated course listing.
type CourseListResponse struct {
	Items      []CourseResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// PaginationMeta reports paging information for list endpoints.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationMeta computes the paging envelope.
func NewPaginationMeta(page, pageSize int, total int64) PaginationMeta {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return PaginationMeta{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: totalPages}
}

// EnrollmentResponse is the serialized enrollment row.
type EnrollmentResponse struct {
	CourseID   uint      `json:"course_id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

// NewEnrollmentResponse converts an enrollment into a DTO.
func NewEnrollmentResponse(model models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		CourseID:   model.CourseID,
		Title:      model.Course.Title,
		Slug:       model.Course.Slug,
		EnrolledAt: model.EnrolledAt,
	}
}

func decodeStringList(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return []string{}
	}
	return values
}
