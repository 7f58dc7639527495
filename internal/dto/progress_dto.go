package dto

import (
	"time"

	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/progress"
)

// MarkCompleteRequest identifies the content item being completed.
type MarkCompleteRequest struct {
	ContentItemID uint `json:"content_item_id" validate:"required,gt=0"`
}

// CompletedContentResponse is one completed content entry.
type CompletedContentResponse struct {
	ContentItemID uint      `json:"content_item_id"`
	CompletedAt   time.Time `json:"completed_at"`
}

// ProgressResponse is the per-course progress view: the completed set, the
// derived percentage and a pointer to the next incomplete item.
type ProgressResponse struct {
	CourseID         uint                       `json:"course_id"`
	OverallProgress  int                        `json:"overall_progress"`
	Started          bool                       `json:"started"`
	NextItem         *progress.Position         `json:"next_item,omitempty"`
	CompletedContent []CompletedContentResponse `json:"completed_content"`
	UpdatedAt        time.Time                  `json:"updated_at"`
}

// NewProgressResponse converts a progress model plus the course structure into a DTO.
func NewProgressResponse(course models.Course, model models.Progress) ProgressResponse {
	completed := make([]CompletedContentResponse, 0, len(model.CompletedContent))
	for _, item := range model.CompletedContent {
		completed = append(completed, CompletedContentResponse{
			ContentItemID: item.ContentItemID,
			CompletedAt:   item.CompletedAt,
		})
	}

	response := ProgressResponse{
		CourseID:         course.ID,
		OverallProgress:  model.OverallProgress,
		CompletedContent: completed,
		UpdatedAt:        model.UpdatedAt,
	}

	if next, started := progress.NextIncomplete(course, model.CompletedSet()); started {
		response.Started = true
		response.NextItem = &next
	}

	return response
}

// DashboardResponse is the precomputed student dashboard summary.
type DashboardResponse struct {
	Stats   progress.DashboardStats `json:"stats"`
	Courses []CourseProgressSummary `json:"courses"`
}

// CourseProgressSummary is one enrolled course with its completion state.
type CourseProgressSummary struct {
	CourseID        uint   `json:"course_id"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	OverallProgress int    `json:"overall_progress"`
	TotalContent    int    `json:"total_content"`
	CompletedCount  int    `json:"completed_count"`
}
