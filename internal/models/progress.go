package models

import "time"

// Progress records which content items a user has completed in a course and
// the derived completion percentage. Unique per (user, course) pair. The row
// outlives unenrollment so progress survives re-enrolling.
type Progress struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	UserID           uint               `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"user_id"`
	CourseID         uint               `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"course_id"`
	OverallProgress  int                `gorm:"not null;default:0" json:"overall_progress"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	CompletedContent []CompletedContent `gorm:"constraint:OnDelete:CASCADE" json:"completed_content"`
}

// CompletedContent marks a single content item as done.
type CompletedContent struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProgressID    uint      `gorm:"uniqueIndex:idx_completed_progress_content;not null" json:"progress_id"`
	ContentItemID uint      `gorm:"uniqueIndex:idx_completed_progress_content;not null" json:"content_item_id"`
	CompletedAt   time.Time `gorm:"not null" json:"completed_at"`
}

// CompletedSet returns the completed content item ids as a lookup set.
func (p Progress) CompletedSet() map[uint]struct{} {
	set := make(map[uint]struct{}, len(p.CompletedContent))
	for _, item := range p.CompletedContent {
		set[item.ContentItemID] = struct{}{}
	}
	return set
}
