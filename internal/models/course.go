package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContentType enumerates the kinds of content a module can hold.
type ContentType string

const (
	ContentVideo      ContentType = "video"
	ContentDocument   ContentType = "document"
	ContentQuiz       ContentType = "quiz"
	ContentAssignment ContentType = "assignment"
)

// Valid reports whether the content type is a known variant.
func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentDocument, ContentQuiz, ContentAssignment:
		return true
	default:
		return false
	}
}

// IsGradable reports whether the content type counts toward due work.
func (t ContentType) IsGradable() bool {
	switch t {
	case ContentQuiz, ContentAssignment:
		return true
	case ContentVideo, ContentDocument:
		return false
	default:
		return false
	}
}

// Course is an authored unit of study offered on the marketplace.
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Slug         string         `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Description  string         `gorm:"type:text" json:"description"`
	Level        string         `gorm:"size:32" json:"level"`
	InstructorID uint           `gorm:"index;not null" json:"instructor_id"`
	Topics       datatypes.JSON `gorm:"type:jsonb" json:"topics"`
	Languages    datatypes.JSON `gorm:"type:jsonb" json:"languages"`
	IsPublished  bool           `gorm:"not null;default:false" json:"is_published"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Instructor   User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"instructor"`
	Modules      []Module       `gorm:"constraint:OnDelete:CASCADE" json:"modules"`
	Ratings      []Rating       `gorm:"constraint:OnDelete:CASCADE" json:"ratings"`
}

// TotalContent counts the content items across all modules.
func (c Course) TotalContent() int {
	total := 0
	for _, module := range c.Modules {
		total += len(module.Content)
	}
	return total
}

// ContainsContent reports whether the given content item belongs to the course.
func (c Course) ContainsContent(contentID uint) bool {
	for _, module := range c.Modules {
		for _, item := range module.Content {
			if item.ID == contentID {
				return true
			}
		}
	}
	return false
}

// Module groups ordered content items inside a course.
type Module struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CourseID    uint          `gorm:"index;not null" json:"course_id"`
	Title       string        `gorm:"size:255;not null" json:"title"`
	Description string        `gorm:"type:text" json:"description"`
	Position    int           `gorm:"not null" json:"position"`
	Content     []ContentItem `gorm:"constraint:OnDelete:CASCADE" json:"content"`
}

// ContentItem is the smallest addressable unit of a course.
type ContentItem struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	ModuleID       uint        `gorm:"index;not null" json:"module_id"`
	Type           ContentType `gorm:"size:16;not null" json:"type"`
	Title          string      `gorm:"size:255;not null" json:"title"`
	Description    string      `gorm:"type:text" json:"description"`
	URL            string      `gorm:"size:512" json:"url"`
	Duration       int         `gorm:"not null;default:0" json:"duration"`
	IsDownloadable bool        `gorm:"not null;default:false" json:"is_downloadable"`
	Position       int         `gorm:"not null" json:"position"`
}

// Enrollment links a student to a course. One row per (user, course) pair is
// the single source of truth for membership.
type Enrollment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"user_id"`
	CourseID   uint      `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"course_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Course     Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}

// Rating is a student review of a course, one per student per course.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"uniqueIndex:idx_rating_course_student;not null" json:"course_id"`
	StudentID uint      `gorm:"uniqueIndex:idx_rating_course_student;not null" json:"student_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Review    string    `gorm:"type:text" json:"review"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
