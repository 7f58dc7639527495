package models

import "time"

// LearningGoal is a user-owned to-do item, independent of the course domain.
type LearningGoal struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	TargetDate  *time.Time `json:"target_date,omitempty"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// StudySession is a calendar block a user plans for studying.
type StudySession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CourseID  *uint     `gorm:"index" json:"course_id,omitempty"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	StartsAt  time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt    time.Time `gorm:"not null" json:"ends_at"`
	Notes     string    `gorm:"type:text" json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
