package models

import "time"

// Role identifies the account type of a user.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User represents an account that can browse, author or administer courses.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Role         string    `gorm:"size:16;not null;default:student" json:"role"`
	IsVerified   bool      `gorm:"not null;default:false" json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ValidRole reports whether the given role is one of the known account types.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanAuthorCourses reports whether the user may create or publish courses.
func (u User) CanAuthorCourses() bool {
	return u.Role == RoleTeacher && u.IsVerified
}

// TeacherProfile status values. The workflow is pending -> approved or
// pending -> rejected; both outcomes are terminal.
const (
	TeacherStatusPending  = "pending"
	TeacherStatusApproved = "approved"
	TeacherStatusRejected = "rejected"
)

// TeacherProfile holds the application a teacher submits at registration and
// the admin decision that gates their publishing ability.
type TeacherProfile struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Title           string    `gorm:"size:255" json:"title"`
	Institution     string    `gorm:"size:255" json:"institution"`
	Expertise       string    `gorm:"size:255" json:"expertise"`
	Biography       string    `gorm:"type:text" json:"biography"`
	Status          string    `gorm:"size:16;not null;default:pending" json:"status"`
	RejectionReason string    `gorm:"type:text" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	User            User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"user"`
}

// IsDecided reports whether the application has reached a terminal state.
func (p TeacherProfile) IsDecided() bool {
	return p.Status != TeacherStatusPending
}
