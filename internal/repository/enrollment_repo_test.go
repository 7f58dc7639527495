package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/models"
)

func seedStudentAndCourse(t *testing.T, db *gorm.DB) (models.User, models.Course) {
	t.Helper()
	student := models.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x", Name: "Ada", Role: models.RoleStudent, IsVerified: true}
	require.NoError(t, db.Create(&student).Error)

	instructor := models.User{Username: "grace", Email: "grace@example.com", PasswordHash: "x", Name: "Grace", Role: models.RoleTeacher, IsVerified: true}
	require.NoError(t, db.Create(&instructor).Error)

	course := models.Course{Title: "Systems", Slug: "systems", InstructorID: instructor.ID, IsPublished: true}
	require.NoError(t, db.Create(&course).Error)
	return student, course
}

func TestEnrollmentRepositoryDuplicateIsDistinguishable(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Course{}, &models.Module{}, &models.ContentItem{}, &models.Enrollment{})
	repo := NewEnrollmentRepository(db)
	student, course := seedStudentAndCourse(t, db)

	first := models.Enrollment{UserID: student.ID, CourseID: course.ID, EnrolledAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &first))

	second := models.Enrollment{UserID: student.ID, CourseID: course.ID, EnrolledAt: time.Now()}
	err := repo.Create(context.Background(), &second)
	require.ErrorIs(t, err, ErrDuplicateEnrollment)

	count, err := repo.CountByCourse(context.Background(), course.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "exactly one enrollment row per pair")
}

func TestEnrollmentRepositoryDeleteAndReenroll(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Course{}, &models.Module{}, &models.ContentItem{}, &models.Enrollment{})
	repo := NewEnrollmentRepository(db)
	student, course := seedStudentAndCourse(t, db)

	enrollment := models.Enrollment{UserID: student.ID, CourseID: course.ID, EnrolledAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &enrollment))
	require.NoError(t, repo.Delete(context.Background(), student.ID, course.ID))

	_, err := repo.Get(context.Background(), student.ID, course.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	again := models.Enrollment{UserID: student.ID, CourseID: course.ID, EnrolledAt: time.Now()}
	require.NoError(t, repo.Create(context.Background(), &again))
}

func TestEnrollmentRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t, &models.User{}, &models.Course{}, &models.Module{}, &models.ContentItem{}, &models.Enrollment{})
	repo := NewEnrollmentRepository(db)

	err := repo.Delete(context.Background(), 1, 2)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
