package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// ErrDuplicateEnrollment indicates the (user, course) pair already exists.
var ErrDuplicateEnrollment = errors.New("enrollment already exists")

// EnrollmentRepository defines persistence operations for enrollments.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, userID, courseID uint) error
	Get(ctx context.Context, userID, courseID uint) (models.Enrollment, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error)
	CountByCourse(ctx context.Context, courseID uint) (int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository constructs an enrollment repository.
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	err := r.db.WithContext(ctx).Create(enrollment).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateEnrollment
	}
	return err
}

func (r *enrollmentRepository) Delete(ctx context.Context, userID, courseID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *enrollmentRepository) Get(ctx context.Context, userID, courseID uint) (models.Enrollment, error) {
	var enrollment models.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error
	if err != nil {
		return models.Enrollment{}, err
	}
	return enrollment, nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Preload("Course.Modules", func(db *gorm.DB) *gorm.DB { return db.Order("modules.position ASC") }).
		Preload("Course.Modules.Content", func(db *gorm.DB) *gorm.DB { return db.Order("content_items.position ASC") }).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (r *enrollmentRepository) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// isUniqueViolation matches unique index violations across the postgres and
// sqlite drivers used in production and tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "duplicate key") || strings.Contains(message, "unique constraint")
}
