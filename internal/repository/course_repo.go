package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// CourseFilter describes pagination & search options for course listings.
type CourseFilter struct {
	Search        string
	Level         string
	InstructorID  *uint
	PublishedOnly bool
	Page          int
	PageSize      int
}

// CourseRepository defines persistence operations for courses.
type CourseRepository interface {
	List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error)
	GetByID(ctx context.Context, id uint) (models.Course, error)
	GetBySlug(ctx context.Context, slug string) (models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	ReplaceModules(ctx context.Context, courseID uint, modules []models.Module) error
	Delete(ctx context.Context, id uint) error
	UpsertRating(ctx context.Context, rating *models.Rating) error
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository instantiates a GORM-backed course repository.
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{})

	if filter.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if filter.InstructorID != nil {
		query = query.Where("instructor_id = ?", *filter.InstructorID)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", strings.ToLower(strings.TrimSpace(filter.Level)))
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("modules.position ASC") }).
		Preload("Modules.Content", func(db *gorm.DB) *gorm.DB { return db.Order("content_items.position ASC") }).
		Preload("Ratings").
		Order("created_at DESC")

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var courses []models.Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uint) (models.Course, error) {
	var course models.Course
	err := r.preloaded(ctx).First(&course, id).Error
	if err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) GetBySlug(ctx context.Context, slug string) (models.Course, error) {
	var course models.Course
	err := r.preloaded(ctx).Where("slug = ?", slug).First(&course).Error
	if err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *courseRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("modules.position ASC") }).
		Preload("Modules.Content", func(db *gorm.DB) *gorm.DB { return db.Order("content_items.position ASC") }).
		Preload("Ratings")
}

func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	return r.db.WithContext(ctx).Omit("Modules", "Ratings", "Instructor").Save(course).Error
}

func (r *courseRepository) ReplaceModules(ctx context.Context, courseID uint, modules []models.Module) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&models.Module{}).Where("course_id = ?", courseID).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.ContentItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("course_id = ?", courseID).Delete(&models.Module{}).Error; err != nil {
				return err
			}
		}
		for i := range modules {
			modules[i].ID = 0
			modules[i].CourseID = courseID
			for j := range modules[i].Content {
				modules[i].Content[j].ID = 0
			}
		}
		if len(modules) == 0 {
			return nil
		}
		return tx.Create(&modules).Error
	})
}

func (r *courseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var moduleIDs []uint
		if err := tx.Model(&models.Module{}).Where("course_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
			return err
		}
		if len(moduleIDs) > 0 {
			if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.ContentItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Course{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *courseRepository) UpsertRating(ctx context.Context, rating *models.Rating) error {
	var existing models.Rating
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", rating.CourseID, rating.StudentID).
		First(&existing).Error
	if err == nil {
		existing.Rating = rating.Rating
		existing.Review = rating.Review
		*rating = existing
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.WithContext(ctx).Create(rating).Error
}
