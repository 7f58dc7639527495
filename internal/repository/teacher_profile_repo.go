package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// TeacherProfileFilter narrows the application listing.
type TeacherProfileFilter struct {
	Status   string
	Page     int
	PageSize int
}

// TeacherProfileRepository defines persistence operations for teacher applications.
type TeacherProfileRepository interface {
	GetByID(ctx context.Context, id uint) (models.TeacherProfile, error)
	GetByUserID(ctx context.Context, userID uint) (models.TeacherProfile, error)
	List(ctx context.Context, filter TeacherProfileFilter) ([]models.TeacherProfile, int64, error)
	Create(ctx context.Context, profile *models.TeacherProfile) error
	// Decide persists the terminal status on the profile and flips the linked
	// user's verification flag in the same transaction.
	Decide(ctx context.Context, profile *models.TeacherProfile, verified bool) error
}

type teacherProfileRepository struct {
	db *gorm.DB
}

// NewTeacherProfileRepository constructs a teacher profile repository.
func NewTeacherProfileRepository(db *gorm.DB) TeacherProfileRepository {
	return &teacherProfileRepository{db: db}
}

func (r *teacherProfileRepository) GetByID(ctx context.Context, id uint) (models.TeacherProfile, error) {
	var profile models.TeacherProfile
	if err := r.db.WithContext(ctx).Preload("User").First(&profile, id).Error; err != nil {
		return models.TeacherProfile{}, err
	}
	return profile, nil
}

func (r *teacherProfileRepository) GetByUserID(ctx context.Context, userID uint) (models.TeacherProfile, error) {
	var profile models.TeacherProfile
	if err := r.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return models.TeacherProfile{}, err
	}
	return profile, nil
}

func (r *teacherProfileRepository) List(ctx context.Context, filter TeacherProfileFilter) ([]models.TeacherProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TeacherProfile{})

	if filter.Status != "" {
		query = query.Where("status = ?", strings.ToLower(strings.TrimSpace(filter.Status)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("User").Order("created_at ASC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var profiles []models.TeacherProfile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *teacherProfileRepository) Create(ctx context.Context, profile *models.TeacherProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *teacherProfileRepository) Decide(ctx context.Context, profile *models.TeacherProfile, verified bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":           profile.Status,
			"rejection_reason": profile.RejectionReason,
		}
		if err := tx.Model(&models.TeacherProfile{}).Where("id = ?", profile.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", profile.UserID).Update("is_verified", verified).Error
	})
}
