package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// ProgressRepository defines persistence operations for progress records.
type ProgressRepository interface {
	// GetOrCreate returns the progress row for the (user, course) pair,
	// creating an empty one on first use.
	GetOrCreate(ctx context.Context, userID, courseID uint) (models.Progress, error)
	Get(ctx context.Context, userID, courseID uint) (models.Progress, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Progress, error)
	// AddCompletion inserts the completion marker if absent; inserting an
	// existing marker is a no-op so repeated mark-complete calls stay
	// idempotent.
	AddCompletion(ctx context.Context, progressID, contentItemID uint, at time.Time) error
	RemoveCompletion(ctx context.Context, progressID, contentItemID uint) error
	UpdateOverall(ctx context.Context, progressID uint, percentage int) error
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository constructs a progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) GetOrCreate(ctx context.Context, userID, courseID uint) (models.Progress, error) {
	record, err := r.Get(ctx, userID, courseID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Progress{}, err
	}

	record = models.Progress{UserID: userID, CourseID: courseID}
	if createErr := r.db.WithContext(ctx).Create(&record).Error; createErr != nil {
		// A concurrent first completion may have won the race; re-read.
		if isUniqueViolation(createErr) {
			return r.Get(ctx, userID, courseID)
		}
		return models.Progress{}, createErr
	}
	return record, nil
}

func (r *progressRepository) Get(ctx context.Context, userID, courseID uint) (models.Progress, error) {
	var record models.Progress
	err := r.db.WithContext(ctx).
		Preload("CompletedContent").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&record).Error
	if err != nil {
		return models.Progress{}, err
	}
	return record, nil
}

func (r *progressRepository) ListByUser(ctx context.Context, userID uint) ([]models.Progress, error) {
	var records []models.Progress
	err := r.db.WithContext(ctx).
		Preload("CompletedContent").
		Where("user_id = ?", userID).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *progressRepository) AddCompletion(ctx context.Context, progressID, contentItemID uint, at time.Time) error {
	marker := models.CompletedContent{
		ProgressID:    progressID,
		ContentItemID: contentItemID,
		CompletedAt:   at,
	}
	err := r.db.WithContext(ctx).Create(&marker).Error
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}

func (r *progressRepository) RemoveCompletion(ctx context.Context, progressID, contentItemID uint) error {
	return r.db.WithContext(ctx).
		Where("progress_id = ? AND content_item_id = ?", progressID, contentItemID).
		Delete(&models.CompletedContent{}).Error
}

func (r *progressRepository) UpdateOverall(ctx context.Context, progressID uint, percentage int) error {
	return r.db.WithContext(ctx).
		Model(&models.Progress{}).
		Where("id = ?", progressID).
		Update("overall_progress", percentage).Error
}
