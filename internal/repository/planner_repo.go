package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// GoalRepository defines persistence operations for learning goals.
type GoalRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.LearningGoal, error)
	GetByID(ctx context.Context, id uint) (models.LearningGoal, error)
	Create(ctx context.Context, goal *models.LearningGoal) error
	Update(ctx context.Context, goal *models.LearningGoal) error
	Delete(ctx context.Context, id uint) error
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository constructs a learning goal repository.
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) ListByUser(ctx context.Context, userID uint) ([]models.LearningGoal, error) {
	var goals []models.LearningGoal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_completed ASC, created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) GetByID(ctx context.Context, id uint) (models.LearningGoal, error) {
	var goal models.LearningGoal
	if err := r.db.WithContext(ctx).First(&goal, id).Error; err != nil {
		return models.LearningGoal{}, err
	}
	return goal, nil
}

func (r *goalRepository) Create(ctx context.Context, goal *models.LearningGoal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *goalRepository) Update(ctx context.Context, goal *models.LearningGoal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}

func (r *goalRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.LearningGoal{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SessionRepository defines persistence operations for study sessions.
type SessionRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.StudySession, error)
	GetByID(ctx context.Context, id uint) (models.StudySession, error)
	Create(ctx context.Context, session *models.StudySession) error
	Update(ctx context.Context, session *models.StudySession) error
	Delete(ctx context.Context, id uint) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository constructs a study session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID uint) ([]models.StudySession, error) {
	var sessions []models.StudySession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("starts_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (models.StudySession, error) {
	var session models.StudySession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return models.StudySession{}, err
	}
	return session, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *models.StudySession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) Update(ctx context.Context, session *models.StudySession) error {
	return r.db.WithContext(ctx).Save(session).Error
}

func (r *sessionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.StudySession{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
