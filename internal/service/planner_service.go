package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

var (
	// ErrPlannerItemNotFound indicates the goal or session does not exist or
	// belongs to another user.
	ErrPlannerItemNotFound = errors.New("planner item not found")
	// ErrSessionWindow indicates the session end is not after its start.
	ErrSessionWindow = errors.New("session must end after it starts")
)

// PlannerService manages per-user learning goals and study sessions.
type PlannerService interface {
	ListGoals(ctx context.Context, userID uint) ([]dto.GoalResponse, error)
	CreateGoal(ctx context.Context, userID uint, payload dto.GoalCreateRequest) (dto.GoalResponse, error)
	UpdateGoal(ctx context.Context, userID, goalID uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error)
	DeleteGoal(ctx context.Context, userID, goalID uint) error

	ListSessions(ctx context.Context, userID uint) ([]dto.SessionResponse, error)
	CreateSession(ctx context.Context, userID uint, payload dto.SessionCreateRequest) (dto.SessionResponse, error)
	UpdateSession(ctx context.Context, userID, sessionID uint, payload dto.SessionUpdateRequest) (dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userID, sessionID uint) error
}

type plannerService struct {
	goals     repository.GoalRepository
	sessions  repository.SessionRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPlannerService builds the planner service.
func NewPlannerService(goals repository.GoalRepository, sessions repository.SessionRepository, validate *validator.Validate, logger zerolog.Logger) PlannerService {
	return &plannerService{
		goals:     goals,
		sessions:  sessions,
		validator: validate,
		logger:    logger.With().Str("component", "planner_service").Logger(),
	}
}

func (s *plannerService) ListGoals(ctx context.Context, userID uint) ([]dto.GoalResponse, error) {
	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.GoalResponse, 0, len(goals))
	for _, goal := range goals {
		responses = append(responses, dto.NewGoalResponse(goal))
	}
	return responses, nil
}

func (s *plannerService) CreateGoal(ctx context.Context, userID uint, payload dto.GoalCreateRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}

	goal := models.LearningGoal{
		UserID:      userID,
		Title:       payload.Title,
		Description: payload.Description,
	}
	if payload.TargetDate != "" {
		date, err := time.Parse("2006-01-02", payload.TargetDate)
		if err != nil {
			return dto.GoalResponse{}, err
		}
		goal.TargetDate = &date
	}

	if err := s.goals.Create(ctx, &goal); err != nil {
		return dto.GoalResponse{}, err
	}
	return dto.NewGoalResponse(goal), nil
}

func (s *plannerService) UpdateGoal(ctx context.Context, userID, goalID uint, payload dto.GoalUpdateRequest) (dto.GoalResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.GoalResponse{}, err
	}

	goal, err := s.ownedGoal(ctx, userID, goalID)
	if err != nil {
		return dto.GoalResponse{}, err
	}

	if payload.Title != nil {
		goal.Title = *payload.Title
	}
	if payload.Description != nil {
		goal.Description = *payload.Description
	}
	if payload.TargetDate != nil {
		date, err := time.Parse("2006-01-02", *payload.TargetDate)
		if err != nil {
			return dto.GoalResponse{}, err
		}
		goal.TargetDate = &date
	}
	if payload.IsCompleted != nil {
		goal.IsCompleted = *payload.IsCompleted
	}

	if err := s.goals.Update(ctx, &goal); err != nil {
		return dto.GoalResponse{}, err
	}
	return dto.NewGoalResponse(goal), nil
}

func (s *plannerService) DeleteGoal(ctx context.Context, userID, goalID uint) error {
	if _, err := s.ownedGoal(ctx, userID, goalID); err != nil {
		return err
	}
	return s.goals.Delete(ctx, goalID)
}

func (s *plannerService) ListSessions(ctx context.Context, userID uint) ([]dto.SessionResponse, error) {
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, dto.NewSessionResponse(session))
	}
	return responses, nil
}

func (s *plannerService) CreateSession(ctx context.Context, userID uint, payload dto.SessionCreateRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	startsAt, err := time.Parse(time.RFC3339, payload.StartsAt)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	endsAt, err := time.Parse(time.RFC3339, payload.EndsAt)
	if err != nil {
		return dto.SessionResponse{}, err
	}
	if !endsAt.After(startsAt) {
		return dto.SessionResponse{}, ErrSessionWindow
	}

	session := models.StudySession{
		UserID:   userID,
		CourseID: payload.CourseID,
		Title:    payload.Title,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Notes:    payload.Notes,
	}
	if err := s.sessions.Create(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}
	return dto.NewSessionResponse(session), nil
}

func (s *plannerService) UpdateSession(ctx context.Context, userID, sessionID uint, payload dto.SessionUpdateRequest) (dto.SessionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SessionResponse{}, err
	}

	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	if payload.Title != nil {
		session.Title = *payload.Title
	}
	if payload.StartsAt != nil {
		startsAt, err := time.Parse(time.RFC3339, *payload.StartsAt)
		if err != nil {
			return dto.SessionResponse{}, err
		}
		session.StartsAt = startsAt
	}
	if payload.EndsAt != nil {
		endsAt, err := time.Parse(time.RFC3339, *payload.EndsAt)
		if err != nil {
			return dto.SessionResponse{}, err
		}
		session.EndsAt = endsAt
	}
	if payload.Notes != nil {
		session.Notes = *payload.Notes
	}

	if !session.EndsAt.After(session.StartsAt) {
		return dto.SessionResponse{}, ErrSessionWindow
	}

	if err := s.sessions.Update(ctx, &session); err != nil {
		return dto.SessionResponse{}, err
	}
	return dto.NewSessionResponse(session), nil
}

func (s *plannerService) DeleteSession(ctx context.Context, userID, sessionID uint) error {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *plannerService) ownedGoal(ctx context.Context, userID, goalID uint) (models.LearningGoal, error) {
	goal, err := s.goals.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LearningGoal{}, ErrPlannerItemNotFound
		}
		return models.LearningGoal{}, err
	}
	if goal.UserID != userID {
		return models.LearningGoal{}, ErrPlannerItemNotFound
	}
	return goal, nil
}

func (s *plannerService) ownedSession(ctx context.Context, userID, sessionID uint) (models.StudySession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.StudySession{}, ErrPlannerItemNotFound
		}
		return models.StudySession{}, err
	}
	if session.UserID != userID {
		return models.StudySession{}, ErrPlannerItemNotFound
	}
	return session, nil
}
