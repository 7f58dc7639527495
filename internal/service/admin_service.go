package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

var (
	// ErrApplicationNotFound indicates the teacher application does not exist.
	ErrApplicationNotFound = errors.New("teacher application not found")
	// ErrApplicationDecided indicates the application already reached a
	// terminal status and cannot be decided again.
	ErrApplicationDecided = errors.New("teacher application already decided")
)

// AdminService groups administrative operations: account management, teacher
// verification and the audit trail.
type AdminService interface {
	ListUsers(ctx context.Context, filter repository.UserFilter) (dto.UserListResponse, error)
	DeleteUser(ctx context.Context, actor Actor, userID uint) error
	ListApplications(ctx context.Context, status string, page, pageSize int) ([]dto.TeacherApplicationResponse, dto.PaginationMeta, error)
	ApproveTeacher(ctx context.Context, actor Actor, applicationID uint) (dto.TeacherApplicationResponse, error)
	RejectTeacher(ctx context.Context, actor Actor, applicationID uint, payload dto.RejectTeacherRequest) (dto.TeacherApplicationResponse, error)
	ListActivity(ctx context.Context, filter repository.ActivityLogFilter) (dto.ActivityListResponse, error)
}

type adminService struct {
	users      repository.UserRepository
	profiles   repository.TeacherProfileRepository
	activities repository.ActivityLogRepository
	events     EventPublisher
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewAdminService builds the admin service.
func NewAdminService(users repository.UserRepository, profiles repository.TeacherProfileRepository, activities repository.ActivityLogRepository, events EventPublisher, validate *validator.Validate, logger zerolog.Logger) AdminService {
	return &adminService{
		users:      users,
		profiles:   profiles,
		activities: activities,
		events:     events,
		validator:  validate,
		logger:     logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) ListUsers(ctx context.Context, filter repository.UserFilter) (dto.UserListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}
	return dto.UserListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, actor Actor, userID uint) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.record(ctx, actor, "user.deleted", "user", &userID, datatypes.JSONMap{
		"username": user.Username,
		"role":     user.Role,
	})
	s.logger.Info().Uint("user_id", userID).Uint("actor_id", actor.ID).Msg("user deleted")
	return nil
}

func (s *adminService) ListApplications(ctx context.Context, status string, page, pageSize int) ([]dto.TeacherApplicationResponse, dto.PaginationMeta, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	profiles, total, err := s.profiles.List(ctx, repository.TeacherProfileFilter{
		Status:   status,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, dto.PaginationMeta{}, err
	}

	items := make([]dto.TeacherApplicationResponse, 0, len(profiles))
	for _, profile := range profiles {
		items = append(items, dto.NewTeacherApplicationResponse(profile))
	}
	return items, dto.NewPaginationMeta(page, pageSize, total), nil
}

func (s *adminService) ApproveTeacher(ctx context.Context, actor Actor, applicationID uint) (dto.TeacherApplicationResponse, error) {
	profile, err := s.loadPending(ctx, applicationID)
	if err != nil {
		return dto.TeacherApplicationResponse{}, err
	}

	profile.Status = models.TeacherStatusApproved
	profile.RejectionReason = ""
	if err := s.profiles.Decide(ctx, &profile, true); err != nil {
		return dto.TeacherApplicationResponse{}, err
	}

	s.record(ctx, actor, "teacher.approved", "teacher_profile", &applicationID, datatypes.JSONMap{
		"user_id": profile.UserID,
	})
	s.events.Publish(ctx, EventTeacherApproved, map[string]any{
		"user_id":        profile.UserID,
		"application_id": applicationID,
	})
	s.logger.Info().Uint("application_id", applicationID).Uint("actor_id", actor.ID).Msg("teacher approved")

	return dto.NewTeacherApplicationResponse(profile), nil
}

func (s *adminService) RejectTeacher(ctx context.Context, actor Actor, applicationID uint, payload dto.RejectTeacherRequest) (dto.TeacherApplicationResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TeacherApplicationResponse{}, err
	}

	profile, err := s.loadPending(ctx, applicationID)
	if err != nil {
		return dto.TeacherApplicationResponse{}, err
	}

	profile.Status = models.TeacherStatusRejected
	profile.RejectionReason = payload.Reason
	if err := s.profiles.Decide(ctx, &profile, false); err != nil {
		return dto.TeacherApplicationResponse{}, err
	}

	s.record(ctx, actor, "teacher.rejected", "teacher_profile", &applicationID, datatypes.JSONMap{
		"user_id": profile.UserID,
		"reason":  payload.Reason,
	})
	s.events.Publish(ctx, EventTeacherRejected, map[string]any{
		"user_id":        profile.UserID,
		"application_id": applicationID,
	})
	s.logger.Info().Uint("application_id", applicationID).Uint("actor_id", actor.ID).Msg("teacher rejected")

	return dto.NewTeacherApplicationResponse(profile), nil
}

func (s *adminService) ListActivity(ctx context.Context, filter repository.ActivityLogFilter) (dto.ActivityListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 50
	}

	entries, total, err := s.activities.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityResponse(entry))
	}
	return dto.ActivityListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(filter.Page, filter.PageSize, total),
	}, nil
}

func (s *adminService) loadPending(ctx context.Context, applicationID uint) (models.TeacherProfile, error) {
	profile, err := s.profiles.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.TeacherProfile{}, ErrApplicationNotFound
		}
		return models.TeacherProfile{}, err
	}
	if profile.IsDecided() {
		return models.TeacherProfile{}, ErrApplicationDecided
	}
	return profile, nil
}

// record appends an audit entry; failures are logged but never surfaced to the
// admin action itself.
func (s *adminService) record(ctx context.Context, actor Actor, action, entityType string, entityID *uint, metadata datatypes.JSONMap) {
	entry := models.ActivityLog{
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}
	if err := s.activities.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("audit entry write failed")
	}
}
