package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/observability"
	"github.com/jackma2003/edubridge-api/internal/progress"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

// ErrContentNotInCourse indicates the content item does not belong to the course.
var ErrContentNotInCourse = errors.New("content item does not belong to this course")

// ProgressService tracks per-course completion for enrolled students.
type ProgressService interface {
	Get(ctx context.Context, userID, courseID uint) (dto.ProgressResponse, error)
	MarkComplete(ctx context.Context, userID, courseID, contentItemID uint) (dto.ProgressResponse, error)
	ResetComplete(ctx context.Context, userID, courseID, contentItemID uint) (dto.ProgressResponse, error)
}

type progressService struct {
	records     repository.ProgressRepository
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	events      EventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewProgressService builds the progress service.
func NewProgressService(records repository.ProgressRepository, enrollments repository.EnrollmentRepository, courses repository.CourseRepository, events EventPublisher, logger zerolog.Logger) ProgressService {
	return &progressService{
		records:     records,
		enrollments: enrollments,
		courses:     courses,
		events:      events,
		logger:      logger.With().Str("component", "progress_service").Logger(),
		now:         time.Now,
	}
}

func (s *progressService) Get(ctx context.Context, userID, courseID uint) (dto.ProgressResponse, error) {
	course, err := s.loadEnrolledCourse(ctx, userID, courseID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	record, err := s.records.Get(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Never marked anything complete yet; an empty view is valid.
			return dto.NewProgressResponse(course, models.Progress{UserID: userID, CourseID: courseID}), nil
		}
		return dto.ProgressResponse{}, err
	}

	return dto.NewProgressResponse(course, record), nil
}

func (s *progressService) MarkComplete(ctx context.Context, userID, courseID, contentItemID uint) (dto.ProgressResponse, error) {
	return s.toggle(ctx, userID, courseID, contentItemID, true)
}

func (s *progressService) ResetComplete(ctx context.Context, userID, courseID, contentItemID uint) (dto.ProgressResponse, error) {
	return s.toggle(ctx, userID, courseID, contentItemID, false)
}

func (s *progressService) toggle(ctx context.Context, userID, courseID, contentItemID uint, complete bool) (dto.ProgressResponse, error) {
	course, err := s.loadEnrolledCourse(ctx, userID, courseID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	if !course.ContainsContent(contentItemID) {
		return dto.ProgressResponse{}, ErrContentNotInCourse
	}

	record, err := s.records.GetOrCreate(ctx, userID, courseID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	if complete {
		err = s.records.AddCompletion(ctx, record.ID, contentItemID, s.now().UTC())
		observability.Completions().WithLabelValues("mark").Inc()
	} else {
		err = s.records.RemoveCompletion(ctx, record.ID, contentItemID)
		observability.Completions().WithLabelValues("reset").Inc()
	}
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	// Re-read the completed set and recompute the stored percentage from the
	// current course structure, healing any drift from content edits.
	record, err = s.records.Get(ctx, userID, courseID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	percentage := progress.ComputePercentage(course, record.CompletedSet())
	if percentage != record.OverallProgress {
		if err := s.records.UpdateOverall(ctx, record.ID, percentage); err != nil {
			return dto.ProgressResponse{}, err
		}
		record.OverallProgress = percentage
	}

	s.events.Publish(ctx, EventProgressUpdated, map[string]any{
		"user_id":    userID,
		"course_id":  courseID,
		"content_id": contentItemID,
		"completed":  complete,
		"overall":    percentage,
	})
	s.logger.Debug().
		Uint("user_id", userID).
		Uint("course_id", courseID).
		Uint("content_id", contentItemID).
		Bool("completed", complete).
		Int("overall", percentage).
		Msg("progress updated")

	return dto.NewProgressResponse(course, record), nil
}

func (s *progressService) loadEnrolledCourse(ctx context.Context, userID, courseID uint) (models.Course, error) {
	if _, err := s.enrollments.Get(ctx, userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrNotEnrolled
		}
		return models.Course{}, err
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Course{}, ErrCourseNotFound
		}
		return models.Course{}, err
	}
	return course, nil
}
