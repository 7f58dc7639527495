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
	"github.com/jackma2003/edubridge-api/internal/repository"
)

var (
	// ErrAlreadyEnrolled indicates the student is already enrolled in the course.
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	// ErrNotEnrolled indicates no enrollment exists for the (user, course) pair.
	ErrNotEnrolled = errors.New("not enrolled in this course")
	// ErrEnrollmentForbidden indicates the caller's role cannot enroll.
	ErrEnrollmentForbidden = errors.New("only students can enroll in courses")
	// ErrCourseNotEnrollable indicates the course is unpublished.
	ErrCourseNotEnrollable = errors.New("course is not open for enrollment")
)

// EnrollmentService manages course membership for students.
type EnrollmentService interface {
	Enroll(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, userID, courseID uint) error
	ListEnrolled(ctx context.Context, userID uint) ([]dto.EnrollmentResponse, error)
}

type enrollmentService struct {
	enrollments repository.EnrollmentRepository
	courses     repository.CourseRepository
	events      EventPublisher
	logger      zerolog.Logger
	now         func() time.Time
}

// NewEnrollmentService builds the enrollment service.
func NewEnrollmentService(enrollments repository.EnrollmentRepository, courses repository.CourseRepository, events EventPublisher, logger zerolog.Logger) EnrollmentService {
	return &enrollmentService{
		enrollments: enrollments,
		courses:     courses,
		events:      events,
		logger:      logger.With().Str("component", "enrollment_service").Logger(),
		now:         time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, actor Actor, courseID uint) (dto.EnrollmentResponse, error) {
	if actor.Role != models.RoleStudent {
		return dto.EnrollmentResponse{}, ErrEnrollmentForbidden
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EnrollmentResponse{}, ErrCourseNotFound
		}
		return dto.EnrollmentResponse{}, err
	}
	if !course.IsPublished {
		return dto.EnrollmentResponse{}, ErrCourseNotEnrollable
	}

	enrollment := models.Enrollment{
		UserID:     actor.ID,
		CourseID:   courseID,
		EnrolledAt: s.now().UTC(),
	}
	if err := s.enrollments.Create(ctx, &enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicateEnrollment) {
			observability.Enrollments().WithLabelValues("enroll", "duplicate").Inc()
			return dto.EnrollmentResponse{}, ErrAlreadyEnrolled
		}
		observability.Enrollments().WithLabelValues("enroll", "error").Inc()
		return dto.EnrollmentResponse{}, err
	}

	observability.Enrollments().WithLabelValues("enroll", "ok").Inc()
	s.events.Publish(ctx, EventEnrollmentCreated, map[string]any{
		"user_id":   actor.ID,
		"course_id": courseID,
	})
	s.logger.Info().Uint("user_id", actor.ID).Uint("course_id", courseID).Msg("student enrolled")

	enrollment.Course = course
	return dto.NewEnrollmentResponse(enrollment), nil
}

// Unenroll removes the membership row. Progress records are left in place so
// re-enrolling resumes where the student left off.
func (s *enrollmentService) Unenroll(ctx context.Context, userID, courseID uint) error {
	if err := s.enrollments.Delete(ctx, userID, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		observability.Enrollments().WithLabelValues("unenroll", "error").Inc()
		return err
	}

	observability.Enrollments().WithLabelValues("unenroll", "ok").Inc()
	s.events.Publish(ctx, EventEnrollmentRemoved, map[string]any{
		"user_id":   userID,
		"course_id": courseID,
	})
	s.logger.Info().Uint("user_id", userID).Uint("course_id", courseID).Msg("student unenrolled")
	return nil
}

func (s *enrollmentService) ListEnrolled(ctx context.Context, userID uint) ([]dto.EnrollmentResponse, error) {
	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for _, enrollment := range enrollments {
		responses = append(responses, dto.NewEnrollmentResponse(enrollment))
	}
	return responses, nil
}
