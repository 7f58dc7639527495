package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

var (
	// ErrCourseNotFound indicates the requested course does not exist.
	ErrCourseNotFound = errors.New("course not found")
	// ErrNotCourseOwner indicates the caller is neither the instructor nor an admin.
	ErrNotCourseOwner = errors.New("not the course owner")
	// ErrEmptyModule indicates a module without content items was submitted.
	ErrEmptyModule = errors.New("every module must contain at least one content item")
	// ErrUnknownContentType indicates a content item carried a type outside the
	// supported set.
	ErrUnknownContentType = errors.New("unknown content type")
)

// CourseService exposes course authoring and browsing use cases.
type CourseService interface {
	List(ctx context.Context, req dto.CourseListRequest) (dto.CourseListResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseResponse, error)
	GetBySlug(ctx context.Context, slug string) (dto.CourseResponse, error)
	Create(ctx context.Context, instructorID uint, payload dto.CourseCreateRequest) (dto.CourseResponse, error)
	Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error)
	Delete(ctx context.Context, actor Actor, id uint) error
	Rate(ctx context.Context, studentID, courseID uint, payload dto.RatingRequest) (dto.CourseResponse, error)
	Import(ctx context.Context, instructorID uint, raw []byte) (dto.CourseResponse, error)
}

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

type courseService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	importer    *courseImporter
	logger      zerolog.Logger
}

// NewCourseService builds the course service.
func NewCourseService(courses repository.CourseRepository, enrollments repository.EnrollmentRepository, validate *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		courses:     courses,
		enrollments: enrollments,
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		importer:    newCourseImporter(),
		logger:      logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context, req dto.CourseListRequest) (dto.CourseListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.CourseFilter{
		Search:        req.Search,
		Level:         req.Level,
		PublishedOnly: true,
		Page:          page,
		PageSize:      pageSize,
	}

	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return dto.CourseListResponse{}, err
	}

	items := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		count, err := s.enrollments.CountByCourse(ctx, course.ID)
		if err != nil {
			return dto.CourseListResponse{}, err
		}
		items = append(items, dto.NewCourseResponse(course, count))
	}

	return dto.CourseListResponse{
		Items:      items,
		Pagination: dto.NewPaginationMeta(page, pageSize, total),
	}, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseResponse, error) {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return s.respond(ctx, course)
}

func (s *courseService) GetBySlug(ctx context.Context, slug string) (dto.CourseResponse, error) {
	course, err := s.courses.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}
	return s.respond(ctx, course)
}

func (s *courseService) Create(ctx context.Context, instructorID uint, payload dto.CourseCreateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	modules, err := buildModules(payload.Modules)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	slug, err := s.uniqueSlug(ctx, payload.Title)
	if err != nil {
		return dto.CourseResponse{}, err
	}

	course := models.Course{
		Title:        strings.TrimSpace(payload.Title),
		Slug:         slug,
		Description:  s.sanitizer.Sanitize(payload.Description),
		Level:        strings.ToLower(strings.TrimSpace(payload.Level)),
		InstructorID: instructorID,
		Topics:       encodeStringList(payload.Topics),
		Languages:    encodeStringList(payload.Languages),
		IsPublished:  payload.IsPublished,
		Modules:      modules,
	}

	if err := s.courses.Create(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	s.logger.Info().Uint("course_id", course.ID).Uint("instructor_id", instructorID).Msg("course created")

	return s.Get(ctx, course.ID)
}

func (s *courseService) Update(ctx context.Context, actor Actor, id uint, payload dto.CourseUpdateRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return dto.CourseResponse{}, ErrNotCourseOwner
	}

	if payload.Title != nil {
		course.Title = strings.TrimSpace(*payload.Title)
	}
	if payload.Description != nil {
		course.Description = s.sanitizer.Sanitize(*payload.Description)
	}
	if payload.Level != nil {
		course.Level = strings.ToLower(strings.TrimSpace(*payload.Level))
	}
	if payload.Topics != nil {
		course.Topics = encodeStringList(payload.Topics)
	}
	if payload.Languages != nil {
		course.Languages = encodeStringList(payload.Languages)
	}
	if payload.IsPublished != nil {
		course.IsPublished = *payload.IsPublished
	}

	if err := s.courses.Update(ctx, &course); err != nil {
		return dto.CourseResponse{}, err
	}

	if payload.Modules != nil {
		modules, err := buildModules(payload.Modules)
		if err != nil {
			return dto.CourseResponse{}, err
		}
		if err := s.courses.ReplaceModules(ctx, course.ID, modules); err != nil {
			return dto.CourseResponse{}, err
		}
	}

	return s.Get(ctx, course.ID)
}

func (s *courseService) Delete(ctx context.Context, actor Actor, id uint) error {
	course, err := s.courses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		return err
	}

	if course.InstructorID != actor.ID && !actor.IsAdmin() {
		return ErrNotCourseOwner
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Uint("course_id", id).Uint("actor_id", actor.ID).Msg("course deleted")
	return nil
}

func (s *courseService) Rate(ctx context.Context, studentID, courseID uint, payload dto.RatingRequest) (dto.CourseResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CourseResponse{}, err
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseResponse{}, ErrCourseNotFound
		}
		return dto.CourseResponse{}, err
	}

	rating := models.Rating{
		CourseID:  courseID,
		StudentID: studentID,
		Rating:    payload.Rating,
		Review:    s.sanitizer.Sanitize(payload.Review),
	}

	if err := s.courses.UpsertRating(ctx, &rating); err != nil {
		return dto.CourseResponse{}, err
	}

	return s.Get(ctx, courseID)
}

func (s *courseService) Import(ctx context.Context, instructorID uint, raw []byte) (dto.CourseResponse, error) {
	payload, err := s.importer.Parse(raw)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return s.Create(ctx, instructorID, payload)
}

func (s *courseService) respond(ctx context.Context, course models.Course) (dto.CourseResponse, error) {
	count, err := s.enrollments.CountByCourse(ctx, course.ID)
	if err != nil {
		return dto.CourseResponse{}, err
	}
	return dto.NewCourseResponse(course, count), nil
}

// uniqueSlug derives a URL slug from the title, suffixing a counter on
// collision.
func (s *courseService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slugify(title)
	candidate := base
	for attempt := 2; ; attempt++ {
		_, err := s.courses.GetBySlug(ctx, candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
}

func slugify(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	slug := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, lowered)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "course"
	}
	return slug
}

func buildModules(requests []dto.ModuleRequest) ([]models.Module, error) {
	modules := make([]models.Module, 0, len(requests))
	for mi, request := range requests {
		if len(request.Content) == 0 {
			return nil, ErrEmptyModule
		}
		module := models.Module{
			Title:       strings.TrimSpace(request.Title),
			Description: strings.TrimSpace(request.Description),
			Position:    mi,
		}
		for ci, item := range request.Content {
			contentType := models.ContentType(item.Type)
			if !contentType.Valid() {
				return nil, fmt.Errorf("%w %q", ErrUnknownContentType, item.Type)
			}
			module.Content = append(module.Content, models.ContentItem{
				Type:           contentType,
				Title:          strings.TrimSpace(item.Title),
				Description:    strings.TrimSpace(item.Description),
				URL:            strings.TrimSpace(item.URL),
				Duration:       item.Duration,
				IsDownloadable: item.IsDownloadable,
				Position:       ci,
			})
		}
		modules = append(modules, module)
	}
	return modules, nil
}

func encodeStringList(values []string) datatypes.JSON {
	cleaned := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
