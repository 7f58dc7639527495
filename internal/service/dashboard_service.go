package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/progress"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

// DashboardService assembles the student dashboard view.
type DashboardService interface {
	Get(ctx context.Context, userID uint) (dto.DashboardResponse, error)
	// Invalidate drops the cached dashboard after enrollment or progress
	// mutations.
	Invalidate(ctx context.Context, userID uint)
}

type dashboardService struct {
	enrollments repository.EnrollmentRepository
	records     repository.ProgressRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewDashboardService builds the dashboard service. The redis client is
// optional; with a nil client every request recomputes the view.
func NewDashboardService(enrollments repository.EnrollmentRepository, records repository.ProgressRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		enrollments: enrollments,
		records:     records,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger.With().Str("component", "dashboard_service").Logger(),
	}
}

func dashboardCacheKey(userID uint) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

func (s *dashboardService) Get(ctx context.Context, userID uint) (dto.DashboardResponse, error) {
	if cached, ok := s.fromCache(ctx, userID); ok {
		return cached, nil
	}

	enrollments, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	recordsByCourse := map[uint]models.Progress{}
	records, err := s.records.ListByUser(ctx, userID)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	for _, record := range records {
		recordsByCourse[record.CourseID] = record
	}

	standings := make([]progress.CourseStanding, 0, len(enrollments))
	summaries := make([]dto.CourseProgressSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		completed := recordsByCourse[enrollment.CourseID].CompletedSet()
		standings = append(standings, progress.CourseStanding{
			Course:    enrollment.Course,
			Completed: completed,
		})
		summaries = append(summaries, dto.CourseProgressSummary{
			CourseID:        enrollment.CourseID,
			Title:           enrollment.Course.Title,
			Slug:            enrollment.Course.Slug,
			OverallProgress: progress.ComputePercentage(enrollment.Course, completed),
			TotalContent:    enrollment.Course.TotalContent(),
			CompletedCount:  len(completed),
		})
	}

	response := dto.DashboardResponse{
		Stats:   progress.DeriveDashboardStats(standings),
		Courses: summaries,
	}

	s.toCache(ctx, userID, response)
	return response, nil
}

func (s *dashboardService) Invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("dashboard cache invalidation failed")
	}
}

func (s *dashboardService) fromCache(ctx context.Context, userID uint) (dto.DashboardResponse, bool) {
	if s.cache == nil {
		return dto.DashboardResponse{}, false
	}
	raw, err := s.cache.Get(ctx, dashboardCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("dashboard cache read failed")
		}
		return dto.DashboardResponse{}, false
	}
	var response dto.DashboardResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return dto.DashboardResponse{}, false
	}
	return response, true
}

func (s *dashboardService) toCache(ctx context.Context, userID uint, response dto.DashboardResponse) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey(userID), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("dashboard cache write failed")
	}
}
