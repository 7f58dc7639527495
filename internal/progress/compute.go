// Package progress contains the pure completion arithmetic for the course
// domain: percentage computation, next-item resolution and dashboard stat
// reduction. Nothing in here touches storage or HTTP so every function can be
// exercised directly in tests.
package progress

import (
	"math"

	"github.com/jackma2003/edubridge-api/internal/models"
)

// ComputePercentage derives the completion percentage for a course given the
// set of completed content item ids. A course with no content yields 0.
// Completed ids that no longer exist in the course are ignored, so the value
// self-corrects after a teacher edits modules.
func ComputePercentage(course models.Course, completed map[uint]struct{}) int {
	total := course.TotalContent()
	if total == 0 {
		return 0
	}

	done := 0
	for _, module := range course.Modules {
		for _, item := range module.Content {
			if _, ok := completed[item.ID]; ok {
				done++
			}
		}
	}

	return int(math.Round(100 * float64(done) / float64(total)))
}

// Position addresses a content item by its module and content indexes.
type Position struct {
	ModuleIndex  int  `json:"module_index"`
	ContentIndex int  `json:"content_index"`
	ContentID    uint `json:"content_id"`
}

// NextIncomplete scans modules in order, then content in order, and returns
// the first item missing from the completed set. When everything is complete
// it returns the location of the last completed item so a "continue" action
// still navigates somewhere sensible. The second return value is false when
// the course has not been started (empty completed set).
func NextIncomplete(course models.Course, completed map[uint]struct{}) (Position, bool) {
	if len(completed) == 0 {
		return Position{}, false
	}

	var last Position
	for mi, module := range course.Modules {
		for ci, item := range module.Content {
			if _, ok := completed[item.ID]; ok {
				last = Position{ModuleIndex: mi, ContentIndex: ci, ContentID: item.ID}
				continue
			}
			return Position{ModuleIndex: mi, ContentIndex: ci, ContentID: item.ID}, true
		}
	}

	return last, true
}

// CourseStanding pairs a course with one user's completed set, plus an
// optional grade when the course has graded work.
type CourseStanding struct {
	Course    models.Course
	Completed map[uint]struct{}
	Grade     *float64
}

// DashboardStats is the precomputed summary served to the student dashboard.
type DashboardStats struct {
	EnrolledCourses   int     `json:"enrolled_courses"`
	CoursesCompleted  int     `json:"courses_completed"`
	TotalHoursLearned float64 `json:"total_hours_learned"`
	AssignmentsDue    int     `json:"assignments_due"`
	AverageGrade      float64 `json:"average_grade"`
}

// DeriveDashboardStats reduces the user's enrolled courses into summary
// numbers. Hours learned sums the duration of completed content and is
// rounded to one decimal; assignments due counts incomplete quiz and
// assignment items across all courses.
func DeriveDashboardStats(standings []CourseStanding) DashboardStats {
	stats := DashboardStats{EnrolledCourses: len(standings)}

	var minutesLearned int
	var gradeTotal float64
	var gradedCourses int

	for _, standing := range standings {
		if ComputePercentage(standing.Course, standing.Completed) == 100 {
			stats.CoursesCompleted++
		}

		for _, module := range standing.Course.Modules {
			for _, item := range module.Content {
				_, done := standing.Completed[item.ID]
				if done {
					minutesLearned += item.Duration
				} else if item.Type.IsGradable() {
					stats.AssignmentsDue++
				}
			}
		}

		if standing.Grade != nil {
			gradeTotal += *standing.Grade
			gradedCourses++
		}
	}

	stats.TotalHoursLearned = math.Round(float64(minutesLearned)/60*10) / 10
	if gradedCourses > 0 {
		stats.AverageGrade = gradeTotal / float64(gradedCourses)
	}

	return stats
}
