package service

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testValidator() *validator.Validate {
	return validator.New()
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(ctx context.Context, event string, payload interface{}) {
	p.events = append(p.events, event)
}

type memoryUserRepo struct {
	nextID uint
	users  map[uint]models.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1, users: map[uint]models.User{}}
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *memoryUserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *memoryUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	users := make([]models.User, 0, len(r.users))
	for _, user := range r.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, int64(len(users)), nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

type memoryProfileRepo struct {
	nextID   uint
	profiles map[uint]models.TeacherProfile
	users    *memoryUserRepo
}

func newMemoryProfileRepo(users *memoryUserRepo) *memoryProfileRepo {
	return &memoryProfileRepo{nextID: 1, profiles: map[uint]models.TeacherProfile{}, users: users}
}

func (r *memoryProfileRepo) GetByID(ctx context.Context, id uint) (models.TeacherProfile, error) {
	profile, ok := r.profiles[id]
	if !ok {
		return models.TeacherProfile{}, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (r *memoryProfileRepo) GetByUserID(ctx context.Context, userID uint) (models.TeacherProfile, error) {
	for _, profile := range r.profiles {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return models.TeacherProfile{}, gorm.ErrRecordNotFound
}

func (r *memoryProfileRepo) List(ctx context.Context, filter repository.TeacherProfileFilter) ([]models.TeacherProfile, int64, error) {
	profiles := make([]models.TeacherProfile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		if filter.Status != "" && profile.Status != filter.Status {
			continue
		}
		profiles = append(profiles, profile)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, int64(len(profiles)), nil
}

func (r *memoryProfileRepo) Create(ctx context.Context, profile *models.TeacherProfile) error {
	profile.ID = r.nextID
	r.nextID++
	r.profiles[profile.ID] = *profile
	return nil
}

func (r *memoryProfileRepo) Decide(ctx context.Context, profile *models.TeacherProfile, verified bool) error {
	if _, ok := r.profiles[profile.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.profiles[profile.ID] = *profile
	if user, ok := r.users.users[profile.UserID]; ok {
		user.IsVerified = verified
		r.users.users[user.ID] = user
	}
	return nil
}

type memoryCourseRepo struct {
	nextID  uint
	courses map[uint]models.Course
	ratings map[uint][]models.Rating
}

func newMemoryCourseRepo() *memoryCourseRepo {
	return &memoryCourseRepo{nextID: 1, courses: map[uint]models.Course{}, ratings: map[uint][]models.Rating{}}
}

func (r *memoryCourseRepo) List(ctx context.Context, filter repository.CourseFilter) ([]models.Course, int64, error) {
	courses := make([]models.Course, 0, len(r.courses))
	for _, course := range r.courses {
		if filter.PublishedOnly && !course.IsPublished {
			continue
		}
		if filter.Level != "" && course.Level != filter.Level {
			continue
		}
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, int64(len(courses)), nil
}

func (r *memoryCourseRepo) GetByID(ctx context.Context, id uint) (models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return models.Course{}, gorm.ErrRecordNotFound
	}
	course.Ratings = r.ratings[id]
	return course, nil
}

func (r *memoryCourseRepo) GetBySlug(ctx context.Context, slug string) (models.Course, error) {
	for _, course := range r.courses {
		if course.Slug == slug {
			course.Ratings = r.ratings[course.ID]
			return course, nil
		}
	}
	return models.Course{}, gorm.ErrRecordNotFound
}

func (r *memoryCourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = r.nextID
	r.nextID++
	contentID := course.ID * 1000
	for mi := range course.Modules {
		for ci := range course.Modules[mi].Content {
			contentID++
			course.Modules[mi].Content[ci].ID = contentID
		}
	}
	r.courses[course.ID] = *course
	return nil
}

func (r *memoryCourseRepo) Update(ctx context.Context, course *models.Course) error {
	stored, ok := r.courses[course.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	modules := stored.Modules
	stored = *course
	stored.Modules = modules
	r.courses[course.ID] = stored
	return nil
}

func (r *memoryCourseRepo) ReplaceModules(ctx context.Context, courseID uint, modules []models.Module) error {
	course, ok := r.courses[courseID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contentID := courseID * 1000
	for mi := range modules {
		for ci := range modules[mi].Content {
			contentID++
			modules[mi].Content[ci].ID = contentID
		}
	}
	course.Modules = modules
	r.courses[courseID] = course
	return nil
}

func (r *memoryCourseRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.courses, id)
	delete(r.ratings, id)
	return nil
}

func (r *memoryCourseRepo) UpsertRating(ctx context.Context, rating *models.Rating) error {
	if _, ok := r.courses[rating.CourseID]; !ok {
		return gorm.ErrRecordNotFound
	}
	ratings := r.ratings[rating.CourseID]
	for i, existing := range ratings {
		if existing.StudentID == rating.StudentID {
			ratings[i] = *rating
			r.ratings[rating.CourseID] = ratings
			return nil
		}
	}
	r.ratings[rating.CourseID] = append(ratings, *rating)
	return nil
}

type enrollmentKey struct {
	userID   uint
	courseID uint
}

type memoryEnrollmentRepo struct {
	courses     *memoryCourseRepo
	enrollments map[enrollmentKey]models.Enrollment
}

func newMemoryEnrollmentRepo(courses *memoryCourseRepo) *memoryEnrollmentRepo {
	return &memoryEnrollmentRepo{courses: courses, enrollments: map[enrollmentKey]models.Enrollment{}}
}

func (r *memoryEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	key := enrollmentKey{enrollment.UserID, enrollment.CourseID}
	if _, ok := r.enrollments[key]; ok {
		return repository.ErrDuplicateEnrollment
	}
	r.enrollments[key] = *enrollment
	return nil
}

func (r *memoryEnrollmentRepo) Delete(ctx context.Context, userID, courseID uint) error {
	key := enrollmentKey{userID, courseID}
	if _, ok := r.enrollments[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.enrollments, key)
	return nil
}

func (r *memoryEnrollmentRepo) Get(ctx context.Context, userID, courseID uint) (models.Enrollment, error) {
	enrollment, ok := r.enrollments[enrollmentKey{userID, courseID}]
	if !ok {
		return models.Enrollment{}, gorm.ErrRecordNotFound
	}
	return enrollment, nil
}

func (r *memoryEnrollmentRepo) ListByUser(ctx context.Context, userID uint) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	for key, enrollment := range r.enrollments {
		if key.userID != userID {
			continue
		}
		if r.courses != nil {
			if course, err := r.courses.GetByID(ctx, key.courseID); err == nil {
				enrollment.Course = course
			}
		}
		enrollments = append(enrollments, enrollment)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].CourseID < enrollments[j].CourseID })
	return enrollments, nil
}

func (r *memoryEnrollmentRepo) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	for key := range r.enrollments {
		if key.courseID == courseID {
			count++
		}
	}
	return count, nil
}

type memoryProgressRepo struct {
	nextID  uint
	records map[enrollmentKey]models.Progress
}

func newMemoryProgressRepo() *memoryProgressRepo {
	return &memoryProgressRepo{nextID: 1, records: map[enrollmentKey]models.Progress{}}
}

func (r *memoryProgressRepo) GetOrCreate(ctx context.Context, userID, courseID uint) (models.Progress, error) {
	key := enrollmentKey{userID, courseID}
	if record, ok := r.records[key]; ok {
		return record, nil
	}
	record := models.Progress{ID: r.nextID, UserID: userID, CourseID: courseID}
	r.nextID++
	r.records[key] = record
	return record, nil
}

func (r *memoryProgressRepo) Get(ctx context.Context, userID, courseID uint) (models.Progress, error) {
	record, ok := r.records[enrollmentKey{userID, courseID}]
	if !ok {
		return models.Progress{}, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (r *memoryProgressRepo) ListByUser(ctx context.Context, userID uint) ([]models.Progress, error) {
	var records []models.Progress
	for key, record := range r.records {
		if key.userID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (r *memoryProgressRepo) AddCompletion(ctx context.Context, progressID, contentItemID uint, at time.Time) error {
	for key, record := range r.records {
		if record.ID != progressID {
			continue
		}
		for _, marker := range record.CompletedContent {
			if marker.ContentItemID == contentItemID {
				return nil
			}
		}
		record.CompletedContent = append(record.CompletedContent, models.CompletedContent{
			ProgressID:    progressID,
			ContentItemID: contentItemID,
			CompletedAt:   at,
		})
		r.records[key] = record
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryProgressRepo) RemoveCompletion(ctx context.Context, progressID, contentItemID uint) error {
	for key, record := range r.records {
		if record.ID != progressID {
			continue
		}
		kept := record.CompletedContent[:0]
		for _, marker := range record.CompletedContent {
			if marker.ContentItemID != contentItemID {
				kept = append(kept, marker)
			}
		}
		record.CompletedContent = kept
		r.records[key] = record
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *memoryProgressRepo) UpdateOverall(ctx context.Context, progressID uint, percentage int) error {
	for key, record := range r.records {
		if record.ID == progressID {
			record.OverallProgress = percentage
			r.records[key] = record
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memoryActivityRepo struct {
	entries []models.ActivityLog
}

func (r *memoryActivityRepo) Create(ctx context.Context, entry *models.ActivityLog) error {
	entry.ID = uint(len(r.entries) + 1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	var entries []models.ActivityLog
	for _, entry := range r.entries {
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, int64(len(entries)), nil
}

type memoryGoalRepo struct {
	nextID uint
	goals  map[uint]models.LearningGoal
}

func newMemoryGoalRepo() *memoryGoalRepo {
	return &memoryGoalRepo{nextID: 1, goals: map[uint]models.LearningGoal{}}
}

func (r *memoryGoalRepo) ListByUser(ctx context.Context, userID uint) ([]models.LearningGoal, error) {
	var goals []models.LearningGoal
	for _, goal := range r.goals {
		if goal.UserID == userID {
			goals = append(goals, goal)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

func (r *memoryGoalRepo) GetByID(ctx context.Context, id uint) (models.LearningGoal, error) {
	goal, ok := r.goals[id]
	if !ok {
		return models.LearningGoal{}, gorm.ErrRecordNotFound
	}
	return goal, nil
}

func (r *memoryGoalRepo) Create(ctx context.Context, goal *models.LearningGoal) error {
	goal.ID = r.nextID
	r.nextID++
	r.goals[goal.ID] = *goal
	return nil
}

func (r *memoryGoalRepo) Update(ctx context.Context, goal *models.LearningGoal) error {
	if _, ok := r.goals[goal.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.goals[goal.ID] = *goal
	return nil
}

func (r *memoryGoalRepo) Delete(ctx context.Context, id uint) error {
	delete(r.goals, id)
	return nil
}

type memorySessionRepo struct {
	nextID   uint
	sessions map[uint]models.StudySession
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{nextID: 1, sessions: map[uint]models.StudySession{}}
}

func (r *memorySessionRepo) ListByUser(ctx context.Context, userID uint) ([]models.StudySession, error) {
	var sessions []models.StudySession
	for _, session := range r.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (r *memorySessionRepo) GetByID(ctx context.Context, id uint) (models.StudySession, error) {
	session, ok := r.sessions[id]
	if !ok {
		return models.StudySession{}, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (r *memorySessionRepo) Create(ctx context.Context, session *models.StudySession) error {
	session.ID = r.nextID
	r.nextID++
	r.sessions[session.ID] = *session
	return nil
}

func (r *memorySessionRepo) Update(ctx context.Context, session *models.StudySession) error {
	if _, ok := r.sessions[session.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *memorySessionRepo) Delete(ctx context.Context, id uint) error {
	delete(r.sessions, id)
	return nil
}

type memoryUploadRepo struct {
	records []models.UploadRecord
}

func (r *memoryUploadRepo) Create(ctx context.Context, record *models.UploadRecord) error {
	record.ID = uint(len(r.records) + 1)
	r.records = append(r.records, *record)
	return nil
}

func (r *memoryUploadRepo) ListByUser(ctx context.Context, userID uint) ([]models.UploadRecord, error) {
	var records []models.UploadRecord
	for _, record := range r.records {
		if record.UserID != nil && *record.UserID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}

type storageStub struct {
	lastName string
	size     int
}

func (s *storageStub) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.lastName = name
	s.size = len(data)
	return "https://cdn.example.com/" + name, nil
}
