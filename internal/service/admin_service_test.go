package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jackma2003/edubridge-api/internal/dto"
	"github.com/jackma2003/edubridge-api/internal/models"
	"github.com/jackma2003/edubridge-api/internal/repository"
)

type adminFixture struct {
	svc       AdminService
	users     *memoryUserRepo
	profiles  *memoryProfileRepo
	activity  *memoryActivityRepo
	publisher *recordingPublisher
}

func newAdminFixture(t *testing.T) (adminFixture, uint) {
	t.Helper()
	users := newMemoryUserRepo()
	profiles := newMemoryProfileRepo(users)
	activity := &memoryActivityRepo{}
	publisher := &recordingPublisher{}
	svc := NewAdminService(users, profiles, activity, publisher, testValidator(), testLogger())

	auth := newAuthService(users, profiles)
	resp, err := auth.Register(context.Background(), dto.RegisterRequest{
		Username: "profbob",
		Email:    "bob@example.com",
		Password: "password123",
		Name:     "Bob",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)

	profile, err := profiles.GetByUserID(context.Background(), resp.User.ID)
	require.NoError(t, err)

	return adminFixture{svc: svc, users: users, profiles: profiles, activity: activity, publisher: publisher}, profile.ID
}

func TestApproveTeacherFlipsVerification(t *testing.T) {
	f, applicationID := newAdminFixture(t)
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	resp, err := f.svc.ApproveTeacher(context.Background(), admin, applicationID)
	require.NoError(t, err)
	require.Equal(t, models.TeacherStatusApproved, resp.Status)

	user, err := f.users.GetByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	require.True(t, user.IsVerified)

	require.Equal(t, []string{EventTeacherApproved}, f.publisher.events)
	require.Len(t, f.activity.entries, 1)
	require.Equal(t, "teacher.approved", f.activity.entries[0].Action)
}

func TestRejectTeacherRecordsReason(t *testing.T) {
	f, applicationID := newAdminFixture(t)
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	_, err := f.svc.RejectTeacher(context.Background(), admin, applicationID, dto.RejectTeacherRequest{})
	require.Error(t, err)

	resp, err := f.svc.RejectTeacher(context.Background(), admin, applicationID, dto.RejectTeacherRequest{
		Reason: "credentials could not be confirmed",
	})
	require.NoError(t, err)
	require.Equal(t, models.TeacherStatusRejected, resp.Status)
	require.Equal(t, "credentials could not be confirmed", resp.RejectionReason)

	user, err := f.users.GetByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	require.False(t, user.IsVerified)
}

func TestDecisionsAreTerminal(t *testing.T) {
	f, applicationID := newAdminFixture(t)
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	_, err := f.svc.ApproveTeacher(context.Background(), admin, applicationID)
	require.NoError(t, err)

	_, err = f.svc.ApproveTeacher(context.Background(), admin, applicationID)
	require.ErrorIs(t, err, ErrApplicationDecided)

	_, err = f.svc.RejectTeacher(context.Background(), admin, applicationID, dto.RejectTeacherRequest{Reason: "too late"})
	require.ErrorIs(t, err, ErrApplicationDecided)

	_, err = f.svc.ApproveTeacher(context.Background(), admin, 999)
	require.ErrorIs(t, err, ErrApplicationNotFound)
}

func TestListApplicationsFiltersByStatus(t *testing.T) {
	f, applicationID := newAdminFixture(t)
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	pending, _, err := f.svc.ListApplications(context.Background(), models.TeacherStatusPending, 1, 20)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, err = f.svc.ApproveTeacher(context.Background(), admin, applicationID)
	require.NoError(t, err)

	pending, _, err = f.svc.ListApplications(context.Background(), models.TeacherStatusPending, 1, 20)
	require.NoError(t, err)
	require.Empty(t, pending)

	approved, _, err := f.svc.ListApplications(context.Background(), models.TeacherStatusApproved, 1, 20)
	require.NoError(t, err)
	require.Len(t, approved, 1)
}

func TestDeleteUserWritesAuditTrail(t *testing.T) {
	f, _ := newAdminFixture(t)
	admin := Actor{ID: 1, Role: models.RoleAdmin}

	listed, err := f.svc.ListUsers(context.Background(), repository.UserFilter{})
	require.NoError(t, err)
	require.Len(t, listed.Items, 1)

	err = f.svc.DeleteUser(context.Background(), admin, listed.Items[0].ID)
	require.NoError(t, err)

	err = f.svc.DeleteUser(context.Background(), admin, listed.Items[0].ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	trail, err := f.svc.ListActivity(context.Background(), repository.ActivityLogFilter{Action: "user.deleted"})
	require.NoError(t, err)
	require.Len(t, trail.Items, 1)
}
