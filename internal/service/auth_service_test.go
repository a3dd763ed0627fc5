package service

import (
	"context"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	user := &model.User{Name: "Alice", Email: "alice@example.com", Password: "secret123"}
	require.NoError(t, env.auth.Register(user))
	assert.Equal(t, model.Student, user.Role)
	assert.NotEqual(t, "secret123", user.Password)

	token, err := env.auth.Login("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := util.ParseJWT(token, env.auth.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Student, claims.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	first := &model.User{Name: "Alice", Email: "alice@example.com", Password: "secret123"}
	require.NoError(t, env.auth.Register(first))

	second := &model.User{Name: "Impostor", Email: "alice@example.com", Password: "secret456"}
	assert.ErrorIs(t, env.auth.Register(second), util.ErrEmailRegistered)
}

func TestLoginRejectsWrongPasswordAndDisabledAccounts(t *testing.T) {
	env := newTestEnv(t)

	user := &model.User{Name: "Alice", Email: "alice@example.com", Password: "secret123"}
	require.NoError(t, env.auth.Register(user))

	_, err := env.auth.Login("alice@example.com", "wrong")
	assert.Error(t, err)

	require.NoError(t, env.users.SetDisabled(user.ID, true))
	_, err = env.auth.Login("alice@example.com", "secret123")
	assert.Error(t, err)
}

func TestGetProfileEmbedsCoursesAndProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)

	user := &model.User{Name: "Alice", Email: "alice@example.com", Password: "secret123"}
	require.NoError(t, env.auth.Register(user))

	_, err := env.enrollment.Enroll(ctx, user.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollment.RecordLectureProgress(ctx, user.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)

	profile, err := env.auth.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, profile.EnrolledCourses, 1)
	assert.Equal(t, course.ID, profile.EnrolledCourses[0].ID)
	require.Len(t, profile.CourseProgress, 1)
	assert.Equal(t, 50, profile.CourseProgress[0].Progress)
}

func TestUserRolesAreImmutable(t *testing.T) {
	env := newTestEnv(t)

	student := env.seedUser(t, "alice", model.Student)

	updated, err := env.user.Update(student.ID, UpdateUserRequest{Name: "Alice Cooper", Avatar: "https://cdn.example.com/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", updated.Name)
	assert.Equal(t, model.Student, updated.Role)
}

func TestLinkParentValidatesRoles(t *testing.T) {
	env := newTestEnv(t)

	parent := env.seedUser(t, "pat", model.Parent)
	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)

	require.NoError(t, env.user.LinkParent(parent.ID, student.ID))

	assert.ErrorIs(t, env.user.LinkParent(teacher.ID, student.ID), util.ErrPermissionDenied)
	assert.ErrorIs(t, env.user.LinkParent(parent.ID, teacher.ID), util.ErrPermissionDenied)

	children, err := env.user.Children(parent.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, student.ID, children[0].ID)
}
