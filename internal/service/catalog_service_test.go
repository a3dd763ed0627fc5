package service

import (
	"context"
	"testing"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogHidesUnpublishedCoursesFromStudents(t *testing.T) {
	env := newTestEnv(t)

	teacher := env.seedUser(t, "bob", model.Teacher)
	env.seedCourse(t, "Published", teacher.ID, true, 1)
	draft := env.seedCourse(t, "Draft", teacher.ID, false, 1)

	published, total, err := env.catalog.ListPublished(1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, published, 1)
	assert.Equal(t, "Published", published[0].Title)

	all, total, err := env.catalog.ListAll(1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	_, err = env.catalog.GetByID(draft.ID, false)
	assert.ErrorIs(t, err, util.ErrCourseUnavailable)

	detail, err := env.catalog.GetByID(draft.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Draft", detail.Title)
}

func TestCatalogCourseDetailCountsEnrollments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)
	alice := env.seedUser(t, "alice", model.Student)
	carol := env.seedUser(t, "carol", model.Student)

	_, err := env.enrollment.Enroll(ctx, alice.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollment.Enroll(ctx, carol.ID, course.ID)
	require.NoError(t, err)

	detail, err := env.catalog.GetByID(course.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 2, detail.EnrolledCount)
	require.Len(t, detail.Lectures, 2)
	assert.Equal(t, 1, detail.Lectures[0].Position)
}

func TestTogglePublishClearsSchedule(t *testing.T) {
	env := newTestEnv(t)

	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, false, 1)

	require.NoError(t, env.catalog.SchedulePublish(course.ID, time.Now().Add(24*time.Hour)))

	toggled, err := env.catalog.TogglePublish(course.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Published)
	assert.Nil(t, toggled.PublishAt)
}

func TestProcessScheduledPublishes(t *testing.T) {
	env := newTestEnv(t)

	teacher := env.seedUser(t, "bob", model.Teacher)
	due := env.seedCourse(t, "Due", teacher.ID, false, 1)
	future := env.seedCourse(t, "Future", teacher.ID, false, 1)

	require.NoError(t, env.catalog.SchedulePublish(due.ID, time.Now().Add(-time.Minute)))
	require.NoError(t, env.catalog.SchedulePublish(future.ID, time.Now().Add(time.Hour)))

	require.NoError(t, env.catalog.ProcessScheduledPublishes())

	dueAfter, err := env.courses.FindByID(due.ID)
	require.NoError(t, err)
	assert.True(t, dueAfter.Published)

	futureAfter, err := env.courses.FindByID(future.ID)
	require.NoError(t, err)
	assert.False(t, futureAfter.Published)
}

func TestAddLectureAppendsAndRecomputesProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 1)
	student := env.seedUser(t, "alice", model.Student)

	_, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)

	record, err := env.enrollment.GetProgress(ctx, student.ID, model.CourseRef{ID: course.ID})
	require.NoError(t, err)
	require.Equal(t, 100, record.Progress)

	lecture, err := env.catalog.AddLecture(ctx, course.ID, LectureRequest{Title: "Part two"})
	require.NoError(t, err)
	assert.Equal(t, 2, lecture.Position)

	// The denominator grew, the cached snapshot followed.
	record, err = env.enrollment.GetProgress(ctx, student.ID, model.CourseRef{ID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, 50, record.Progress)
}

func TestGetLectureGatesOnEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)
	student := env.seedUser(t, "alice", model.Student)

	preview := &model.Lecture{CourseID: course.ID, Title: "Preview", Position: 3, IsPreviewFree: true}
	require.NoError(t, env.courses.AddLecture(preview))

	// Free preview is open to anyone.
	got, err := env.catalog.GetLecture(student.ID, course.ID, preview.ID)
	require.NoError(t, err)
	assert.Equal(t, "Preview", got.Title)

	// Paid content requires enrollment.
	_, err = env.catalog.GetLecture(student.ID, course.ID, course.Lectures[0].ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	_, err = env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	_, err = env.catalog.GetLecture(student.ID, course.ID, course.Lectures[0].ID)
	assert.NoError(t, err)
}

func TestDeleteCourseDropsMembershipAndCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)
	student := env.seedUser(t, "alice", model.Student)

	_, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)

	require.NoError(t, env.catalog.Delete(ctx, course.ID))

	_, ok := env.cache.Get(ctx, student.ID, course.ID)
	assert.False(t, ok)

	ids, err := env.enrollments.CourseIDsByUser(student.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
