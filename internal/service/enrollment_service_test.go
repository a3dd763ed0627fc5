package service

import (
	"context"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 4)

	record, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, record.CourseID)
	assert.Equal(t, 0, record.Progress)
	assert.Empty(t, record.CompletedLectureIDs)

	// Progress recorded between the two enrollment calls must survive.
	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)

	record, err = env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, record.Progress)
	assert.Equal(t, []uint{course.Lectures[0].ID}, record.CompletedLectureIDs)

	var count int64
	require.NoError(t, env.db.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnrollRejectsUnavailableCourses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	draft := env.seedCourse(t, "Unpublished", teacher.ID, false, 2)

	_, err := env.enrollment.Enroll(ctx, student.ID, draft.ID)
	assert.ErrorIs(t, err, util.ErrCourseUnavailable)

	_, err = env.enrollment.Enroll(ctx, student.ID, 9999)
	assert.ErrorIs(t, err, util.ErrCourseUnavailable)
}

func TestRecordLectureProgressPercentages(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 4)

	_, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	record, err := env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 25, record.Progress)

	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[1].ID)
	require.NoError(t, err)
	record, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 75, record.Progress)
	assert.Len(t, record.CompletedLectureIDs, 3)

	record, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[3].ID)
	require.NoError(t, err)
	assert.Equal(t, 100, record.Progress)
}

func TestRecordLectureProgressOrderDoesNotMatter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	forward := env.seedUser(t, "alice", model.Student)
	backward := env.seedUser(t, "carol", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 4)

	for _, id := range []uint{forward.ID, backward.ID} {
		_, err := env.enrollment.Enroll(ctx, id, course.ID)
		require.NoError(t, err)
	}

	var inOrder *model.ProgressRecord
	var err error
	for _, i := range []int{0, 1, 3} {
		inOrder, err = env.enrollment.RecordLectureProgress(ctx, forward.ID, course.ID, course.Lectures[i].ID)
		require.NoError(t, err)
	}

	var reversed *model.ProgressRecord
	for _, i := range []int{3, 1, 0} {
		reversed, err = env.enrollment.RecordLectureProgress(ctx, backward.ID, course.ID, course.Lectures[i].ID)
		require.NoError(t, err)
	}

	assert.Equal(t, 75, inOrder.Progress)
	assert.Equal(t, inOrder.Progress, reversed.Progress)
	assert.Equal(t, inOrder.CompletedLectureIDs, reversed.CompletedLectureIDs)
}

func TestRecordLectureProgressIsANoOpWhenRepeated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 4)

	_, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	first, err := env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)
	second, err := env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)

	assert.Equal(t, first.Progress, second.Progress)
	assert.Equal(t, first.CompletedLectureIDs, second.CompletedLectureIDs)

	var count int64
	require.NoError(t, env.db.Model(&model.LectureCompletion{}).
		Where("user_id = ?", student.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordLectureProgressRequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 4)

	_, err := env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	assert.ErrorIs(t, err, util.ErrNotEnrolled)

	// The rejected call must not leave a completion row behind.
	var count int64
	require.NoError(t, env.db.Model(&model.LectureCompletion{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRecordLectureProgressRejectsForeignLectures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)
	other := env.seedCourse(t, "Rust Basics", teacher.ID, true, 2)

	_, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, other.Lectures[0].ID)
	assert.ErrorIs(t, err, util.ErrLectureNotInCourse)

	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, 9999)
	assert.ErrorIs(t, err, util.ErrLectureNotInCourse)
}

func TestProgressIsZeroForEmptyCourses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Empty", teacher.ID, true, 0)

	record, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Progress)
	assert.NotNil(t, record.CompletedLectureIDs)
	assert.Empty(t, record.CompletedLectureIDs)
}

func TestGetProgressBackfillsColdCache(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)

	_, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)

	// Simulate a restart: the cache loses everything, the database does not.
	env.cache.Forget(ctx, student.ID, course.ID)

	record, err := env.enrollment.GetProgress(ctx, student.ID, model.CourseRef{ID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, 50, record.Progress)

	// The recomputed snapshot is now cached again.
	cached, ok := env.cache.Get(ctx, student.ID, course.ID)
	require.True(t, ok)
	assert.Equal(t, 50, cached.Progress)
}

func TestGetProgressRequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)

	_, err := env.enrollment.GetProgress(ctx, student.ID, model.CourseRef{ID: course.ID})
	assert.ErrorIs(t, err, util.ErrNotEnrolled)
}

func TestProgressForUserCoversEveryEnrollment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	first := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)
	second := env.seedCourse(t, "Rust Basics", teacher.ID, true, 4)

	_, err := env.enrollment.Enroll(ctx, student.ID, first.ID)
	require.NoError(t, err)
	_, err = env.enrollment.Enroll(ctx, student.ID, second.ID)
	require.NoError(t, err)
	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, second.ID, second.Lectures[0].ID)
	require.NoError(t, err)

	records, err := env.enrollment.ProgressForUser(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	byCourse := map[uint]model.ProgressRecord{}
	for _, r := range records {
		byCourse[r.CourseID] = r
	}
	assert.Equal(t, 0, byCourse[first.ID].Progress)
	assert.Equal(t, 25, byCourse[second.ID].Progress)
}

func TestRemovedLecturesStopCounting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 4)

	_, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)
	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)
	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[1].ID)
	require.NoError(t, err)

	// Removing a completed lecture shrinks both the numerator and the
	// denominator: 2/4 becomes 1/3.
	require.NoError(t, env.catalog.RemoveLecture(ctx, course.ID, course.Lectures[0].ID))

	record, err := env.enrollment.GetProgress(ctx, student.ID, model.CourseRef{ID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, 33, record.Progress)
	assert.Equal(t, []uint{course.Lectures[1].ID}, record.CompletedLectureIDs)
}
