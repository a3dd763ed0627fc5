package service

import (
	"context"
	"testing"

	"lms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressCachePutAndGet(t *testing.T) {
	cache := NewProgressCache(nil)
	ctx := context.Background()

	record := model.ProgressRecord{CourseID: 7, Progress: 50, CompletedLectureIDs: []uint{1, 2}}
	cache.Put(ctx, 3, record)

	got, ok := cache.Get(ctx, 3, 7)
	require.True(t, ok)
	assert.Equal(t, record, got)

	// Different user, same course: a distinct entry.
	_, ok = cache.Get(ctx, 4, 7)
	assert.False(t, ok)
}

func TestProgressCacheKeysAreUserScoped(t *testing.T) {
	cache := NewProgressCache(nil)
	ctx := context.Background()

	cache.Put(ctx, 1, model.ProgressRecord{CourseID: 7, Progress: 25})
	cache.Put(ctx, 2, model.ProgressRecord{CourseID: 7, Progress: 75})

	first, ok := cache.Get(ctx, 1, 7)
	require.True(t, ok)
	second, ok := cache.Get(ctx, 2, 7)
	require.True(t, ok)

	assert.Equal(t, 25, first.Progress)
	assert.Equal(t, 75, second.Progress)
}

func TestProgressCacheNotifiesSubscribers(t *testing.T) {
	cache := NewProgressCache(nil)
	ctx := context.Background()

	var updates []ProgressUpdate
	cache.Subscribe(func(u ProgressUpdate) {
		updates = append(updates, u)
	})

	cache.Put(ctx, 3, model.ProgressRecord{CourseID: 7, Progress: 50})
	require.Len(t, updates, 1)
	assert.EqualValues(t, 3, updates[0].UserID)
	assert.Equal(t, 50, updates[0].Record.Progress)

	// Backfill is a cold read repopulating the cache, not a change.
	cache.Backfill(ctx, 3, model.ProgressRecord{CourseID: 8, Progress: 10})
	assert.Len(t, updates, 1)
}

func TestProgressCacheForget(t *testing.T) {
	cache := NewProgressCache(nil)
	ctx := context.Background()

	cache.Put(ctx, 3, model.ProgressRecord{CourseID: 7, Progress: 50})
	cache.Forget(ctx, 3, 7)

	_, ok := cache.Get(ctx, 3, 7)
	assert.False(t, ok)
}

// Every consumer reading through the cache sees the same snapshot after an
// update; there is no second copy to fall out of sync.
func TestProgressCacheSharedAcrossReaders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	student := env.seedUser(t, "alice", model.Student)
	teacher := env.seedUser(t, "bob", model.Teacher)
	course := env.seedCourse(t, "Go Basics", teacher.ID, true, 2)

	_, err := env.enrollment.Enroll(ctx, student.ID, course.ID)
	require.NoError(t, err)

	var notified []int
	env.cache.Subscribe(func(u ProgressUpdate) {
		notified = append(notified, u.Record.Progress)
	})

	_, err = env.enrollment.RecordLectureProgress(ctx, student.ID, course.ID, course.Lectures[0].ID)
	require.NoError(t, err)

	// Course page view.
	fromCourse, err := env.enrollment.GetProgress(ctx, student.ID, model.CourseRef{ID: course.ID})
	require.NoError(t, err)
	// Profile / dashboard view.
	fromProfile, err := env.enrollment.ProgressForUser(ctx, student.ID)
	require.NoError(t, err)
	require.Len(t, fromProfile, 1)

	assert.Equal(t, 50, fromCourse.Progress)
	assert.Equal(t, *fromCourse, fromProfile[0])
	assert.Contains(t, notified, 50)
}
