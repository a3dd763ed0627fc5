package service

import (
	"context"
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// EnrollmentService owns the relationship between users and courses:
// membership, per-lecture completion, and the derived percent snapshot.
type EnrollmentService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	UserRepo       *repository.UserRepository
	Cache          *ProgressCache
	DB             *gorm.DB
}

func NewEnrollmentService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	userRepo *repository.UserRepository,
	cache *ProgressCache,
	db *gorm.DB,
) *EnrollmentService {
	return &EnrollmentService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		UserRepo:       userRepo,
		Cache:          cache,
		DB:             db,
	}
}

// Enroll adds the user to the course and returns the progress snapshot.
// Calling it for an already-enrolled pair succeeds with the existing state,
// so clients can retry freely after navigation or timeouts.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID uint) (*model.ProgressRecord, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseUnavailable
		}
		return nil, err
	}
	if !course.Published {
		return nil, util.ErrCourseUnavailable
	}

	already, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.EnrollmentRepo.Create(userID, courseID); err != nil {
		return nil, err
	}

	record, err := s.snapshot(userID, courseID)
	if err != nil {
		return nil, err
	}
	s.Cache.Put(ctx, userID, *record)

	if !already {
		monitoring.EnrollmentCounter.Inc()
	}
	return record, nil
}

// RecordLectureProgress marks a lecture completed for an enrolled user and
// returns the recomputed snapshot. The completed set only grows, one lecture
// at a time, so rapid or out-of-order calls merge instead of overwriting.
func (s *EnrollmentService) RecordLectureProgress(ctx context.Context, userID, courseID, lectureID uint) (*model.ProgressRecord, error) {
	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	lecture, err := s.CourseRepo.FindLecture(lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLectureNotInCourse
		}
		return nil, err
	}
	if lecture.CourseID != courseID {
		return nil, util.ErrLectureNotInCourse
	}

	before, err := s.EnrollmentRepo.CompletedLectureIDs(userID, courseID)
	if err != nil {
		return nil, err
	}

	if err := s.EnrollmentRepo.AddCompletion(userID, courseID, lectureID); err != nil {
		return nil, err
	}

	record, err := s.snapshot(userID, courseID)
	if err != nil {
		return nil, err
	}
	s.Cache.Put(ctx, userID, *record)

	if len(record.CompletedLectureIDs) > len(before) {
		monitoring.LectureCompletionCounter.Inc()
	}
	return record, nil
}

// GetProgress is a pure lookup: cache first, recompute and backfill on miss.
// The course reference has already been normalized to a bare id by CourseRef.
func (s *EnrollmentService) GetProgress(ctx context.Context, userID uint, ref model.CourseRef) (*model.ProgressRecord, error) {
	courseID := ref.ID

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}

	if record, ok := s.Cache.Get(ctx, userID, courseID); ok {
		return &record, nil
	}

	record, err := s.snapshot(userID, courseID)
	if err != nil {
		return nil, err
	}
	s.Cache.Backfill(ctx, userID, *record)
	return record, nil
}

// ProgressForUser assembles the user's full courseProgress collection, one
// record per enrolled course.
func (s *EnrollmentService) ProgressForUser(ctx context.Context, userID uint) ([]model.ProgressRecord, error) {
	courseIDs, err := s.EnrollmentRepo.CourseIDsByUser(userID)
	if err != nil {
		return nil, err
	}

	records := make([]model.ProgressRecord, 0, len(courseIDs))
	for _, courseID := range courseIDs {
		if record, ok := s.Cache.Get(ctx, userID, courseID); ok {
			records = append(records, record)
			continue
		}
		record, err := s.snapshot(userID, courseID)
		if err != nil {
			return nil, err
		}
		s.Cache.Backfill(ctx, userID, *record)
		records = append(records, *record)
	}
	return records, nil
}

// RecomputeCourse refreshes every enrolled user's snapshot after the course's
// lecture list changed. Removed lectures are treated as never having existed.
func (s *EnrollmentService) RecomputeCourse(ctx context.Context, courseID uint) error {
	userIDs, err := s.EnrollmentRepo.UserIDsByCourse(courseID)
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		record, err := s.snapshot(userID, courseID)
		if err != nil {
			return err
		}
		s.Cache.Put(ctx, userID, *record)
	}
	return nil
}

// ForgetCourse drops all cached snapshots for a deleted course.
func (s *EnrollmentService) ForgetCourse(ctx context.Context, courseID uint) error {
	userIDs, err := s.EnrollmentRepo.UserIDsByCourse(courseID)
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		s.Cache.Forget(ctx, userID, courseID)
	}
	return nil
}

// snapshot derives the ProgressRecord from the completion rows and the
// course's current lecture count.
func (s *EnrollmentService) snapshot(userID, courseID uint) (*model.ProgressRecord, error) {
	completed, err := s.EnrollmentRepo.CompletedLectureIDs(userID, courseID)
	if err != nil {
		return nil, err
	}
	total, err := s.CourseRepo.CountLectures(courseID)
	if err != nil {
		return nil, err
	}

	if completed == nil {
		completed = []uint{}
	}
	return &model.ProgressRecord{
		CourseID:            courseID,
		Progress:            model.ComputeProgress(len(completed), int(total)),
		CompletedLectureIDs: completed,
	}, nil
}
