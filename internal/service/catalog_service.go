package service

import (
	"context"
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService owns the published course list and course/lecture CRUD.
type CatalogService struct {
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Enrollment     *EnrollmentService
}

func NewCatalogService(
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	enrollment *EnrollmentService,
) *CatalogService {
	return &CatalogService{
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		Enrollment:     enrollment,
	}
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Subtitle    string `json:"subtitle"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Thumbnail   string `json:"thumbnail"`
	Price       int    `json:"price"`
}

type LectureRequest struct {
	Title         string `json:"title" binding:"required"`
	VideoURL      string `json:"videoUrl"`
	Duration      int    `json:"duration"`
	IsPreviewFree bool   `json:"isPreviewFree"`
}

// CourseDetail is the hydrated catalog-store shape for a single course.
type CourseDetail struct {
	model.Course
	EnrolledCount int64 `json:"enrolledCount"`
}

func (s *CatalogService) ListPublished(page, limit int) ([]model.Course, int64, error) {
	return s.CourseRepo.List(true, page, limit)
}

func (s *CatalogService) ListAll(page, limit int) ([]model.Course, int64, error) {
	return s.CourseRepo.List(false, page, limit)
}

// ListEnrolled returns the "my courses" subset for a user.
func (s *CatalogService) ListEnrolled(userID uint) ([]model.Course, error) {
	ids, err := s.EnrollmentRepo.CourseIDsByUser(userID)
	if err != nil {
		return nil, err
	}
	return s.CourseRepo.ListByIDs(ids)
}

func (s *CatalogService) ListByTeacher(teacherID uint) ([]model.Course, error) {
	return s.CourseRepo.ListByTeacher(teacherID)
}

// GetByID hydrates a course with its ordered lectures and enrolled count.
// Students only see published courses; staff see everything.
func (s *CatalogService) GetByID(id uint, includeUnpublished bool) (*CourseDetail, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseUnavailable
		}
		return nil, err
	}
	if !course.Published && !includeUnpublished {
		return nil, util.ErrCourseUnavailable
	}

	count, err := s.EnrollmentRepo.CountByCourse(id)
	if err != nil {
		return nil, err
	}

	return &CourseDetail{Course: *course, EnrolledCount: count}, nil
}

func (s *CatalogService) Create(teacherID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Description: req.Description,
		Category:    req.Category,
		Thumbnail:   req.Thumbnail,
		Price:       req.Price,
		TeacherID:   teacherID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) Update(id uint, req CourseRequest) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseUnavailable
		}
		return nil, err
	}

	course.Title = req.Title
	course.Subtitle = req.Subtitle
	course.Description = req.Description
	course.Category = req.Category
	course.Thumbnail = req.Thumbnail
	course.Price = req.Price

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.Enrollment.ForgetCourse(ctx, id); err != nil {
		return err
	}
	return s.CourseRepo.Delete(id)
}

func (s *CatalogService) TogglePublish(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseUnavailable
		}
		return nil, err
	}

	if err := s.CourseRepo.SetPublished(id, !course.Published); err != nil {
		return nil, err
	}
	course.Published = !course.Published
	if course.Published {
		course.PublishAt = nil
	}
	return course, nil
}

func (s *CatalogService) SchedulePublish(id uint, at time.Time) error {
	if _, err := s.CourseRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrCourseUnavailable
		}
		return err
	}
	return s.CourseRepo.SetPublishAt(id, at)
}

// ProcessScheduledPublishes flips Published on courses whose scheduled time
// has arrived. The cron runner calls this every minute.
func (s *CatalogService) ProcessScheduledPublishes() error {
	due, err := s.CourseRepo.FindDueScheduled(time.Now())
	if err != nil {
		return err
	}
	for _, course := range due {
		if err := s.CourseRepo.SetPublished(course.ID, true); err != nil {
			return err
		}
		logger.Log.Info("scheduled publish", zap.Uint("courseId", course.ID), zap.String("title", course.Title))
	}
	return nil
}

func (s *CatalogService) AddLecture(ctx context.Context, courseID uint, req LectureRequest) (*model.Lecture, error) {
	if _, err := s.CourseRepo.FindByID(courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseUnavailable
		}
		return nil, err
	}

	max, err := s.CourseRepo.MaxLecturePosition(courseID)
	if err != nil {
		return nil, err
	}

	lecture := &model.Lecture{
		CourseID:      courseID,
		Title:         req.Title,
		VideoURL:      req.VideoURL,
		Duration:      req.Duration,
		Position:      max + 1,
		IsPreviewFree: req.IsPreviewFree,
	}
	if err := s.CourseRepo.AddLecture(lecture); err != nil {
		return nil, err
	}

	// The denominator grew; refresh enrolled users' snapshots.
	if err := s.Enrollment.RecomputeCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *CatalogService) UpdateLecture(courseID, lectureID uint, req LectureRequest) (*model.Lecture, error) {
	lecture, err := s.CourseRepo.FindLecture(lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLectureNotFound
		}
		return nil, err
	}
	if lecture.CourseID != courseID {
		return nil, util.ErrLectureNotInCourse
	}

	lecture.Title = req.Title
	lecture.VideoURL = req.VideoURL
	lecture.Duration = req.Duration
	lecture.IsPreviewFree = req.IsPreviewFree

	if err := s.CourseRepo.SaveLecture(lecture); err != nil {
		return nil, err
	}
	return lecture, nil
}

func (s *CatalogService) RemoveLecture(ctx context.Context, courseID, lectureID uint) error {
	lecture, err := s.CourseRepo.FindLecture(lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrLectureNotFound
		}
		return err
	}
	if lecture.CourseID != courseID {
		return util.ErrLectureNotInCourse
	}

	if err := s.CourseRepo.DeleteLecture(lectureID); err != nil {
		return err
	}

	// Shrinking the lecture list changes every enrolled user's percentage.
	return s.Enrollment.RecomputeCourse(ctx, courseID)
}

// GetLecture gates playback: free previews are readable by anyone, everything
// else requires enrollment.
func (s *CatalogService) GetLecture(userID, courseID, lectureID uint) (*model.Lecture, error) {
	lecture, err := s.CourseRepo.FindLecture(lectureID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLectureNotFound
		}
		return nil, err
	}
	if lecture.CourseID != courseID {
		return nil, util.ErrLectureNotInCourse
	}

	if lecture.IsPreviewFree {
		return lecture, nil
	}

	enrolled, err := s.EnrollmentRepo.Exists(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, util.ErrNotEnrolled
	}
	return lecture, nil
}
