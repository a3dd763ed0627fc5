package service

import (
	"context"
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// DashboardService assembles the read-only views the role dashboards render.
// All progress values come out of the progress cache, so every dashboard sees
// the same snapshot a course page sees.
type DashboardService struct {
	UserRepo   *repository.UserRepository
	CourseRepo *repository.CourseRepository
	Enrollment *EnrollmentService
	Catalog    *CatalogService
}

func NewDashboardService(
	userRepo *repository.UserRepository,
	courseRepo *repository.CourseRepository,
	enrollment *EnrollmentService,
	catalog *CatalogService,
) *DashboardService {
	return &DashboardService{
		UserRepo:   userRepo,
		CourseRepo: courseRepo,
		Enrollment: enrollment,
		Catalog:    catalog,
	}
}

type CourseWithProgress struct {
	Course   model.Course         `json:"course"`
	Progress model.ProgressRecord `json:"progress"`
}

type StudentDashboard struct {
	Courses []CourseWithProgress `json:"courses"`
}

type ChildOverview struct {
	Student model.User           `json:"student"`
	Courses []CourseWithProgress `json:"courses"`
}

type ParentDashboard struct {
	Children []ChildOverview `json:"children"`
}

// CourseProgressRow is one student line in the per-course progress view.
type CourseProgressRow struct {
	UserID         uint   `json:"userId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	CompletedCount int    `json:"completedCount"`
	TotalLectures  int    `json:"totalLectures"`
	Progress       int    `json:"progress"`
}

func (s *DashboardService) ForStudent(ctx context.Context, userID uint) (*StudentDashboard, error) {
	courses, err := s.Catalog.ListEnrolled(userID)
	if err != nil {
		return nil, err
	}

	out := make([]CourseWithProgress, 0, len(courses))
	for _, course := range courses {
		record, err := s.Enrollment.GetProgress(ctx, userID, model.CourseRef{ID: course.ID})
		if err != nil {
			return nil, err
		}
		out = append(out, CourseWithProgress{Course: course, Progress: *record})
	}
	return &StudentDashboard{Courses: out}, nil
}

func (s *DashboardService) ForParent(ctx context.Context, parentID uint) (*ParentDashboard, error) {
	children, err := s.UserRepo.FindChildren(parentID)
	if err != nil {
		return nil, err
	}

	out := make([]ChildOverview, 0, len(children))
	for _, child := range children {
		dash, err := s.ForStudent(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ChildOverview{Student: child, Courses: dash.Courses})
	}
	return &ParentDashboard{Children: out}, nil
}

// CourseProgress lists every enrolled student's standing in one course, for
// teacher/management views and the export.
func (s *DashboardService) CourseProgress(ctx context.Context, courseID uint) (*model.Course, []CourseProgressRow, error) {
	course, err := s.CourseRepo.FindByIDWithStudents(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrCourseUnavailable
		}
		return nil, nil, err
	}
	total := len(course.Lectures)

	rows := make([]CourseProgressRow, 0, len(course.StudentsEnrolled))
	for _, student := range course.StudentsEnrolled {
		record, err := s.Enrollment.GetProgress(ctx, student.ID, model.CourseRef{ID: courseID})
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, CourseProgressRow{
			UserID:         student.ID,
			Name:           student.Name,
			Email:          student.Email,
			CompletedCount: len(record.CompletedLectureIDs),
			TotalLectures:  total,
			Progress:       record.Progress,
		})
	}
	return course, rows, nil
}
