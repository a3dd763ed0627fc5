package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

// Create inserts the membership row; an existing (user, course) pair is left
// untouched, which makes enrollment retry-safe.
func (r *EnrollmentRepository) Create(userID, courseID uint) error {
	enrollment := model.Enrollment{UserID: userID, CourseID: courseID}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment).Error
}

func (r *EnrollmentRepository) Exists(userID, courseID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) CourseIDsByUser(userID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("user_id = ?", userID).
		Order("course_id").
		Pluck("course_id", &ids).Error
	return ids, err
}

func (r *EnrollmentRepository) UserIDsByCourse(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *EnrollmentRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// AddCompletion records a lecture into the completed set. Re-marking an
// already-completed lecture is a no-op by the unique index, never an error.
func (r *EnrollmentRepository) AddCompletion(userID, courseID, lectureID uint) error {
	completion := model.LectureCompletion{
		UserID:    userID,
		CourseID:  courseID,
		LectureID: lectureID,
	}
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion).Error
}

// CompletedLectureIDs returns the completed set intersected with the course's
// current lecture list, so lectures removed from the curriculum stop counting.
func (r *EnrollmentRepository) CompletedLectureIDs(userID, courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.LectureCompletion{}).
		Joins("JOIN lectures ON lectures.id = lecture_completions.lecture_id AND lectures.deleted_at IS NULL").
		Where("lecture_completions.user_id = ? AND lectures.course_id = ?", userID, courseID).
		Order("lecture_completions.lecture_id").
		Pluck("lecture_completions.lecture_id", &ids).Error
	return ids, err
}
